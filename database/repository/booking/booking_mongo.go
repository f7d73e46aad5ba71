package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barberhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 5 * time.Second

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll          *mongo.Collection
	transactional bool
}

// NewMongoBookingRepo returns a repository on the "bookings" collection. Inserts
// run inside a multi-document transaction, so the deployment must be a replica
// set or sharded cluster.
func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection("bookings"), transactional: true}
}

// newMongoBookingRepo is used where sessions are unavailable (mock deployments).
func newMongoBookingRepo(coll *mongo.Collection, transactional bool) *MongoBookingRepo {
	return &MongoBookingRepo{coll: coll, transactional: transactional}
}

func overlapFilter(shopID string, from, to time.Time) bson.M {
	return bson.M{
		"shopId":  shopID,
		"status":  bson.M{"$in": models.OccupyingStatuses},
		"startAt": bson.M{"$lt": to},
		"endAt":   bson.M{"$gt": from},
	}
}

func (r *MongoBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	booking.Occupying = booking.Status.IsOccupying()

	write := func(sc context.Context) error {
		if booking.Occupying {
			n, err := r.coll.CountDocuments(sc, overlapFilter(booking.ShopID, booking.StartAt, booking.EndAt))
			if err != nil {
				return fmt.Errorf("failed to count overlapping bookings: %w", err)
			}
			if n > 0 {
				return ErrSlotTaken
			}
		}
		if _, err := r.coll.InsertOne(sc, booking); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSlotTaken
			}
			return fmt.Errorf("failed to insert booking: %w", err)
		}
		return nil
	}

	if !r.transactional {
		return write(ctx)
	}

	sess, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := write(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("booking transaction failed: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// ListForShopOnDate is a shop's day sheet: every booking on date, any status.
func (r *MongoBookingRepo) ListForShopOnDate(ctx context.Context, shopID, date string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"shopId": shopID, "date": date}, options.Find().SetSort(bson.D{{Key: "startAt", Value: 1}}))
}

func (r *MongoBookingRepo) ListOverlapping(ctx context.Context, shopID string, from, to time.Time) ([]models.Booking, error) {
	return r.find(ctx, overlapFilter(shopID, from, to), options.Find().SetSort(bson.D{{Key: "startAt", Value: 1}}))
}

func (r *MongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	if isDaySheet(filter) {
		return r.ListForShopOnDate(ctx, filter.ShopID, filter.Date)
	}

	query := bson.M{}
	if filter.ShopID != "" {
		query["shopId"] = filter.ShopID
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	window := bson.M{}
	if !filter.From.IsZero() {
		window["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		window["$lt"] = filter.To
	}
	if len(window) > 0 {
		query["startAt"] = window
	}

	opts := options.Find().SetSort(bson.D{{Key: "startAt", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	return r.find(ctx, query, opts)
}

func isDaySheet(f models.BookingFilter) bool {
	return f.ShopID != "" && f.Date != "" && f.Status == "" && f.From.IsZero() && f.To.IsZero() && f.Limit == 0
}

func (r *MongoBookingRepo) CountCreatedSince(ctx context.Context, shopID string, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"shopId": shopID, "createdAt": bson.M{"$gte": since}})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings for shop %s: %w", shopID, err)
	}
	return n, nil
}

func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":    to,
		"occupying": to.IsOccupying(),
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update booking %s status: %w", id, err)
	}

	// Nothing matched: either the booking is gone or someone moved it first.
	n, cerr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if cerr != nil {
		return nil, fmt.Errorf("failed to recheck booking %s: %w", id, cerr)
	}
	if n == 0 {
		return nil, ErrBookingNotFound
	}
	return nil, ErrStatusMismatch
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("booking cursor error: %w", err)
	}
	return bookings, nil
}
