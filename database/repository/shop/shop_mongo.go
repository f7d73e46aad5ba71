package shopRepo

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

// MongoShopRepo implements ShopRepository using MongoDB.
type MongoShopRepo struct {
	coll *mongo.Collection
}

// NewMongoShopRepo returns a repository on the "shops" collection.
func NewMongoShopRepo(db *mongo.Database) *MongoShopRepo {
	return &MongoShopRepo{coll: db.Collection("shops")}
}

func (r *MongoShopRepo) findOne(ctx context.Context, filter bson.M) (*models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var shop models.Shop
	if err := r.coll.FindOne(ctx, filter).Decode(&shop); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to fetch shop: %w", err)
	}
	return &shop, nil
}

func (r *MongoShopRepo) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoShopRepo) GetByEmail(ctx context.Context, email string) (*models.Shop, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoShopRepo) GetByPublicLink(ctx context.Context, link string) (*models.Shop, error) {
	return r.findOne(ctx, bson.M{"publicLink": link})
}

func (r *MongoShopRepo) GetByTokenHash(ctx context.Context, hash string) (*models.Shop, error) {
	if hash == "" {
		return nil, ErrShopNotFound
	}
	return r.findOne(ctx, bson.M{"tokenHash": hash})
}

func (r *MongoShopRepo) GetByFirebaseUID(ctx context.Context, uid string) (*models.Shop, error) {
	if uid == "" {
		return nil, ErrShopNotFound
	}
	return r.findOne(ctx, bson.M{"firebaseUid": uid})
}

func (r *MongoShopRepo) ListByStatus(ctx context.Context, status models.ShopStatus) ([]models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer cursor.Close(ctx)

	shops := []models.Shop{}
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, fmt.Errorf("failed to decode shops: %w", err)
	}
	return shops, nil
}

func (r *MongoShopRepo) Create(ctx context.Context, shop *models.Shop) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, shop); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrShopExists
		}
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *MongoShopRepo) UpdateStatus(ctx context.Context, id string, change models.ShopStatusChange) (*models.Shop, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"status": change.To, "updatedAt": time.Now().UTC()}
	if change.ApprovedAt != nil {
		set["approvedAt"] = *change.ApprovedAt
	}
	if change.PlanExpiresAt != nil {
		set["planExpiresAt"] = *change.PlanExpiresAt
	}
	if change.TrialMode != nil {
		set["trialMode"] = *change.TrialMode
	}
	if change.RejectionReason != "" {
		set["rejectionReason"] = change.RejectionReason
	}

	filter := bson.M{"id": id, "status": change.From}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Shop
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update shop %s status: %w", id, err)
	}

	n, cerr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if cerr != nil {
		return nil, fmt.Errorf("failed to recheck shop %s: %w", id, cerr)
	}
	if n == 0 {
		return nil, ErrShopNotFound
	}
	return nil, ErrShopStatusMismatch
}

func (r *MongoShopRepo) ReplaceServices(ctx context.Context, id string, services []models.Service) error {
	if services == nil {
		services = []models.Service{}
	}
	return r.set(ctx, id, bson.M{"services": services})
}

func (r *MongoShopRepo) SetBusinessHours(ctx context.Context, id string, hours models.BusinessHours) error {
	return r.set(ctx, id, bson.M{"hours": hours})
}

func (r *MongoShopRepo) SetTokenHash(ctx context.Context, id, hash string) error {
	return r.set(ctx, id, bson.M{"tokenHash": hash})
}

func (r *MongoShopRepo) SetFirebaseUID(ctx context.Context, id, uid string) error {
	return r.set(ctx, id, bson.M{"firebaseUid": uid})
}

func (r *MongoShopRepo) AddDeviceToken(ctx context.Context, id, token string) error {
	return r.update(ctx, id, bson.M{
		"$addToSet": bson.M{"deviceTokens": token},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// RemoveDeviceTokens drops tokens the push service reported as unregistered.
func (r *MongoShopRepo) RemoveDeviceTokens(ctx context.Context, id string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.update(ctx, id, bson.M{"$pull": bson.M{"deviceTokens": bson.M{"$in": tokens}}})
}

func (r *MongoShopRepo) IncrementBookingCount(ctx context.Context, id string, delta int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"totalBookings": delta}})
	if err != nil {
		return fmt.Errorf("failed to increment booking count for shop %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *MongoShopRepo) set(ctx context.Context, id string, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	return r.update(ctx, id, bson.M{"$set": fields})
}

func (r *MongoShopRepo) update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update shop %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrShopNotFound
	}
	return nil
}
