package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the lookup indexes and the slot uniqueness constraint.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Partial unique index: two occupying bookings of one shop can never share a start.
	slotIdx := mongo.IndexModel{
		Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "startAt", Value: 1}},
		Options: options.Index().
			SetName("uniq_occupying_slot").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"occupying": true}),
	}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "status", Value: 1}, {Key: "startAt", Value: 1}, {Key: "endAt", Value: 1}}},
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "createdAt", Value: -1}}},
		slotIdx,
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
