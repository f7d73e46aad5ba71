package historyRepo

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

// DefaultListLimit caps history listings when the caller sends no limit.
const DefaultListLimit = 50

// ErrEntryExists means an entry with the same id was already recorded, which
// happens when a queued event is delivered twice.
var ErrEntryExists = errors.New("history entry already recorded")

type HistoryRepository interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	// List returns the newest entries first; an empty eventType matches all.
	List(ctx context.Context, shopID, eventType string, limit int64) ([]models.HistoryEntry, error)
	EnsureIndexes(ctx context.Context) error
}

// MongoHistoryRepo implements HistoryRepository using MongoDB.
type MongoHistoryRepo struct {
	coll *mongo.Collection
}

func NewMongoHistoryRepo(db *mongo.Database) *MongoHistoryRepo {
	return &MongoHistoryRepo{coll: db.Collection("history")}
}

func (r *MongoHistoryRepo) Append(ctx context.Context, entry *models.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEntryExists
		}
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

func (r *MongoHistoryRepo) List(ctx context.Context, shopID, eventType string, limit int64) ([]models.HistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = DefaultListLimit
	}
	filter := bson.M{"shopId": shopID}
	if eventType != "" {
		filter["type"] = eventType
	}
	opts := options.Find().SetSort(bson.D{{Key: "occurredAt", Value: -1}}).SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for shop %s: %w", shopID, err)
	}
	defer cursor.Close(ctx)

	entries := []models.HistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}
	return entries, nil
}

func (r *MongoHistoryRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "shopId", Value: 1}, {Key: "type", Value: 1}, {Key: "occurredAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create history indexes: %w", err)
	}
	return nil
}
