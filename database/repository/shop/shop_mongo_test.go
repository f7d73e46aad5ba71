package shopRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"barberhive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

var _ ShopRepository = (*MongoShopRepo)(nil)
var _ ShopRepository = (*CachedShopRepo)(nil)

func TestMongoShopRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := "db.shops"

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := &MongoShopRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))

		err := repo.Create(ctx, &models.Shop{ID: "s1", Email: "a@b.c"})
		if !errors.Is(err, ErrShopExists) {
			t.Fatalf("err=%v, want ErrShopExists", err)
		}
	})

	mt.Run("get by public link", func(mt *mtest.T) {
		repo := &MongoShopRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "id", Value: "s1"},
			{Key: "name", Value: "Navalha"},
			{Key: "publicLink", Value: "navalha"},
			{Key: "status", Value: "active"},
		}))

		shop, err := repo.GetByPublicLink(ctx, "navalha")
		if err != nil {
			t.Fatalf("GetByPublicLink: %v", err)
		}
		if shop.ID != "s1" || shop.Status != models.ShopActive {
			t.Fatalf("unexpected shop %+v", shop)
		}
	})

	mt.Run("status change applies", func(mt *mtest.T) {
		repo := &MongoShopRepo{coll: mt.Coll}
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{{Key: "id", Value: "s1"}, {Key: "status", Value: "active"}}},
		})

		now := time.Now().UTC()
		shop, err := repo.UpdateStatus(ctx, "s1", models.ShopStatusChange{From: models.ShopPending, To: models.ShopActive, ApprovedAt: &now})
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if shop.Status != models.ShopActive {
			t.Fatalf("status=%s, want active", shop.Status)
		}
		evt := mt.GetStartedEvent()
		if _, err := evt.Command.LookupErr("query", "status"); err != nil {
			t.Fatalf("findAndModify must filter on the expected status: %v", err)
		}
	})

	mt.Run("status change lost race", func(mt *mtest.T) {
		repo := &MongoShopRepo{coll: mt.Coll}
		mt.AddMockResponses(
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}},
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		_, err := repo.UpdateStatus(ctx, "s1", models.ShopStatusChange{From: models.ShopPending, To: models.ShopActive})
		if !errors.Is(err, ErrShopStatusMismatch) {
			t.Fatalf("err=%v, want ErrShopStatusMismatch", err)
		}
	})

	mt.Run("increment unknown shop", func(mt *mtest.T) {
		repo := &MongoShopRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		if err := repo.IncrementBookingCount(ctx, "missing", 1); !errors.Is(err, ErrShopNotFound) {
			t.Fatalf("err=%v, want ErrShopNotFound", err)
		}
	})

	mt.Run("remove device tokens pulls", func(mt *mtest.T) {
		repo := &MongoShopRepo{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		if err := repo.RemoveDeviceTokens(ctx, "s1", []string{"stale"}); err != nil {
			t.Fatalf("RemoveDeviceTokens: %v", err)
		}
		evt := mt.GetStartedEvent()
		if _, err := evt.Command.LookupErr("updates", "0", "u", "$pull", "deviceTokens"); err != nil {
			t.Fatalf("update must pull from deviceTokens: %v", err)
		}
	})

	mt.Run("remove no tokens skips the store", func(mt *mtest.T) {
		repo := &MongoShopRepo{coll: mt.Coll}
		// No mock response queued: touching the collection would fail.
		if err := repo.RemoveDeviceTokens(ctx, "s1", nil); err != nil {
			t.Fatalf("RemoveDeviceTokens: %v", err)
		}
	})
}
