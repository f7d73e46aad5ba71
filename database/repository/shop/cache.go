package shopRepo

import (
	"context"
	"errors"
	"time"

	"barberhive/models"
	"barberhive/utils"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	shopCachePrefix = "shop:id:"
	linkCachePrefix = "shop:link:"
)

// CachedShopRepo is a read-through Redis cache in front of a ShopRepository.
// Shops are cached by id; public links map to ids and never change. Every
// write drops the id entry. Cache failures fall through to the store.
type CachedShopRepo struct {
	ShopRepository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedShopRepo(next ShopRepository, client *redis.Client, ttl time.Duration) *CachedShopRepo {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedShopRepo{ShopRepository: next, client: client, ttl: ttl}
}

func (c *CachedShopRepo) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	if shop, ok := c.load(ctx, id); ok {
		return shop, nil
	}
	shop, err := c.ShopRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, shop)
	return shop, nil
}

func (c *CachedShopRepo) GetByPublicLink(ctx context.Context, link string) (*models.Shop, error) {
	id, err := c.client.Get(ctx, linkCachePrefix+link).Result()
	if err == nil && id != "" {
		return c.GetByID(ctx, id)
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		utils.GetLogger().Warn("shop link cache read failed", zap.String("link", link), zap.Error(err))
	}

	shop, err := c.ShopRepository.GetByPublicLink(ctx, link)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, linkCachePrefix+link, shop.ID, c.ttl).Err(); err != nil {
		utils.GetLogger().Warn("shop link cache write failed", zap.String("link", link), zap.Error(err))
	}
	c.store(ctx, shop)
	return shop, nil
}

func (c *CachedShopRepo) UpdateStatus(ctx context.Context, id string, change models.ShopStatusChange) (*models.Shop, error) {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.UpdateStatus(ctx, id, change)
}

func (c *CachedShopRepo) ReplaceServices(ctx context.Context, id string, services []models.Service) error {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.ReplaceServices(ctx, id, services)
}

func (c *CachedShopRepo) SetBusinessHours(ctx context.Context, id string, hours models.BusinessHours) error {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.SetBusinessHours(ctx, id, hours)
}

func (c *CachedShopRepo) SetTokenHash(ctx context.Context, id, hash string) error {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.SetTokenHash(ctx, id, hash)
}

func (c *CachedShopRepo) SetFirebaseUID(ctx context.Context, id, uid string) error {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.SetFirebaseUID(ctx, id, uid)
}

func (c *CachedShopRepo) AddDeviceToken(ctx context.Context, id, token string) error {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.AddDeviceToken(ctx, id, token)
}

func (c *CachedShopRepo) RemoveDeviceTokens(ctx context.Context, id string, tokens []string) error {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.RemoveDeviceTokens(ctx, id, tokens)
}

func (c *CachedShopRepo) IncrementBookingCount(ctx context.Context, id string, delta int64) error {
	defer c.invalidate(ctx, id)
	return c.ShopRepository.IncrementBookingCount(ctx, id, delta)
}

func (c *CachedShopRepo) load(ctx context.Context, id string) (*models.Shop, bool) {
	data, err := c.client.Get(ctx, shopCachePrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.GetLogger().Warn("shop cache read failed", zap.String("shopID", id), zap.Error(err))
		}
		return nil, false
	}
	var shop models.Shop
	if err := bson.Unmarshal(data, &shop); err != nil {
		utils.GetLogger().Warn("dropping undecodable shop cache entry", zap.String("shopID", id), zap.Error(err))
		c.invalidate(ctx, id)
		return nil, false
	}
	return &shop, true
}

func (c *CachedShopRepo) store(ctx context.Context, shop *models.Shop) {
	data, err := bson.Marshal(shop)
	if err != nil {
		utils.GetLogger().Warn("failed to encode shop for cache", zap.String("shopID", shop.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, shopCachePrefix+shop.ID, data, c.ttl).Err(); err != nil {
		utils.GetLogger().Warn("shop cache write failed", zap.String("shopID", shop.ID), zap.Error(err))
	}
}

func (c *CachedShopRepo) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, shopCachePrefix+id).Err(); err != nil {
		utils.GetLogger().Error("failed to clear shop cache", zap.String("shopID", id), zap.Error(err))
	}
}
