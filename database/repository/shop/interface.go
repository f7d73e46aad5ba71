package shopRepo

import (
	"context"
	"errors"
	"time"

	"barberhive/models"
)

var (
	ErrShopNotFound = errors.New("shop not found")
	// ErrShopExists is returned when the email or public link is already registered.
	ErrShopExists = errors.New("shop already exists")
	// ErrShopStatusMismatch means the shop left the expected status before the write.
	ErrShopStatusMismatch = errors.New("shop status changed concurrently")
)

// ShopRepository is the tenant directory store.
type ShopRepository interface {
	GetByID(ctx context.Context, id string) (*models.Shop, error)
	GetByEmail(ctx context.Context, email string) (*models.Shop, error)
	GetByPublicLink(ctx context.Context, link string) (*models.Shop, error)
	GetByTokenHash(ctx context.Context, hash string) (*models.Shop, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*models.Shop, error)
	ListByStatus(ctx context.Context, status models.ShopStatus) ([]models.Shop, error)

	Create(ctx context.Context, shop *models.Shop) error
	UpdateStatus(ctx context.Context, id string, change models.ShopStatusChange) (*models.Shop, error)
	ReplaceServices(ctx context.Context, id string, services []models.Service) error
	SetBusinessHours(ctx context.Context, id string, hours models.BusinessHours) error
	SetTokenHash(ctx context.Context, id, hash string) error
	SetFirebaseUID(ctx context.Context, id, uid string) error
	AddDeviceToken(ctx context.Context, id, token string) error
	RemoveDeviceTokens(ctx context.Context, id string, tokens []string) error
	IncrementBookingCount(ctx context.Context, id string, delta int64) error

	EnsureIndexes(ctx context.Context) error
}

const opTimeout = 5 * time.Second
