package shop

import (
	"context"
	"time"

	shopRepo "barberhive/database/repository/shop"
	"barberhive/models"
)

// ShopService manages tenants: signup, owner auth, admin approval, the
// service catalogue and the bookable-shop directory used by the booking core.
type ShopService interface {
	Register(ctx context.Context, req models.RegisterShopRequest) (*models.Shop, error)
	Authenticate(ctx context.Context, email, password string) (*models.OwnerAuthResponse, error)
	AuthenticateToken(ctx context.Context, token string) (*models.Shop, error)
	AuthenticateFirebase(ctx context.Context, uid, email string) (*models.Shop, error)

	GetByID(ctx context.Context, id string) (*models.Shop, error)
	GetBookable(ctx context.Context, id string) (*models.Shop, error)
	GetBookableByLink(ctx context.Context, link string) (*models.Shop, error)
	ListByStatus(ctx context.Context, status models.ShopStatus) ([]models.Shop, error)

	Approve(ctx context.Context, id string) (*models.Shop, error)
	Reject(ctx context.Context, id, reason string) (*models.Shop, error)
	Suspend(ctx context.Context, id string) (*models.Shop, error)
	Reactivate(ctx context.Context, id string) (*models.Shop, error)

	ListServices(ctx context.Context, shopID string) ([]models.Service, error)
	AddService(ctx context.Context, shopID string, input models.ServiceInput) (*models.Service, error)
	UpdateService(ctx context.Context, shopID, serviceID string, input models.ServiceInput) (*models.Service, error)
	RemoveService(ctx context.Context, shopID, serviceID string) error
	SetBusinessHours(ctx context.Context, shopID string, hours models.BusinessHours) (*models.BusinessHours, error)
	RegisterDevice(ctx context.Context, shopID, token string) error

	ListHistory(ctx context.Context, shopID, eventType string, limit int64) ([]models.HistoryEntry, error)
}

// HistoryReader lists a shop's activity log.
type HistoryReader interface {
	List(ctx context.Context, shopID, eventType string, limit int64) ([]models.HistoryEntry, error)
}

// Locker serializes catalogue edits per shop.
type Locker interface {
	Lock(ctx context.Context, shopID string) (func(), error)
}

// Options carries the plan and session rules.
type Options struct {
	TrialDays         int
	PaidPeriodDays    int
	EnforcePlanExpiry bool
	TokenTTL          time.Duration
}

// DefaultShopService implements ShopService.
type DefaultShopService struct {
	Repo    shopRepo.ShopRepository
	History HistoryReader
	Locker  Locker
	Opts    Options
	Now     func() time.Time
}

func NewShopService(repo shopRepo.ShopRepository, history HistoryReader, locker Locker, opts Options) *DefaultShopService {
	if opts.TrialDays <= 0 {
		opts.TrialDays = 5
	}
	if opts.PaidPeriodDays <= 0 {
		opts.PaidPeriodDays = 30
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &DefaultShopService{Repo: repo, History: history, Locker: locker, Opts: opts, Now: time.Now}
}

func (s *DefaultShopService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
