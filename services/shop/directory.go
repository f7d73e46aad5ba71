package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	shopRepo "barberhive/database/repository/shop"
	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"

	"go.uber.org/zap"
)

func (s *DefaultShopService) GetByID(ctx context.Context, id string) (*models.Shop, error) {
	shop, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return nil, domain.NotFoundError{Resource: "shop", ID: id, Err: err}
		}
		return nil, fmt.Errorf("failed to load shop %s: %w", id, err)
	}
	return shop, nil
}

// GetBookable returns the shop only if it currently accepts bookings.
func (s *DefaultShopService) GetBookable(ctx context.Context, id string) (*models.Shop, error) {
	shop, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkBookable(shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *DefaultShopService) GetBookableByLink(ctx context.Context, link string) (*models.Shop, error) {
	shop, err := s.Repo.GetByPublicLink(ctx, link)
	if err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return nil, domain.NotFoundError{Resource: "shop", ID: link, Err: err}
		}
		return nil, fmt.Errorf("failed to load shop %s: %w", link, err)
	}
	if err := s.checkBookable(shop); err != nil {
		return nil, err
	}
	return shop, nil
}

// checkBookable hides shops that are not active, and with plan enforcement on,
// shops whose plan has lapsed.
func (s *DefaultShopService) checkBookable(shop *models.Shop) error {
	if shop.Status != models.ShopActive {
		utils.GetLogger().Debug("shop not bookable", zap.String("shopID", shop.ID), zap.String("status", string(shop.Status)))
		return domain.NotFoundError{Resource: "shop", ID: shop.ID}
	}
	if s.Opts.EnforcePlanExpiry && planExpired(shop, s.now()) {
		utils.GetLogger().Debug("shop plan expired", zap.String("shopID", shop.ID), zap.Time("planExpiresAt", shop.PlanExpiresAt))
		return domain.NotFoundError{Resource: "shop", ID: shop.ID}
	}
	return nil
}

func planExpired(shop *models.Shop, now time.Time) bool {
	return !shop.PlanExpiresAt.IsZero() && !now.Before(shop.PlanExpiresAt)
}

func (s *DefaultShopService) ListByStatus(ctx context.Context, status models.ShopStatus) ([]models.Shop, error) {
	if status != "" && !status.IsValid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown status " + string(status)}
	}
	shops, err := s.Repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}

func (s *DefaultShopService) ListHistory(ctx context.Context, shopID, eventType string, limit int64) ([]models.HistoryEntry, error) {
	if s.History == nil {
		return []models.HistoryEntry{}, nil
	}
	switch eventType {
	case "", models.EventBookingCreated, models.EventBookingStatusChanged:
	default:
		return nil, domain.ValidationError{Field: "type", Msg: "unknown event type " + eventType}
	}
	if limit < 0 || limit > 500 {
		return nil, domain.ValidationError{Field: "limit", Msg: "must be at most 500"}
	}
	entries, err := s.History.List(ctx, shopID, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}
