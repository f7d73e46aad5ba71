package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	shopRepo "barberhive/database/repository/shop"
	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"

	"go.uber.org/zap"
)

// Approve activates a pending shop and starts its plan period: TrialDays for
// trial plans, PaidPeriodDays otherwise.
func (s *DefaultShopService) Approve(ctx context.Context, id string) (*models.Shop, error) {
	now := s.now().UTC()
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ShopPending {
		return nil, domain.InvalidTransitionError{Resource: "shop", From: string(current.Status), To: string(models.ShopActive)}
	}

	trial := current.Plan == models.PlanTrial
	days := s.Opts.PaidPeriodDays
	if trial {
		days = s.Opts.TrialDays
	}
	expires := now.AddDate(0, 0, days)

	return s.transition(ctx, current, models.ShopStatusChange{
		From:          current.Status,
		To:            models.ShopActive,
		ApprovedAt:    &now,
		PlanExpiresAt: &expires,
		TrialMode:     &trial,
	})
}

// Reject closes a pending signup. A reason is mandatory.
func (s *DefaultShopService) Reject(ctx context.Context, id, reason string) (*models.Shop, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ValidationError{Field: "reason", Msg: "is required"}
	}
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ShopPending {
		return nil, domain.InvalidTransitionError{Resource: "shop", From: string(current.Status), To: string(models.ShopRejected)}
	}
	return s.transition(ctx, current, models.ShopStatusChange{
		From:            current.Status,
		To:              models.ShopRejected,
		RejectionReason: reason,
	})
}

func (s *DefaultShopService) Suspend(ctx context.Context, id string) (*models.Shop, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, current, models.ShopStatusChange{From: current.Status, To: models.ShopSuspended})
}

func (s *DefaultShopService) Reactivate(ctx context.Context, id string) (*models.Shop, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ShopSuspended {
		return nil, domain.InvalidTransitionError{Resource: "shop", From: string(current.Status), To: string(models.ShopActive)}
	}
	return s.transition(ctx, current, models.ShopStatusChange{From: current.Status, To: models.ShopActive})
}

func (s *DefaultShopService) transition(ctx context.Context, current *models.Shop, change models.ShopStatusChange) (*models.Shop, error) {
	if !change.From.CanTransitionTo(change.To) {
		return nil, domain.InvalidTransitionError{Resource: "shop", From: string(change.From), To: string(change.To)}
	}
	updated, err := s.Repo.UpdateStatus(ctx, current.ID, change)
	if err != nil {
		switch {
		case errors.Is(err, shopRepo.ErrShopNotFound):
			return nil, domain.NotFoundError{Resource: "shop", ID: current.ID, Err: err}
		case errors.Is(err, shopRepo.ErrShopStatusMismatch):
			return nil, domain.ConflictError{Resource: "shop", Msg: "status changed concurrently", Err: err}
		default:
			return nil, fmt.Errorf("failed to update shop %s: %w", current.ID, err)
		}
	}

	fields := []zap.Field{
		zap.String("shopID", updated.ID),
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
	}
	if change.PlanExpiresAt != nil {
		fields = append(fields, zap.String("planExpiresAt", change.PlanExpiresAt.Format(time.RFC3339)))
	}
	utils.GetLogger().Info("shop status changed", fields...)
	return updated, nil
}
