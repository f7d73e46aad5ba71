package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "barberhive/database/repository/booking"
	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"

	"go.uber.org/zap"
)

// maxStatusAttempts bounds re-reads when another writer moves the booking
// between our read and our compare-and-set.
const maxStatusAttempts = 3

// UpdateStatus moves a booking to target if the lifecycle allows it from the
// booking's current status. Only status bookkeeping fields change.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, target models.BookingStatus) (*models.Booking, error) {
	if !target.IsValid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown status " + string(target)}
	}

	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		current, err := s.Store.GetByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return nil, domain.NotFoundError{Resource: "booking", ID: bookingID, Err: err}
			}
			return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
		}
		// Other tenants' bookings are reported as missing.
		if !actor.CanAccessShop(current.ShopID) {
			return nil, domain.NotFoundError{Resource: "booking", ID: bookingID}
		}
		if err := Transition(current.Status, target); err != nil {
			return nil, err
		}

		updated, err := s.Store.UpdateStatus(ctx, bookingID, current.Status, target)
		switch {
		case err == nil:
			utils.GetLogger().Info("booking status changed",
				zap.String("bookingID", bookingID),
				zap.String("shopID", updated.ShopID),
				zap.String("from", string(current.Status)),
				zap.String("to", string(target)),
				zap.String("actor", actor.Label()))
			s.publish(ctx, models.BookingEvent{
				Type:       models.EventBookingStatusChanged,
				ShopID:     updated.ShopID,
				BookingID:  updated.ID,
				ClientName: updated.ClientName,
				Service:    updated.ServiceName,
				Date:       updated.Date,
				StartTime:  updated.StartTime,
				FromStatus: current.Status,
				ToStatus:   target,
				Actor:      actor.Label(),
				OccurredAt: s.now().UTC(),
			})
			return updated, nil
		case errors.Is(err, bookingRepo.ErrStatusMismatch):
			utils.GetLogger().Debug("booking status moved underneath update, re-reading",
				zap.String("bookingID", bookingID), zap.Int("attempt", attempt))
			continue
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, domain.NotFoundError{Resource: "booking", ID: bookingID, Err: err}
		default:
			return nil, fmt.Errorf("failed to update booking %s: %w", bookingID, err)
		}
	}
	return nil, domain.ConflictError{Resource: "booking", Msg: "status is being changed concurrently"}
}

// ListBookings returns bookings matching filter. Owners only ever see their
// own shop.
func (s *DefaultBookingService) ListBookings(ctx context.Context, actor models.Actor, filter models.BookingFilter) ([]models.Booking, error) {
	if !actor.Admin {
		if actor.ShopID == "" {
			return nil, domain.NotFoundError{Resource: "shop"}
		}
		filter.ShopID = actor.ShopID
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ValidationError{Field: "status", Msg: "unknown status " + string(filter.Status)}
	}
	if filter.Date != "" {
		if _, err := utils.ParseDate(filter.Date, s.location()); err != nil {
			return nil, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD", Err: err}
		}
	}
	bookings, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
