package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	bookingRepo "barberhive/database/repository/booking"
	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxClientNameLen = 100
	minContactLen    = 10
	maxContactLen    = 20
	maxCommentLen    = 500
)

const msgSlotUnavailable = "slot no longer available"

func validateRequest(req *models.BookingRequest) error {
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientContact = strings.TrimSpace(req.ClientContact)
	req.Comment = strings.TrimSpace(req.Comment)

	switch n := utf8.RuneCountInString(req.ClientName); {
	case n == 0:
		return domain.ValidationError{Field: "clientName", Msg: "is required"}
	case n > maxClientNameLen:
		return domain.ValidationError{Field: "clientName", Msg: fmt.Sprintf("must be at most %d characters", maxClientNameLen)}
	}
	switch n := utf8.RuneCountInString(req.ClientContact); {
	case n == 0:
		return domain.ValidationError{Field: "clientContact", Msg: "is required"}
	case n < minContactLen || n > maxContactLen:
		return domain.ValidationError{Field: "clientContact", Msg: fmt.Sprintf("must be %d to %d characters", minContactLen, maxContactLen)}
	}
	if utf8.RuneCountInString(req.Comment) > maxCommentLen {
		return domain.ValidationError{Field: "comment", Msg: fmt.Sprintf("must be at most %d characters", maxCommentLen)}
	}
	if req.ServiceID == "" && strings.TrimSpace(req.ServiceName) == "" {
		return domain.ValidationError{Field: "serviceId", Msg: "is required"}
	}
	return nil
}

// CreateBooking validates req, re-checks the slot under the shop lock and
// stores a pending booking.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	shop, err := s.Shops.GetBookable(ctx, req.ShopID)
	if err != nil {
		return nil, err
	}
	svc, ok := shop.FindService(req.ServiceID, req.ServiceName)
	if !ok {
		return nil, domain.ValidationError{Field: "serviceId", Msg: "unknown service"}
	}

	candidate, err := s.candidateInterval(req.Date, req.StartTime, svc.DurationMinutes)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !candidate.Start.After(now) {
		return nil, domain.ValidationError{Field: "startTime", Msg: "slot is in the past"}
	}
	if s.beyondHorizon(candidate.Start) {
		return nil, domain.ValidationError{
			Field: "date",
			Msg:   fmt.Sprintf("bookings open at most %d days ahead", s.HorizonDays),
		}
	}

	release, err := s.Locker.Lock(ctx, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock shop %s: %w", shop.ID, err)
	}
	defer release()

	free, err := s.isFree(ctx, shop.ID, candidate)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, domain.ConflictError{Resource: "booking", Msg: msgSlotUnavailable}
	}

	if err := s.checkPlanLimit(ctx, shop, now); err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:              uuid.New().String(),
		ShopID:          shop.ID,
		ClientName:      req.ClientName,
		ClientContact:   req.ClientContact,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		ServicePrice:    svc.Price,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: svc.DurationMinutes,
		StartAt:         candidate.Start.UTC(),
		EndAt:           candidate.End.UTC(),
		Comment:         req.Comment,
		Status:          models.BookingPending,
		CreatedAt:       now.UTC(),
	}
	if err := s.Store.Insert(ctx, b); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, domain.ConflictError{Resource: "booking", Msg: msgSlotUnavailable, Err: err}
		}
		return nil, fmt.Errorf("failed to store booking: %w", err)
	}

	utils.GetLogger().Info("booking created",
		zap.String("bookingID", b.ID),
		zap.String("shopID", b.ShopID),
		zap.String("date", b.Date),
		zap.String("startTime", b.StartTime),
		zap.Int("durationMinutes", b.DurationMinutes))

	s.publish(ctx, models.BookingEvent{
		Type:       models.EventBookingCreated,
		ShopID:     b.ShopID,
		BookingID:  b.ID,
		ClientName: b.ClientName,
		Service:    b.ServiceName,
		Date:       b.Date,
		StartTime:  b.StartTime,
		ToStatus:   b.Status,
		Actor:      models.Actor{}.Label(),
		OccurredAt: b.CreatedAt,
	})
	return b, nil
}

// checkPlanLimit refuses a booking once the shop's plan quota for the current
// calendar month is used up. Must run under the shop lock.
func (s *DefaultBookingService) checkPlanLimit(ctx context.Context, shop *models.Shop, now time.Time) error {
	limit := shop.Plan.MonthlyBookingLimit()
	if limit < 0 {
		return nil
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location())
	used, err := s.Store.CountCreatedSince(ctx, shop.ID, monthStart.UTC())
	if err != nil {
		return fmt.Errorf("failed to count bookings for shop %s: %w", shop.ID, err)
	}
	if used >= int64(limit) {
		return domain.ConflictError{Resource: "plan", Msg: fmt.Sprintf("monthly limit of %d bookings reached", limit)}
	}
	return nil
}
