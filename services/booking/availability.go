package booking

import (
	"context"
	"fmt"

	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"

	"go.uber.org/zap"
)

// candidateInterval resolves a local date and wall-clock start into an
// absolute interval.
func (s *DefaultBookingService) candidateInterval(date, startTime string, durationMinutes int) (Interval, error) {
	if durationMinutes <= 0 {
		return Interval{}, domain.ValidationError{Field: "durationMinutes", Msg: "must be positive"}
	}
	start, err := utils.LocalDateTime(date, startTime, s.location())
	if err != nil {
		return Interval{}, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD and HH:MM", Err: err}
	}
	return NewInterval(start, durationMinutes), nil
}

// isFree fetches every occupying booking that could touch candidate,
// including ones that started on an earlier day, and tests each in process.
func (s *DefaultBookingService) isFree(ctx context.Context, shopID string, candidate Interval) (bool, error) {
	existing, err := s.Store.ListOverlapping(ctx, shopID, candidate.Start, candidate.End)
	if err != nil {
		return false, fmt.Errorf("failed to load bookings for shop %s: %w", shopID, err)
	}
	return Available(candidate, existing), nil
}

// CheckAvailability reports whether shopID can take a booking of
// durationMinutes starting at startTime on date. Dates past the booking
// horizon are never available.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, shopID, date, startTime string, durationMinutes int) (bool, error) {
	candidate, err := s.candidateInterval(date, startTime, durationMinutes)
	if err != nil {
		return false, err
	}
	if _, err := s.Shops.GetBookable(ctx, shopID); err != nil {
		return false, err
	}
	if s.beyondHorizon(candidate.Start) {
		return false, nil
	}
	return s.isFree(ctx, shopID, candidate)
}

// CheckServiceAvailability is CheckAvailability with the duration taken from
// one of the shop's services.
func (s *DefaultBookingService) CheckServiceAvailability(ctx context.Context, shopID, date, startTime, serviceID string) (bool, error) {
	shop, err := s.Shops.GetBookable(ctx, shopID)
	if err != nil {
		return false, err
	}
	svc, ok := shop.FindService(serviceID, "")
	if !ok {
		return false, domain.ValidationError{Field: "serviceId", Msg: "unknown service"}
	}
	candidate, err := s.candidateInterval(date, startTime, svc.DurationMinutes)
	if err != nil {
		return false, err
	}
	if s.beyondHorizon(candidate.Start) {
		return false, nil
	}
	return s.isFree(ctx, shopID, candidate)
}

// GetDaySlots lays the shop's opening-hours grid over date and marks each
// start as free or taken for the chosen service. Starts already in the past
// or past the booking horizon are never offered.
func (s *DefaultBookingService) GetDaySlots(ctx context.Context, shopID, date, serviceID string) ([]models.SlotAvailability, error) {
	shop, err := s.Shops.GetBookable(ctx, shopID)
	if err != nil {
		return nil, err
	}
	svc, ok := shop.FindService(serviceID, "")
	if !ok {
		return nil, domain.ValidationError{Field: "serviceId", Msg: "unknown service"}
	}
	if svc.DurationMinutes <= 0 {
		return nil, domain.ValidationError{Field: "durationMinutes", Msg: "service has no duration"}
	}
	if _, err := utils.ParseDate(date, s.location()); err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "expected YYYY-MM-DD", Err: err}
	}

	hours := shop.BusinessHoursOrDefault()
	open, err := utils.ParseClock(hours.Open)
	if err != nil {
		return nil, fmt.Errorf("shop %s has invalid opening time: %w", shopID, err)
	}
	closing, err := utils.ParseClock(hours.Close)
	if err != nil {
		return nil, fmt.Errorf("shop %s has invalid closing time: %w", shopID, err)
	}

	var candidates []Interval
	var starts []int
	for m := open; m <= closing; m += hours.StepMinutes {
		iv, err := s.candidateInterval(date, utils.FormatClock(m), svc.DurationMinutes)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, iv)
		starts = append(starts, m)
	}
	slots := make([]models.SlotAvailability, 0, len(candidates))
	if len(candidates) == 0 {
		return slots, nil
	}

	// One window query covers the whole grid; a day past the horizon needs none.
	var existing []models.Booking
	if !s.beyondHorizon(candidates[0].Start) {
		existing, err = s.Store.ListOverlapping(ctx, shopID, candidates[0].Start, candidates[len(candidates)-1].End)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings for shop %s: %w", shopID, err)
		}
	}

	now := s.now()
	for i, iv := range candidates {
		bookable := iv.Start.After(now) && !s.beyondHorizon(iv.Start)
		slots = append(slots, models.SlotAvailability{
			StartTime: utils.FormatClock(starts[i]),
			EndTime:   utils.FormatClock(starts[i] + svc.DurationMinutes),
			Available: bookable && Available(iv, existing),
		})
	}
	utils.GetLogger().Debug("built availability grid",
		zap.String("shopID", shopID), zap.String("date", date), zap.Int("slots", len(slots)))
	return slots, nil
}
