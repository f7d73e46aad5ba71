package booking

import (
	"time"

	"barberhive/models"
)

// Interval is the half-open span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start time.Time, durationMinutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(durationMinutes) * time.Minute)}
}

// Overlaps reports whether a and b share any instant. Touching endpoints do not
// overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func (a Interval) Overlaps(b Interval) bool { return Overlaps(a, b) }

// BookingInterval returns the span a stored booking covers.
func BookingInterval(b models.Booking) Interval {
	if b.EndAt.IsZero() {
		return NewInterval(b.StartAt, b.DurationMinutes)
	}
	return Interval{Start: b.StartAt, End: b.EndAt}
}

// Available reports whether candidate is free of every occupying booking.
func Available(candidate Interval, bookings []models.Booking) bool {
	for _, b := range bookings {
		if !b.Status.IsOccupying() {
			continue
		}
		if Overlaps(candidate, BookingInterval(b)) {
			return false
		}
	}
	return true
}
