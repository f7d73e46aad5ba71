package bookingRepo

import (
	"context"
	"errors"
	"time"

	"barberhive/models"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	// ErrSlotTaken means another occupying booking already holds part of the interval.
	ErrSlotTaken = errors.New("booking slot already taken")
	// ErrStatusMismatch means the stored status was no longer the expected one.
	ErrStatusMismatch = errors.New("booking status changed concurrently")
)

// BookingRepository is the booking store used by the availability and
// lifecycle services.
type BookingRepository interface {
	// Insert stores a booking after re-checking, in the same transaction, that
	// no occupying booking overlaps it.
	Insert(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListForShopOnDate(ctx context.Context, shopID, date string) ([]models.Booking, error)
	// ListOverlapping returns occupying bookings with startAt < to and endAt > from.
	ListOverlapping(ctx context.Context, shopID string, from, to time.Time) ([]models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	CountCreatedSince(ctx context.Context, shopID string, since time.Time) (int64, error)
	// UpdateStatus moves a booking from one status to another only if it is still in from.
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)
	EnsureIndexes(ctx context.Context) error
}
