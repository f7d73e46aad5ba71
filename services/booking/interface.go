package booking

import (
	"context"
	"time"

	"barberhive/models"
	"barberhive/utils"

	"go.uber.org/zap"
)

// ShopDirectory resolves shops that may currently take bookings. It reports a
// domain.NotFoundError for a missing, unapproved, suspended or expired shop.
type ShopDirectory interface {
	GetBookable(ctx context.Context, shopID string) (*models.Shop, error)
}

// BookingStore is the persistence the booking core needs.
type BookingStore interface {
	Insert(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListOverlapping(ctx context.Context, shopID string, from, to time.Time) ([]models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	CountCreatedSince(ctx context.Context, shopID string, since time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)
}

// ShopLocker serializes booking writes for one shop. The returned func
// releases the lock.
type ShopLocker interface {
	Lock(ctx context.Context, shopID string) (func(), error)
}

// EventPublisher hands booking events to the background worker.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event models.BookingEvent) error
}

// BookingService is the availability, booking and status core.
type BookingService interface {
	CheckAvailability(ctx context.Context, shopID, date, startTime string, durationMinutes int) (bool, error)
	CheckServiceAvailability(ctx context.Context, shopID, date, startTime, serviceID string) (bool, error)
	GetDaySlots(ctx context.Context, shopID, date, serviceID string) ([]models.SlotAvailability, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor models.Actor, bookingID string, target models.BookingStatus) (*models.Booking, error)
	ListBookings(ctx context.Context, actor models.Actor, filter models.BookingFilter) ([]models.Booking, error)
}

// DefaultHorizonDays is how far ahead, in calendar days, clients may book.
const DefaultHorizonDays = 30

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Shops    ShopDirectory
	Store    BookingStore
	Locker   ShopLocker
	Events   EventPublisher // optional
	Location *time.Location
	Now      func() time.Time
	// HorizonDays bounds the last bookable date to today plus this many
	// days. Zero or less lifts the bound.
	HorizonDays int
}

func NewBookingService(shops ShopDirectory, store BookingStore, locker ShopLocker, events EventPublisher, loc *time.Location) *DefaultBookingService {
	if loc == nil {
		loc = time.UTC
	}
	if locker == nil {
		locker = NewLocalShopLocker()
	}
	return &DefaultBookingService{
		Shops:       shops,
		Store:       store,
		Locker:      locker,
		Events:      events,
		Location:    loc,
		Now:         time.Now,
		HorizonDays: DefaultHorizonDays,
	}
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.location())
	}
	return s.Now().In(s.location())
}

func (s *DefaultBookingService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// beyondHorizon reports whether start falls on a local date after the last
// bookable one.
func (s *DefaultBookingService) beyondHorizon(start time.Time) bool {
	if s.HorizonDays <= 0 {
		return false
	}
	now := s.now()
	loc := s.location()
	last := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, s.HorizonDays+1)
	return !start.In(loc).Before(last)
}

func (s *DefaultBookingService) publish(ctx context.Context, event models.BookingEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishBookingEvent(ctx, event); err != nil {
		utils.GetLogger().Warn("booking event not queued",
			zap.String("type", event.Type),
			zap.String("bookingID", event.BookingID),
			zap.String("shopID", event.ShopID),
			zap.Error(err))
	}
}
