package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingRepo "barberhive/database/repository/booking"
	"barberhive/domain"
	"barberhive/models"
)

var testLoc = time.FixedZone("BRT", -3*3600)

// testNow sits well before every slot used in these tests.
var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, testLoc)

type fakeShops struct {
	shops map[string]*models.Shop
}

func (f *fakeShops) GetBookable(_ context.Context, shopID string) (*models.Shop, error) {
	shop, ok := f.shops[shopID]
	if !ok || shop.Status != models.ShopActive {
		return nil, domain.NotFoundError{Resource: "shop", ID: shopID}
	}
	s := *shop
	return &s, nil
}

// memStore mirrors the Mongo repository: insert re-checks overlaps, status
// updates are compare-and-set.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	// listDelay widens the read-then-write window for race tests.
	listDelay time.Duration
	// skipInsertCheck disables the store-side overlap check.
	skipInsertCheck bool
	// mismatchOnce makes the next UpdateStatus lose a race once.
	mismatchOnce bool
}

func newMemStore() *memStore {
	return &memStore{bookings: map[string]models.Booking{}}
}

func (m *memStore) Insert(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.Occupying = b.Status.IsOccupying()
	if !m.skipInsertCheck && b.Occupying {
		for _, existing := range m.bookings {
			if existing.ShopID == b.ShopID && existing.Status.IsOccupying() && Overlaps(BookingInterval(existing), BookingInterval(*b)) {
				return bookingRepo.ErrSlotTaken
			}
		}
	}
	m.bookings[b.ID] = *b
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (m *memStore) ListOverlapping(_ context.Context, shopID string, from, to time.Time) ([]models.Booking, error) {
	if m.listDelay > 0 {
		time.Sleep(m.listDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.ShopID == shopID && b.Status.IsOccupying() && b.StartAt.Before(to) && b.EndAt.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if filter.ShopID != "" && b.ShopID != filter.ShopID {
			continue
		}
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (m *memStore) CountCreatedSince(_ context.Context, shopID string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if b.ShopID == shopID && !b.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	if m.mismatchOnce {
		m.mismatchOnce = false
		return nil, bookingRepo.ErrStatusMismatch
	}
	if b.Status != from {
		return nil, bookingRepo.ErrStatusMismatch
	}
	b.Status = to
	b.Occupying = to.IsOccupying()
	m.bookings[id] = b
	return &b, nil
}

// put stores a booking directly, bypassing the writer.
func (m *memStore) put(id, shopID, date, start string, minutes int, status models.BookingStatus) models.Booking {
	startAt, err := time.ParseInLocation("2006-01-02 15:04", date+" "+start, testLoc)
	if err != nil {
		panic(err)
	}
	b := models.Booking{
		ID:              id,
		ShopID:          shopID,
		ClientName:      "Existing",
		ServiceName:     "Haircut",
		Date:            date,
		StartTime:       start,
		DurationMinutes: minutes,
		StartAt:         startAt,
		EndAt:           startAt.Add(time.Duration(minutes) * time.Minute),
		Status:          status,
		Occupying:       status.IsOccupying(),
		CreatedAt:       testNow,
	}
	m.mu.Lock()
	m.bookings[id] = b
	m.mu.Unlock()
	return b
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.BookingEvent
}

func (p *recordingPublisher) PublishBookingEvent(_ context.Context, e models.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// noLock is a ShopLocker that never serializes anything.
type noLock struct{}

func (noLock) Lock(context.Context, string) (func(), error) { return func() {}, nil }

func testShop() *models.Shop {
	return &models.Shop{
		ID:         "shop-1",
		Name:       "Navalha",
		PublicLink: "navalha",
		Status:     models.ShopActive,
		Plan:       models.PlanBlaze,
		Services: []models.Service{
			{ID: "svc-cut", Name: "Haircut", Price: 40, DurationMinutes: 30},
			{ID: "svc-beard", Name: "Beard", Price: 25, DurationMinutes: 20},
			{ID: "svc-long", Name: "Colour", Price: 120, DurationMinutes: 90},
		},
	}
}

type fixture struct {
	svc    *DefaultBookingService
	store  *memStore
	shops  *fakeShops
	events *recordingPublisher
}

func newFixture() *fixture {
	store := newMemStore()
	shops := &fakeShops{shops: map[string]*models.Shop{"shop-1": testShop()}}
	events := &recordingPublisher{}
	svc := NewBookingService(shops, store, NewLocalShopLocker(), events, testLoc)
	svc.Now = func() time.Time { return testNow }
	return &fixture{svc: svc, store: store, shops: shops, events: events}
}

func validRequest(start string) models.BookingRequest {
	return models.BookingRequest{
		ShopID:        "shop-1",
		ClientName:    "Carlos",
		ClientContact: "11987654321",
		ServiceID:     "svc-cut",
		Date:          "2024-06-10",
		StartTime:     start,
	}
}
