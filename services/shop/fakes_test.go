package shop

import (
	"context"
	"slices"
	"sync"
	"time"

	shopRepo "barberhive/database/repository/shop"
	"barberhive/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// memShops is an in-memory ShopRepository with the same compare-and-set
// status semantics as the Mongo one.
type memShops struct {
	mu    sync.Mutex
	shops map[string]models.Shop
	// statusRace makes the next UpdateStatus see a concurrent change.
	statusRace bool
}

func newMemShops() *memShops {
	return &memShops{shops: map[string]models.Shop{}}
}

func (m *memShops) findBy(match func(models.Shop) bool) (*models.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shops {
		if match(s) {
			cp := s
			cp.Services = append([]models.Service(nil), s.Services...)
			return &cp, nil
		}
	}
	return nil, shopRepo.ErrShopNotFound
}

func (m *memShops) GetByID(_ context.Context, id string) (*models.Shop, error) {
	return m.findBy(func(s models.Shop) bool { return s.ID == id })
}

func (m *memShops) GetByEmail(_ context.Context, email string) (*models.Shop, error) {
	return m.findBy(func(s models.Shop) bool { return s.Email == email })
}

func (m *memShops) GetByPublicLink(_ context.Context, link string) (*models.Shop, error) {
	return m.findBy(func(s models.Shop) bool { return s.PublicLink == link })
}

func (m *memShops) GetByTokenHash(_ context.Context, hash string) (*models.Shop, error) {
	return m.findBy(func(s models.Shop) bool { return hash != "" && s.TokenHash == hash })
}

func (m *memShops) GetByFirebaseUID(_ context.Context, uid string) (*models.Shop, error) {
	return m.findBy(func(s models.Shop) bool { return uid != "" && s.FirebaseUID == uid })
}

func (m *memShops) ListByStatus(_ context.Context, status models.ShopStatus) ([]models.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Shop{}
	for _, s := range m.shops {
		if status == "" || s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memShops) Create(_ context.Context, shop *models.Shop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shops {
		if s.Email == shop.Email || s.PublicLink == shop.PublicLink {
			return shopRepo.ErrShopExists
		}
	}
	m.shops[shop.ID] = *shop
	return nil
}

func (m *memShops) UpdateStatus(_ context.Context, id string, change models.ShopStatusChange) (*models.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shops[id]
	if !ok {
		return nil, shopRepo.ErrShopNotFound
	}
	if m.statusRace {
		m.statusRace = false
		return nil, shopRepo.ErrShopStatusMismatch
	}
	if s.Status != change.From {
		return nil, shopRepo.ErrShopStatusMismatch
	}
	s.Status = change.To
	if change.ApprovedAt != nil {
		s.ApprovedAt = *change.ApprovedAt
	}
	if change.PlanExpiresAt != nil {
		s.PlanExpiresAt = *change.PlanExpiresAt
	}
	if change.TrialMode != nil {
		s.TrialMode = *change.TrialMode
	}
	if change.RejectionReason != "" {
		s.RejectionReason = change.RejectionReason
	}
	m.shops[id] = s
	return &s, nil
}

func (m *memShops) mutate(id string, fn func(*models.Shop)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shops[id]
	if !ok {
		return shopRepo.ErrShopNotFound
	}
	fn(&s)
	m.shops[id] = s
	return nil
}

func (m *memShops) ReplaceServices(_ context.Context, id string, services []models.Service) error {
	return m.mutate(id, func(s *models.Shop) { s.Services = append([]models.Service(nil), services...) })
}

func (m *memShops) SetBusinessHours(_ context.Context, id string, hours models.BusinessHours) error {
	return m.mutate(id, func(s *models.Shop) { s.Hours = &hours })
}

func (m *memShops) SetTokenHash(_ context.Context, id, hash string) error {
	return m.mutate(id, func(s *models.Shop) { s.TokenHash = hash })
}

func (m *memShops) SetFirebaseUID(_ context.Context, id, uid string) error {
	return m.mutate(id, func(s *models.Shop) { s.FirebaseUID = uid })
}

func (m *memShops) AddDeviceToken(_ context.Context, id, token string) error {
	return m.mutate(id, func(s *models.Shop) {
		for _, t := range s.DeviceTokens {
			if t == token {
				return
			}
		}
		s.DeviceTokens = append(s.DeviceTokens, token)
	})
}

func (m *memShops) RemoveDeviceTokens(_ context.Context, id string, tokens []string) error {
	return m.mutate(id, func(s *models.Shop) {
		var kept []string
		for _, t := range s.DeviceTokens {
			if !slices.Contains(tokens, t) {
				kept = append(kept, t)
			}
		}
		s.DeviceTokens = kept
	})
}

func (m *memShops) IncrementBookingCount(_ context.Context, id string, delta int64) error {
	return m.mutate(id, func(s *models.Shop) { s.TotalBookings += delta })
}

func (m *memShops) EnsureIndexes(context.Context) error { return nil }

func (m *memShops) put(s models.Shop) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shops[s.ID] = s
}

var _ shopRepo.ShopRepository = (*memShops)(nil)

type fakeHistory struct {
	gotShop, gotType string
	gotLimit         int64
}

func (f *fakeHistory) List(_ context.Context, shopID, eventType string, limit int64) ([]models.HistoryEntry, error) {
	f.gotShop, f.gotType, f.gotLimit = shopID, eventType, limit
	return []models.HistoryEntry{{ShopID: shopID, Type: models.EventBookingCreated}}, nil
}

func newTestService(opts Options) (*DefaultShopService, *memShops) {
	repo := newMemShops()
	svc := NewShopService(repo, &fakeHistory{}, nil, opts)
	svc.Now = func() time.Time { return testNow }
	return svc, repo
}

func validRegistration() models.RegisterShopRequest {
	return models.RegisterShopRequest{
		OwnerName: "Rafael Souza",
		ShopName:  "Navalha de Ouro",
		Email:     "  Rafael@Example.com ",
		Phone:     "11987654321",
		Password:  "s3cret!",
		Plan:      models.PlanBasic,
	}
}

func activeShop(id string) models.Shop {
	return models.Shop{
		ID:         id,
		Name:       "Corte Fino",
		Email:      id + "@example.com",
		PublicLink: "corte-fino-" + id,
		Status:     models.ShopActive,
		Plan:       models.PlanSpark,
		Services: []models.Service{
			{ID: "svc-cut", Name: "Corte", Price: 40, DurationMinutes: 30},
		},
	}
}
