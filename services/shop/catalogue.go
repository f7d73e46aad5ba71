package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	shopRepo "barberhive/database/repository/shop"
	"barberhive/domain"
	"barberhive/models"
	"barberhive/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minServiceMinutes  = 15
	maxServiceMinutes  = 480
	serviceGranularity = 5
	maxServiceNameLen  = 100
)

func validateService(input *models.ServiceInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return domain.ValidationError{Field: "name", Msg: "is required"}
	}
	if utf8.RuneCountInString(input.Name) > maxServiceNameLen {
		return domain.ValidationError{Field: "name", Msg: fmt.Sprintf("must be at most %d characters", maxServiceNameLen)}
	}
	if input.Price < 0 {
		return domain.ValidationError{Field: "price", Msg: "must not be negative"}
	}
	d := input.DurationMinutes
	if d < minServiceMinutes || d > maxServiceMinutes || d%serviceGranularity != 0 {
		return domain.ValidationError{
			Field: "durationMinutes",
			Msg:   fmt.Sprintf("must be %d to %d minutes in steps of %d", minServiceMinutes, maxServiceMinutes, serviceGranularity),
		}
	}
	return nil
}

func nameTaken(services []models.Service, name, exceptID string) bool {
	for _, svc := range services {
		if svc.ID != exceptID && strings.EqualFold(strings.TrimSpace(svc.Name), name) {
			return true
		}
	}
	return false
}

// editServices runs fn on the shop's current catalogue under the shop lock
// and stores the result.
func (s *DefaultShopService) editServices(ctx context.Context, shopID string, fn func([]models.Service) ([]models.Service, error)) error {
	if s.Locker != nil {
		release, err := s.Locker.Lock(ctx, shopID)
		if err != nil {
			return fmt.Errorf("failed to lock shop %s: %w", shopID, err)
		}
		defer release()
	}

	shop, err := s.GetByID(ctx, shopID)
	if err != nil {
		return err
	}
	current := append([]models.Service(nil), shop.Services...)
	next, err := fn(current)
	if err != nil {
		return err
	}
	if err := s.Repo.ReplaceServices(ctx, shopID, next); err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return domain.NotFoundError{Resource: "shop", ID: shopID, Err: err}
		}
		return fmt.Errorf("failed to save services: %w", err)
	}
	return nil
}

func (s *DefaultShopService) ListServices(ctx context.Context, shopID string) ([]models.Service, error) {
	shop, err := s.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.Services == nil {
		return []models.Service{}, nil
	}
	return shop.Services, nil
}

func (s *DefaultShopService) AddService(ctx context.Context, shopID string, input models.ServiceInput) (*models.Service, error) {
	if err := validateService(&input); err != nil {
		return nil, err
	}
	created := models.Service{
		ID:              uuid.New().String(),
		Name:            input.Name,
		Price:           input.Price,
		DurationMinutes: input.DurationMinutes,
	}
	err := s.editServices(ctx, shopID, func(services []models.Service) ([]models.Service, error) {
		if nameTaken(services, created.Name, "") {
			return nil, domain.ConflictError{Resource: "service", Msg: "a service named " + created.Name + " already exists"}
		}
		return append(services, created), nil
	})
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("service added", zap.String("shopID", shopID), zap.String("serviceID", created.ID))
	return &created, nil
}

// UpdateService edits a service in place. Bookings keep the name, price and
// duration they were made with.
func (s *DefaultShopService) UpdateService(ctx context.Context, shopID, serviceID string, input models.ServiceInput) (*models.Service, error) {
	if err := validateService(&input); err != nil {
		return nil, err
	}
	var updated models.Service
	err := s.editServices(ctx, shopID, func(services []models.Service) ([]models.Service, error) {
		if nameTaken(services, input.Name, serviceID) {
			return nil, domain.ConflictError{Resource: "service", Msg: "a service named " + input.Name + " already exists"}
		}
		for i := range services {
			if services[i].ID == serviceID {
				services[i].Name = input.Name
				services[i].Price = input.Price
				services[i].DurationMinutes = input.DurationMinutes
				updated = services[i]
				return services, nil
			}
		}
		return nil, domain.NotFoundError{Resource: "service", ID: serviceID}
	})
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("service updated",
		zap.String("shopID", shopID), zap.String("serviceID", serviceID), zap.String("name", updated.Name))
	return &updated, nil
}

func (s *DefaultShopService) RemoveService(ctx context.Context, shopID, serviceID string) error {
	err := s.editServices(ctx, shopID, func(services []models.Service) ([]models.Service, error) {
		for i := range services {
			if services[i].ID == serviceID {
				return append(services[:i], services[i+1:]...), nil
			}
		}
		return nil, domain.NotFoundError{Resource: "service", ID: serviceID}
	})
	if err != nil {
		return err
	}
	utils.GetLogger().Info("service removed", zap.String("shopID", shopID), zap.String("serviceID", serviceID))
	return nil
}

// SetBusinessHours replaces the grid offered on the public booking page.
func (s *DefaultShopService) SetBusinessHours(ctx context.Context, shopID string, hours models.BusinessHours) (*models.BusinessHours, error) {
	open, err := utils.ParseClock(hours.Open)
	if err != nil {
		return nil, domain.ValidationError{Field: "open", Msg: "expected HH:MM", Err: err}
	}
	closing, err := utils.ParseClock(hours.Close)
	if err != nil {
		return nil, domain.ValidationError{Field: "close", Msg: "expected HH:MM", Err: err}
	}
	if closing < open {
		return nil, domain.ValidationError{Field: "close", Msg: "must not be before open"}
	}
	if hours.StepMinutes < serviceGranularity || hours.StepMinutes > 240 || hours.StepMinutes%serviceGranularity != 0 {
		return nil, domain.ValidationError{Field: "stepMinutes", Msg: "must be 5 to 240 minutes in steps of 5"}
	}
	if err := s.Repo.SetBusinessHours(ctx, shopID, hours); err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return nil, domain.NotFoundError{Resource: "shop", ID: shopID, Err: err}
		}
		return nil, fmt.Errorf("failed to save business hours: %w", err)
	}
	utils.GetLogger().Info("business hours updated",
		zap.String("shopID", shopID), zap.String("open", hours.Open), zap.String("close", hours.Close))
	return &hours, nil
}
