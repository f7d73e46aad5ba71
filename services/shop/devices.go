package shop

import (
	"context"
	"errors"
	"strings"

	shopRepo "barberhive/database/repository/shop"
	"barberhive/domain"
)

const maxDeviceTokenLen = 4096

// RegisterDevice adds an FCM registration token to the shop. Registering a
// known token is a no-op.
func (s *DefaultShopService) RegisterDevice(ctx context.Context, shopID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > maxDeviceTokenLen {
		return domain.ValidationError{Field: "token", Msg: "must be a device registration token"}
	}
	if err := s.Repo.AddDeviceToken(ctx, shopID, token); err != nil {
		if errors.Is(err, shopRepo.ErrShopNotFound) {
			return domain.NotFoundError{Resource: "shop", ID: shopID, Err: err}
		}
		return err
	}
	return nil
}
