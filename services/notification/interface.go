package notification

import (
	"context"
	"fmt"

	"barberhive/models"
	"barberhive/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// NotificationService pushes booking activity to shop owners' devices.
type NotificationService interface {
	NotifyBookingEvent(ctx context.Context, event models.BookingEvent) error
}

// Sender delivers one message to many devices. *messaging.Client satisfies it.
type Sender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// ShopDevices looks up and prunes the owner's registered devices.
type ShopDevices interface {
	GetByID(ctx context.Context, id string) (*models.Shop, error)
	RemoveDeviceTokens(ctx context.Context, id string, tokens []string) error
}

// isStaleToken reports whether FCM rejected a token for good.
var isStaleToken = messaging.IsUnregistered

// DefaultNotificationService is the FCM implementation.
type DefaultNotificationService struct {
	sender Sender
	shops  ShopDevices
}

func NewDefaultNotificationService(sender Sender, shops ShopDevices) (*DefaultNotificationService, error) {
	if sender == nil || shops == nil {
		return nil, fmt.Errorf("notification service initialization error: sender or shop store is nil")
	}
	return &DefaultNotificationService{sender: sender, shops: shops}, nil
}

// NotifyBookingEvent tells the owner about a new booking. Other event types
// and shops without devices are ignored. Tokens FCM reports as unregistered
// are removed from the shop.
func (s *DefaultNotificationService) NotifyBookingEvent(ctx context.Context, event models.BookingEvent) error {
	if event.Type != models.EventBookingCreated {
		return nil
	}
	shop, err := s.shops.GetByID(ctx, event.ShopID)
	if err != nil {
		return fmt.Errorf("NotifyBookingEvent: could not find shop %s: %w", event.ShopID, err)
	}
	if len(shop.DeviceTokens) == 0 {
		return nil
	}

	msg := bookingMessage(event)
	msg.Tokens = shop.DeviceTokens
	resp, err := s.sender.SendEachForMulticast(ctx, msg)
	if err != nil {
		return fmt.Errorf("NotifyBookingEvent: failed to send FCM message: %w", err)
	}

	var stale []string
	for i, r := range resp.Responses {
		if r == nil || r.Success || i >= len(msg.Tokens) {
			continue
		}
		if isStaleToken(r.Error) {
			stale = append(stale, msg.Tokens[i])
		}
	}
	if len(stale) > 0 {
		if err := s.shops.RemoveDeviceTokens(ctx, event.ShopID, stale); err != nil {
			utils.GetLogger().Warn("failed to prune device tokens", zap.String("shopID", event.ShopID), zap.Error(err))
		}
	}
	if resp.FailureCount > 0 {
		utils.GetLogger().Debug("booking push partially delivered",
			zap.String("shopID", event.ShopID), zap.Int("success", resp.SuccessCount), zap.Int("failure", resp.FailureCount))
	}
	return nil
}

func bookingMessage(event models.BookingEvent) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: "New booking",
			Body:  fmt.Sprintf("%s booked %s on %s at %s", event.ClientName, event.Service, event.Date, event.StartTime),
		},
		Data: map[string]string{
			"type":      event.Type,
			"bookingId": event.BookingID,
			"date":      event.Date,
			"startTime": event.StartTime,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
