package models

import "time"

// Booking event types carried on the queue and recorded in the history log.
const (
	EventBookingCreated       = "booking_created"
	EventBookingStatusChanged = "booking_status_changed"
)

// BookingEvent is the queue payload published after a booking write.
type BookingEvent struct {
	Type       string        `json:"type"`
	ShopID     string        `json:"shopId"`
	BookingID  string        `json:"bookingId"`
	ClientName string        `json:"clientName"`
	Service    string        `json:"service"`
	Date       string        `json:"date"`
	StartTime  string        `json:"startTime"`
	FromStatus BookingStatus `json:"fromStatus,omitempty"`
	ToStatus   BookingStatus `json:"toStatus"`
	Actor      string        `json:"actor,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// HistoryEntry is one line of a shop's activity log.
type HistoryEntry struct {
	ID          string    `bson:"id" json:"id"`
	ShopID      string    `bson:"shopId" json:"shopId"`
	Type        string    `bson:"type" json:"type"`
	Description string    `bson:"description" json:"description"`
	BookingID   string    `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Actor       string    `bson:"actor,omitempty" json:"actor,omitempty"`
	OccurredAt  time.Time `bson:"occurredAt" json:"occurredAt"`
}

// Actor identifies who is calling a core operation. An empty ShopID with
// Admin set means platform-wide access.
type Actor struct {
	ShopID string
	Admin  bool
}

// Label renders the actor for logs and history entries.
func (a Actor) Label() string {
	if a.Admin {
		return "admin"
	}
	if a.ShopID != "" {
		return "owner:" + a.ShopID
	}
	return "public"
}

// CanAccessShop reports whether the actor may act on the given shop's data.
func (a Actor) CanAccessShop(shopID string) bool {
	return a.Admin || (a.ShopID != "" && a.ShopID == shopID)
}
