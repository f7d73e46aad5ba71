package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the legal status table. Terminal statuses map to an
// empty list.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
	BookingCompleted: {},
	BookingCancelled: {},
}

// OccupyingStatuses hold their time slot against new bookings.
var OccupyingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo reports whether the table allows s -> target.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	allowed, ok := bookingTransitions[s]
	return !ok || len(allowed) == 0
}

// IsOccupying reports whether a booking in this status blocks its slot.
func (s BookingStatus) IsOccupying() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking is one client appointment at one shop. Service name, duration and
// price are snapshots taken at booking time.
type Booking struct {
	ID              string        `bson:"id" json:"id"`
	ShopID          string        `bson:"shopId" json:"shopId"`
	ClientName      string        `bson:"clientName" json:"clientName"`
	ClientContact   string        `bson:"clientContact" json:"clientContact"`
	ServiceID       string        `bson:"serviceId" json:"serviceId"`
	ServiceName     string        `bson:"serviceName" json:"serviceName"`
	ServicePrice    float64       `bson:"servicePrice" json:"servicePrice"`
	Date            string        `bson:"date" json:"date"`                   // "2006-01-02", local calendar date
	StartTime       string        `bson:"startTime" json:"startTime"`         // "15:04", local wall clock
	DurationMinutes int           `bson:"durationMinutes" json:"durationMinutes"`
	StartAt         time.Time     `bson:"startAt" json:"startAt"`             // absolute start, used for overlap queries
	EndAt           time.Time     `bson:"endAt" json:"endAt"`                 // StartAt + DurationMinutes
	Comment         string        `bson:"comment,omitempty" json:"comment,omitempty"`
	Status          BookingStatus `bson:"status" json:"status"`
	Occupying       bool          `bson:"occupying" json:"-"` // mirrors Status.IsOccupying(); backs the partial unique index
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// BookingRequest is the public booking form payload.
type BookingRequest struct {
	ShopID        string `json:"-"`
	ClientName    string `json:"clientName" binding:"required"`
	ClientContact string `json:"clientContact" binding:"required"`
	ServiceID     string `json:"serviceId"`
	ServiceName   string `json:"serviceName"` // fallback lookup when no id is sent
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"startTime" binding:"required"`
	Comment       string `json:"comment"`
}

// BookingFilter narrows dashboard listings. Zero values are ignored.
type BookingFilter struct {
	ShopID string
	Date   string
	Status BookingStatus
	From   time.Time
	To     time.Time
	Limit  int64
}

// StatusUpdateRequest is the payload for a booking status change.
type StatusUpdateRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}

// SlotAvailability is one cell of the public availability grid.
type SlotAvailability struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"available"`
}
