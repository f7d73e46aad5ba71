package models

import (
	"strings"
	"time"
)

// ShopStatus is the tenant lifecycle state managed by the platform admin.
type ShopStatus string

const (
	ShopPending   ShopStatus = "pending"
	ShopApproved  ShopStatus = "approved"
	ShopActive    ShopStatus = "active"
	ShopSuspended ShopStatus = "suspended"
	ShopRejected  ShopStatus = "rejected"
)

var shopTransitions = map[ShopStatus][]ShopStatus{
	ShopPending:   {ShopApproved, ShopActive, ShopRejected},
	ShopApproved:  {ShopActive, ShopSuspended},
	ShopActive:    {ShopSuspended},
	ShopSuspended: {ShopActive},
	ShopRejected:  {},
}

func (s ShopStatus) IsValid() bool {
	_, ok := shopTransitions[s]
	return ok
}

func (s ShopStatus) CanTransitionTo(target ShopStatus) bool {
	for _, allowed := range shopTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// PlanType names a subscription tier.
type PlanType string

const (
	PlanTrial PlanType = "trial"
	PlanBasic PlanType = "basic"
	PlanSpark PlanType = "spark"
	PlanBlaze PlanType = "blaze"
)

// BillingPeriod is how often a paid plan is charged.
type BillingPeriod string

const (
	BillingMonthly    BillingPeriod = "monthly"
	BillingSemiannual BillingPeriod = "semiannual"
	BillingAnnual     BillingPeriod = "annual"
)

// monthlyBookingLimits holds the bookings allowed per calendar month; -1 is unlimited.
var monthlyBookingLimits = map[PlanType]int{
	PlanTrial: 100,
	PlanBasic: 100,
	PlanSpark: 300,
	PlanBlaze: -1,
}

func (p PlanType) IsValid() bool {
	_, ok := monthlyBookingLimits[p]
	return ok
}

// MonthlyBookingLimit returns the monthly cap for the plan, or -1 when unlimited.
func (p PlanType) MonthlyBookingLimit() int {
	limit, ok := monthlyBookingLimits[p]
	if !ok {
		return monthlyBookingLimits[PlanBasic]
	}
	return limit
}

func (b BillingPeriod) IsValid() bool {
	switch b {
	case BillingMonthly, BillingSemiannual, BillingAnnual:
		return true
	}
	return false
}

// BusinessHours bounds the public availability grid.
type BusinessHours struct {
	Open        string `bson:"open" json:"open"`   // "08:00"
	Close       string `bson:"close" json:"close"` // "18:00", last start offered
	StepMinutes int    `bson:"stepMinutes" json:"stepMinutes"`
}

// DefaultBusinessHours matches the grid the public booking page has always offered.
var DefaultBusinessHours = BusinessHours{Open: "08:00", Close: "18:00", StepMinutes: 30}

// Service is one offering of a shop. ID is stable across renames.
type Service struct {
	ID              string  `bson:"id" json:"id"`
	Name            string  `bson:"name" json:"name"`
	Price           float64 `bson:"price" json:"price"`
	DurationMinutes int     `bson:"durationMinutes" json:"durationMinutes"`
}

// ServiceInput is the owner-supplied payload for creating or editing a service.
type ServiceInput struct {
	Name            string  `json:"name" binding:"required"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes" binding:"required"`
}

// Shop is a tenant: one barber shop account.
type Shop struct {
	ID              string         `bson:"id" json:"id"`
	OwnerName       string         `bson:"ownerName" json:"ownerName"`
	Name            string         `bson:"name" json:"name"`
	Email           string         `bson:"email" json:"email"`
	Phone           string         `bson:"phone" json:"phone"`
	Address         string         `bson:"address,omitempty" json:"address,omitempty"`
	PublicLink      string         `bson:"publicLink" json:"publicLink"`
	Services        []Service      `bson:"services" json:"services"`
	Hours           *BusinessHours `bson:"hours,omitempty" json:"hours,omitempty"`
	Status          ShopStatus     `bson:"status" json:"status"`
	Plan            PlanType       `bson:"plan" json:"plan"`
	BillingPeriod   BillingPeriod  `bson:"billingPeriod" json:"billingPeriod"`
	TrialMode       bool           `bson:"trialMode" json:"trialMode"`
	PlanExpiresAt   time.Time      `bson:"planExpiresAt,omitempty" json:"planExpiresAt,omitempty"`
	ApprovedAt      time.Time      `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	RejectionReason string         `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	TotalBookings   int64          `bson:"totalBookings" json:"totalBookings"`
	FirebaseUID     string         `bson:"firebaseUid,omitempty" json:"-"`
	DeviceTokens    []string       `bson:"deviceTokens,omitempty" json:"-"`
	PasswordHash    string         `bson:"passwordHash" json:"-"`
	TokenHash       string         `bson:"tokenHash,omitempty" json:"-"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// BusinessHoursOrDefault returns the configured grid or the default one.
func (s *Shop) BusinessHoursOrDefault() BusinessHours {
	if s.Hours == nil || s.Hours.Open == "" || s.Hours.Close == "" || s.Hours.StepMinutes <= 0 {
		return DefaultBusinessHours
	}
	return *s.Hours
}

// FindService resolves a service by stable id, falling back to a
// case-insensitive name match when id is empty.
func (s *Shop) FindService(id, name string) (Service, bool) {
	if id != "" {
		for _, svc := range s.Services {
			if svc.ID == id {
				return svc, true
			}
		}
		return Service{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Service{}, false
	}
	for _, svc := range s.Services {
		if strings.EqualFold(strings.TrimSpace(svc.Name), name) {
			return svc, true
		}
	}
	return Service{}, false
}

// PublicShopDTO is what the public booking page may see.
type PublicShopDTO struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Address    string        `json:"address,omitempty"`
	Phone      string        `json:"phone"`
	PublicLink string        `json:"publicLink"`
	Services   []Service     `json:"services"`
	Hours      BusinessHours `json:"hours"`
}

// ToPublicDTO strips owner and billing data.
func (s *Shop) ToPublicDTO() PublicShopDTO {
	services := s.Services
	if services == nil {
		services = []Service{}
	}
	return PublicShopDTO{
		ID:         s.ID,
		Name:       s.Name,
		Address:    s.Address,
		Phone:      s.Phone,
		PublicLink: s.PublicLink,
		Services:   services,
		Hours:      s.BusinessHoursOrDefault(),
	}
}

// RegisterShopRequest is the signup payload.
type RegisterShopRequest struct {
	OwnerName     string        `json:"ownerName" binding:"required"`
	ShopName      string        `json:"shopName" binding:"required"`
	Email         string        `json:"email" binding:"required"`
	Phone         string        `json:"phone" binding:"required"`
	Address       string        `json:"address"`
	Password      string        `json:"password" binding:"required"`
	Plan          PlanType      `json:"plan" binding:"required"`
	BillingPeriod BillingPeriod `json:"billingPeriod"`
}

// LoginRequest is the owner login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RejectShopRequest carries the admin's mandatory rejection reason.
type RejectShopRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ShopStatusChange is a compare-and-set status update together with the
// fields the transition stamps. Nil pointers leave the stored value alone.
type ShopStatusChange struct {
	From            ShopStatus
	To              ShopStatus
	ApprovedAt      *time.Time
	PlanExpiresAt   *time.Time
	TrialMode       *bool
	RejectionReason string
}

// OwnerAuthResponse is returned by a successful owner login.
type OwnerAuthResponse struct {
	ShopID string `json:"shopId"`
	Token  string `json:"token"`
	Shop   *Shop  `json:"shop"`
}

// DeviceTokenRequest registers an owner device for push notifications.
type DeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
