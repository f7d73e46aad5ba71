package handlers

import (
	"net/http"
	"strconv"

	"barberhive/domain"
	"barberhive/models"
	"barberhive/services/booking"
	"barberhive/services/shop"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PublicHandler serves the client-facing booking page. Shops are addressed
// by their public link.
type PublicHandler struct {
	Shops    shop.ShopService
	Bookings booking.BookingService
}

func NewPublicHandler(shops shop.ShopService, bookings booking.BookingService) *PublicHandler {
	return &PublicHandler{Shops: shops, Bookings: bookings}
}

func (h *PublicHandler) bookableShop(c *gin.Context) (*models.Shop, bool) {
	s, err := h.Shops.GetBookableByLink(c.Request.Context(), c.Param("link"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

// GetShopHandler returns the public profile and service list.
func (h *PublicHandler) GetShopHandler(c *gin.Context) {
	s, ok := h.bookableShop(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.ToPublicDTO())
}

// GetSlotsHandler returns the day grid for one service.
func (h *PublicHandler) GetSlotsHandler(c *gin.Context) {
	s, ok := h.bookableShop(c)
	if !ok {
		return
	}
	date := c.Query("date")
	serviceID := c.Query("serviceId")
	if date == "" || serviceID == "" {
		respondError(c, domain.ValidationError{Msg: "date and serviceId are required"})
		return
	}

	slots, err := h.Bookings.GetDaySlots(c.Request.Context(), s.ID, date, serviceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "serviceId": serviceID, "slots": slots})
}

// CheckAvailabilityHandler answers whether one start time is free, for a
// catalogue service or for an explicit durationMinutes.
func (h *PublicHandler) CheckAvailabilityHandler(c *gin.Context) {
	s, ok := h.bookableShop(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	date, startTime := c.Query("date"), c.Query("time")

	var (
		available bool
		err       error
	)
	if serviceID := c.Query("serviceId"); serviceID != "" {
		available, err = h.Bookings.CheckServiceAvailability(ctx, s.ID, date, startTime, serviceID)
	} else {
		duration, convErr := strconv.Atoi(c.Query("durationMinutes"))
		if convErr != nil {
			respondError(c, domain.ValidationError{Field: "durationMinutes", Msg: "serviceId or durationMinutes is required", Err: convErr})
			return
		}
		available, err = h.Bookings.CheckAvailability(ctx, s.ID, date, startTime, duration)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "time": startTime, "available": available})
}

// CreateBookingHandler books a slot for a client.
func (h *PublicHandler) CreateBookingHandler(c *gin.Context) {
	logger := getLogger(c)
	s, ok := h.bookableShop(c)
	if !ok {
		return
	}

	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.ShopID = s.ID

	b, err := h.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		logger.Info("booking refused", zap.String("shopID", s.ID), zap.String("date", req.Date),
			zap.String("startTime", req.StartTime), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}
