package handlers

import (
	"net/http"
	"strconv"

	"barberhive/domain"
	"barberhive/middleware"
	"barberhive/models"
	"barberhive/services/booking"
	"barberhive/services/shop"

	"github.com/gin-gonic/gin"
)

// ShopHandler serves signup, login and the owner dashboard. Every /me route
// acts on the shop of the authenticated owner.
type ShopHandler struct {
	Shops    shop.ShopService
	Bookings booking.BookingService
}

func NewShopHandler(shops shop.ShopService, bookings booking.BookingService) *ShopHandler {
	return &ShopHandler{Shops: shops, Bookings: bookings}
}

// RegisterShopHandler creates a pending shop.
func (h *ShopHandler) RegisterShopHandler(c *gin.Context) {
	var req models.RegisterShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.Shops.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shop": s, "message": "Registration received, awaiting approval"})
}

// LoginHandler exchanges owner credentials for a session token.
func (h *ShopHandler) LoginHandler(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.Shops.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ShopHandler) GetMeHandler(c *gin.Context) {
	s, err := h.Shops.GetByID(c.Request.Context(), middleware.ActorFromContext(c).ShopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *ShopHandler) ListServicesHandler(c *gin.Context) {
	services, err := h.Shops.ListServices(c.Request.Context(), middleware.ActorFromContext(c).ShopID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *ShopHandler) AddServiceHandler(c *gin.Context) {
	var input models.ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := h.Shops.AddService(c.Request.Context(), middleware.ActorFromContext(c).ShopID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *ShopHandler) UpdateServiceHandler(c *gin.Context) {
	var input models.ServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := h.Shops.UpdateService(c.Request.Context(), middleware.ActorFromContext(c).ShopID, c.Param("serviceId"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ShopHandler) RemoveServiceHandler(c *gin.Context) {
	if err := h.Shops.RemoveService(c.Request.Context(), middleware.ActorFromContext(c).ShopID, c.Param("serviceId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ShopHandler) SetBusinessHoursHandler(c *gin.Context) {
	var hours models.BusinessHours
	if err := c.ShouldBindJSON(&hours); err != nil {
		badRequest(c, err)
		return
	}
	saved, err := h.Shops.SetBusinessHours(c.Request.Context(), middleware.ActorFromContext(c).ShopID, hours)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// RegisterDeviceHandler stores the caller's push token.
func (h *ShopHandler) RegisterDeviceHandler(c *gin.Context) {
	var req models.DeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Shops.RegisterDevice(c.Request.Context(), middleware.ActorFromContext(c).ShopID, req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBookingsHandler lists the owner's bookings, optionally by date and status.
func (h *ShopHandler) ListBookingsHandler(c *gin.Context) {
	listBookings(c, h.Bookings, middleware.ActorFromContext(c), "")
}

// UpdateBookingStatusHandler confirms, completes or cancels one of the
// owner's bookings.
func (h *ShopHandler) UpdateBookingStatusHandler(c *gin.Context) {
	updateBookingStatus(c, h.Bookings)
}

func (h *ShopHandler) ListHistoryHandler(c *gin.Context) {
	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, domain.ValidationError{Field: "limit", Msg: "must be a number", Err: err})
			return
		}
		limit = n
	}
	entries, err := h.Shops.ListHistory(c.Request.Context(), middleware.ActorFromContext(c).ShopID, c.Query("type"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func listBookings(c *gin.Context, bookings booking.BookingService, actor models.Actor, shopID string) {
	filter := models.BookingFilter{
		ShopID: shopID,
		Date:   c.Query("date"),
		Status: models.BookingStatus(c.Query("status")),
	}
	list, err := bookings.ListBookings(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list})
}

func updateBookingStatus(c *gin.Context, bookings booking.BookingService) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := bookings.UpdateStatus(c.Request.Context(), middleware.ActorFromContext(c), c.Param("bookingId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
