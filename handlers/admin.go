package handlers

import (
	"context"
	"net/http"

	"barberhive/middleware"
	"barberhive/models"
	"barberhive/services/booking"
	"barberhive/services/shop"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates platform admin operations on shops and bookings.
type AdminHandler struct {
	Shops    shop.ShopService
	Bookings booking.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(shops shop.ShopService, bookings booking.BookingService) *AdminHandler {
	return &AdminHandler{Shops: shops, Bookings: bookings}
}

// ListShopsHandler returns shops, optionally filtered by ?status=.
func (ah *AdminHandler) ListShopsHandler(c *gin.Context) {
	shops, err := ah.Shops.ListByStatus(c.Request.Context(), models.ShopStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

func (ah *AdminHandler) shopAction(c *gin.Context, action string, fn func(ctx context.Context, id string) (*models.Shop, error)) {
	id := c.Param("shopId")
	s, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("admin shop action", zap.String("action", action), zap.String("shopID", id))
	c.JSON(http.StatusOK, s)
}

func (ah *AdminHandler) ApproveShopHandler(c *gin.Context) {
	ah.shopAction(c, "approve", ah.Shops.Approve)
}

func (ah *AdminHandler) RejectShopHandler(c *gin.Context) {
	var req models.RejectShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ah.shopAction(c, "reject", func(ctx context.Context, id string) (*models.Shop, error) {
		return ah.Shops.Reject(ctx, id, req.Reason)
	})
}

func (ah *AdminHandler) SuspendShopHandler(c *gin.Context) {
	ah.shopAction(c, "suspend", ah.Shops.Suspend)
}

func (ah *AdminHandler) ReactivateShopHandler(c *gin.Context) {
	ah.shopAction(c, "reactivate", ah.Shops.Reactivate)
}

// ListShopBookingsHandler lists any shop's bookings.
func (ah *AdminHandler) ListShopBookingsHandler(c *gin.Context) {
	listBookings(c, ah.Bookings, middleware.ActorFromContext(c), c.Param("shopId"))
}

func (ah *AdminHandler) UpdateBookingStatusHandler(c *gin.Context) {
	updateBookingStatus(c, ah.Bookings)
}
