package routes

import (
	"time"

	"barberhive/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes registers the client booking page endpoints.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/public/shops/:link")
	if hb.RateLimiter != nil {
		api.Use(hb.RateLimiter)
	}
	{
		api.GET("", hb.Public.GetShopHandler)
		api.GET("/slots", hb.Public.GetSlotsHandler)
		api.GET("/availability", hb.Public.CheckAvailabilityHandler)
		api.POST("/bookings", hb.Public.CreateBookingHandler)
	}
}

// RegisterShopRoutes registers signup, login and the owner dashboard.
func RegisterShopRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/shops")
	{
		auth := api.Group("")
		if hb.RateLimiter != nil {
			auth.Use(hb.RateLimiter)
		}
		auth.POST("/register", hb.Shop.RegisterShopHandler)
		auth.POST("/login", hb.Shop.LoginHandler)

		// Protected routes (require an owner session)
		me := api.Group("/me")
		me.Use(hb.OwnerAuth)
		me.GET("", hb.Shop.GetMeHandler)
		me.GET("/services", hb.Shop.ListServicesHandler)
		me.POST("/services", hb.Shop.AddServiceHandler)
		me.PUT("/services/:serviceId", hb.Shop.UpdateServiceHandler)
		me.DELETE("/services/:serviceId", hb.Shop.RemoveServiceHandler)
		me.PUT("/hours", hb.Shop.SetBusinessHoursHandler)
		me.PUT("/device", hb.Shop.RegisterDeviceHandler)
		me.GET("/bookings", hb.Shop.ListBookingsHandler)
		me.PATCH("/bookings/:bookingId/status", hb.Shop.UpdateBookingStatusHandler)
		me.GET("/history", hb.Shop.ListHistoryHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for platform admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(hb.AdminAuth)
		adminGroup.GET("/shops", hb.Admin.ListShopsHandler)
		adminGroup.PATCH("/shops/:shopId/approve", hb.Admin.ApproveShopHandler)
		adminGroup.PATCH("/shops/:shopId/reject", hb.Admin.RejectShopHandler)
		adminGroup.PATCH("/shops/:shopId/suspend", hb.Admin.SuspendShopHandler)
		adminGroup.PATCH("/shops/:shopId/reactivate", hb.Admin.ReactivateShopHandler)
		adminGroup.GET("/shops/:shopId/bookings", hb.Admin.ListShopBookingsHandler)
		adminGroup.PATCH("/bookings/:bookingId/status", hb.Admin.UpdateBookingStatusHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterPublicRoutes(r, hb)
	RegisterShopRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
