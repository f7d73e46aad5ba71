package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers and the auth middleware the
// routes need.
type HandlerBundle struct {
	Public *PublicHandler
	Shop   *ShopHandler
	Admin  *AdminHandler

	OwnerAuth   gin.HandlerFunc
	AdminAuth   gin.HandlerFunc
	RateLimiter gin.HandlerFunc
}
