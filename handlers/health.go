package handlers

import (
	"net/http"

	"barberhive/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports liveness plus the last dependency check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.CheckedAt.IsZero() || status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}

	code := http.StatusOK
	label := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		label = "degraded"
	}
	c.JSON(code, gin.H{"status": label, "message": "Hi, I'm BarberHive", "dependencies": status})
}
