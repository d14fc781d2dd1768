package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagelift/models"
)

// Health returns a handler for GET /api/v1/health.
//
// The server holds no long-lived browser state (one session per extract
// request), so there is no pool to degrade on; the probe only proves
// the process is up.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: "0.1.0",
		})
	}
}
