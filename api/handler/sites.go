package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagelift/extractor"
	"github.com/use-agent/pagelift/models"
)

// Sites returns a handler for GET /api/v1/sites listing the registered
// page extractors.
func Sites() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SitesResponse{Sites: extractor.Names()})
	}
}
