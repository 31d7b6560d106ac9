package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"legal-reader/internal/related"
)

// SetupHealthRoutes exposes liveness plus the related-sections queue status
func SetupHealthRoutes(router *gin.Engine, relatedSvc *related.Service) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"related":   relatedSvc.Stats(),
		})
	})
}
