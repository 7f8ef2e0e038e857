package activity

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupActivityRoutes registers the admin dashboard feeds.
func SetupActivityRoutes(rg *gin.RouterGroup, controller Controller) {
	feeds := rg.Group("")
	feeds.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		feeds.GET("/notifications", controller.ListNotifications)
		feeds.GET("/logs", controller.ListLogs)
	}
}
