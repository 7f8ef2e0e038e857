package reports

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReportRoutes registers the admin reporting endpoints.
func SetupReportRoutes(rg *gin.RouterGroup, controller Controller) {
	reports := rg.Group("/reports")
	reports.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		reports.GET("/summary", controller.Summary)
	}
}
