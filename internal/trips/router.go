package trips

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTripRoutes registers the public search routes and the operator-only
// catalog mutations.
func SetupTripRoutes(rg *gin.RouterGroup, controller Controller) {
	publicTrips := rg.Group("/trajets")
	{
		publicTrips.GET("", controller.ListTrips)
		publicTrips.GET("/:id", controller.GetTrip)
	}

	adminTrips := rg.Group("/trajets")
	adminTrips.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminTrips.POST("", controller.CreateTrip)
		adminTrips.PUT("/:id", controller.UpdateTrip)
		adminTrips.DELETE("/:id", controller.DeleteTrip)
	}
}
