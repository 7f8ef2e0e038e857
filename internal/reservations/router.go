package reservations

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes registers the booking lifecycle routes and the
// public seat-map view. Paths keep the French names the original clients use.
func SetupReservationRoutes(rg *gin.RouterGroup, controller Controller) {
	seats := rg.Group("/trajets")
	{
		seats.GET("/:id/seats", controller.SeatMap)
	}

	// The booking page polls taken seats before the traveller signs in.
	rg.GET("/reservations/trajet/:tripId", controller.ListTakenSeats)

	seatAdmin := rg.Group("/trajets")
	seatAdmin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		seatAdmin.POST("/:id/seats/rebuild", controller.RebuildSeatMap)
	}

	reservations := rg.Group("/reservations")
	reservations.Use(middleware.JWTAuth())
	{
		reservations.POST("", controller.Book)
		reservations.GET("", controller.ListMine)
		reservations.GET("/:id", controller.GetReservation)
		reservations.PUT("/:id/cancel", controller.Cancel)
	}

	admin := rg.Group("/reservations")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/all", controller.ListAll)
		admin.GET("/admin/reservations", controller.ListAll)
		admin.PUT("/:id/validate", controller.ValidateBoarding)
		admin.DELETE("/:id", controller.Purge)
	}
}
