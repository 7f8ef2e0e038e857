// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"buslane/internal/activity"
	"buslane/internal/auth"
	"buslane/internal/notifier"
	"buslane/internal/reports"
	"buslane/internal/reservations"
	"buslane/internal/seatmap"
	"buslane/internal/shared/config"
	"buslane/internal/shared/database"
	"buslane/internal/trips"
	"buslane/internal/users"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	events    *notifier.Service
	seatStore seatmap.Store

	// Cross-feature services, kept for dependency injection.
	activityService    activity.Service
	userService        users.Service
	tripService        trips.Service
	reservationService reservations.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, events *notifier.Service, seatStore seatmap.Store) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		events:    events,
		seatStore: seatStore,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Activity first: later features feed the dashboard through it.
		r.setupActivityRoutes(api)
		r.setupUserRoutes(api)
		r.setupAuthRoutes(api)

		// Trips and reservations inject into each other, so both are built
		// before their routes are registered.
		r.setupBookingRoutes(api)

		r.setupReportRoutes(api)

		notifier.SetupWebSocketRoutes(api, r.events.Hub())
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "buslane-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "buslane-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupActivityRoutes configures the dashboard feed routes
func (r *Router) setupActivityRoutes(rg *gin.RouterGroup) {
	activityRepo := activity.NewRepository(r.db.GetPostgreSQL())
	r.activityService = activity.NewService(activityRepo, r.events)
	activityController := activity.NewController(r.activityService)

	activity.SetupActivityRoutes(rg, activityController)
}

// setupUserRoutes configures user administration routes
func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	userRepo := users.NewRepository(r.db.GetPostgreSQL())
	r.userService = users.NewService(userRepo)
	r.userService.SetActivitySink(&userActivity{activity: r.activityService})
	userController := users.NewController(r.userService)

	users.SetupUserRoutes(rg, userController)
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authService.SetEventSink(&authEvents{events: r.events, activity: r.activityService})
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupBookingRoutes configures the trip catalog and reservation routes.
// The two services reference each other (trip deletion cancels reservations;
// booking reads trip data), so both are constructed before wiring.
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	tripRepo := trips.NewRepository(r.db.GetPostgreSQL())
	r.tripService = trips.NewService(tripRepo)

	reservationRepo := reservations.NewRepository(r.db.GetPostgreSQL())
	r.reservationService = reservations.NewService(
		reservationRepo, r.seatStore, r.tripService, r.config.Booking)

	r.tripService.SetReservationGuard(r.reservationService)
	r.reservationService.SetNameResolver(r.userService)
	r.reservationService.SetEventSink(&reservationEvents{
		events:   r.events,
		activity: r.activityService,
	})

	tripController := trips.NewController(r.tripService)
	trips.SetupTripRoutes(rg, tripController)

	reservationController := reservations.NewController(r.reservationService)
	reservations.SetupReservationRoutes(rg, reservationController)
}

// setupReportRoutes configures analytics routes
func (r *Router) setupReportRoutes(rg *gin.RouterGroup) {
	reportRepo := reports.NewRepository(r.db.GetPostgreSQL())
	reportService := reports.NewService(reportRepo)
	reportController := reports.NewController(reportService)

	reports.SetupReportRoutes(rg, reportController)
}
