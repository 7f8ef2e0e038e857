package users

import (
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes registers the admin account-management routes.
func SetupUserRoutes(rg *gin.RouterGroup, controller Controller) {
	usersGroup := rg.Group("/users")
	usersGroup.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		usersGroup.GET("", controller.ListUsers)
		usersGroup.DELETE("/:id", controller.DeleteUser)
	}
}
