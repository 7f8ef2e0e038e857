package auth

import (
	"buslane/internal/shared/config"
	"buslane/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// Router handles auth-related routes.
type Router struct {
	controller Controller
	config     *config.Config
}

func NewRouter(controller Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers all auth routes.
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", authRouter.controller.Register)
		authGroup.POST("/login", authRouter.controller.Login)
		authGroup.POST("/refresh", authRouter.controller.RefreshToken)

		protected := authGroup.Group("")
		protected.Use(middleware.JWTAuthWithConfig(authRouter.config))
		{
			protected.PUT("/change-password", authRouter.controller.ChangePassword)
			protected.GET("/me", authRouter.controller.GetMe)
		}
	}
}
