package main

import (
	"github.com/gin-gonic/gin"
	"github.com/vidstream/backend/internal/middleware"
	"github.com/vidstream/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(nil))

	// Credential endpoints get a per-IP limiter against password guessing.
	credentialLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", svc.healthHandler.Check)

	api := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", credentialLimiter.Middleware(), svc.authHandler.Register)
			auth.POST("/login", credentialLimiter.Middleware(), svc.authHandler.Login)
			auth.POST("/refresh", svc.authHandler.Refresh)
		}

		// Protected routes; the guard attaches the verified identity and
		// downstream handlers trust it.
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(svc.sessions, svc.transport))
		{
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.GET("/auth/me", svc.authHandler.Me)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)
		}
	}
}
