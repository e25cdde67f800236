// internal/app/router.go
package app

import (
	authHandler "portal-auth-service/internal/handlers/auth"
	customerHandler "portal-auth-service/internal/handlers/customer"
	"portal-auth-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	CustomerHandler *customerHandler.CustomerHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/send-otp", h.AuthHandler.SendOTP)
		authPublic.POST("/verify-otp", h.AuthHandler.VerifyOTP)
		authPublic.POST("/refresh", h.AuthHandler.Refresh)
	}

	// Logout is permissive: an expired or already-revoked token must still
	// be able to sign out, so it sits behind OptionalAuth.
	api.POST("/auth/logout", h.AuthMiddleware.OptionalAuth(), h.AuthHandler.Logout)

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
		authProtected.POST("/cleanup-tokens", h.AuthHandler.CleanupTokens)
		authProtected.GET("/profile", h.AuthHandler.GetProfile)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth())
	{
		customers.GET("/me", h.CustomerHandler.GetMe)
		customers.PATCH("/me", h.CustomerHandler.PatchMe)
	}
}
