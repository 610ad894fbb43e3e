package routes

import (
	"tushare/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes sets up authentication routes. The public endpoints
// here are allow-listed by the auth gate; everything else requires a
// bearer token.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	auth := r.Group("/auth")
	{
		// Public
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/request-verification-link", authHandler.RequestVerificationLink)
		auth.GET("/verify/:token", authHandler.VerifyEmail)
		auth.POST("/reset-password", authHandler.ResetPassword)
		auth.POST("/confirm-reset-password/:token", authHandler.ConfirmResetPassword)

		// Authenticated
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/refresh-token", authHandler.RefreshToken)
		auth.GET("/user/me", authHandler.Me)
	}
}
