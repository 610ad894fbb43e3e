package routes

import (
	"tushare/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler) {
	profile := r.Group("/profile")
	{
		profile.GET("", userHandler.GetProfile)
		profile.PUT("/:id/edit", userHandler.UpdateProfile)
		profile.DELETE("", userHandler.DeleteAccount)
	}
}
