package routes

import (
	"tushare/internal/handlers"
	"tushare/internal/middleware"
	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/pkg/websocket"

	"github.com/gin-gonic/gin"
)

func SetupMessageRoutes(r *gin.RouterGroup, messageHandler *handlers.MessageHandler, wsHandler *websocket.Handler, userRepo interfaces.UserRepository) {
	messages := r.Group("/message")
	messages.Use(middleware.RoleRequired(userRepo, models.UserRolePassenger, models.UserRoleDriver))
	{
		messages.POST("/send", messageHandler.SendMessage)
		messages.GET("/:ride_id/get", messageHandler.GetRideChat)
		messages.PUT("/:message_id/read", messageHandler.MarkRead)
	}

	// Live chat socket. Clients join ride rooms after connecting; room
	// membership is authorized against bookings and ride ownership.
	r.GET("/ws/chat", wsHandler.HandleWebSocket)
}
