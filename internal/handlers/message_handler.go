package handlers

import (
	"tushare/internal/middleware"
	"tushare/internal/services"
	"tushare/internal/utils"
	"tushare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageHandler struct {
	messageService services.MessageService
	logger         *logger.Logger
}

func NewMessageHandler(messageService services.MessageService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		logger:         log,
	}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	senderID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid message payload")
		return
	}

	message, err := h.messageService.SendMessage(c.Request.Context(), senderID, &req)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "message sent", message)
}

// GetRideChat handles GET /message/:ride_id/get, returning the ride
// roster and the full ordered message history.
func (h *MessageHandler) GetRideChat(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	rideID, err := primitive.ObjectIDFromHex(c.Param("ride_id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid ride id")
		return
	}

	chat, err := h.messageService.GetRideChat(c.Request.Context(), rideID, userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "", chat)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		utils.UnauthorizedResponse(c, "not authenticated")
		return
	}

	messageID, err := primitive.ObjectIDFromHex(c.Param("message_id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid message id")
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), messageID, userID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "message marked as read", nil)
}
