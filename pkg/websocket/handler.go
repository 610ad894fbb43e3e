package websocket

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	hub        *Hub
	authorizer RideAuthorizer
}

func NewHandler(authorizer RideAuthorizer) *Handler {
	hub := NewHub()
	go hub.Run()

	return &Handler{
		hub:        hub,
		authorizer: authorizer,
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(h.hub, conn, h.authorizer, userObjectID)
	h.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendRideMessage fans a persisted chat message out to connected members.
func (h *Handler) SendRideMessage(rideID primitive.ObjectID, senderID primitive.ObjectID, data map[string]interface{}) {
	message := Message{
		Type:      "chat_message",
		UserID:    senderID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}

	h.hub.SendRideMessage(rideID, message)
}

func (h *Handler) SendUserNotification(userID primitive.ObjectID, notificationType string, data map[string]interface{}) {
	message := Message{
		Type:      notificationType,
		UserID:    userID,
		Timestamp: getCurrentTimestamp(),
		Data:      data,
	}

	h.hub.SendToUser(userID, message)
}

func (h *Handler) GetHub() *Hub {
	return h.hub
}
