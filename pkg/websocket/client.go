package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly in production
	},
}

// RideAuthorizer decides whether a user may join a ride's chat room.
// Drivers of the ride and passengers with a live booking qualify.
type RideAuthorizer interface {
	CanAccessRide(ctx context.Context, userID, rideID primitive.ObjectID) (bool, error)
}

type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	authorizer RideAuthorizer
	UserID     primitive.ObjectID
	rooms      map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, authorizer RideAuthorizer, userID primitive.ObjectID) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 256),
		authorizer: authorizer,
		UserID:     userID,
		rooms:      make(map[string]bool),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain queued messages into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling client message: %v", err)
		return
	}

	msg.UserID = c.UserID
	msg.Timestamp = getCurrentTimestamp()

	switch msg.Type {
	case "join_ride":
		rideID, ok := c.rideIDFromData(msg.Data)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		allowed, err := c.authorizer.CanAccessRide(ctx, c.UserID, rideID)
		cancel()
		if err != nil || !allowed {
			c.sendError("not a member of this ride")
			return
		}

		c.hub.JoinRide(c, rideID)

	case "leave_ride":
		if rideID, ok := c.rideIDFromData(msg.Data); ok {
			c.hub.LeaveRoom(c, RideRoom(rideID))
		}

	default:
		// Chat messages go through the REST endpoint so they are
		// persisted before fan-out. Ignore everything else.
	}
}

func (c *Client) rideIDFromData(data map[string]interface{}) (primitive.ObjectID, bool) {
	raw, ok := data["ride_id"].(string)
	if !ok {
		return primitive.NilObjectID, false
	}

	rideID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, false
	}

	return rideID, true
}

func (c *Client) sendError(reason string) {
	msg := Message{
		Type:      "error",
		UserID:    c.UserID,
		Timestamp: getCurrentTimestamp(),
		Data: map[string]interface{}{
			"message": reason,
		},
	}

	data, _ := json.Marshal(msg)
	select {
	case c.send <- data:
	default:
	}
}
