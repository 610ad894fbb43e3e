package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one chat entry in a ride's group conversation. ReceiverID is nil
// for a group broadcast; the ride defines the chat room.
type Message struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	SenderID   primitive.ObjectID  `json:"sender_id" bson:"sender_id" validate:"required"`
	ReceiverID *primitive.ObjectID `json:"receiver_id" bson:"receiver_id"`
	RideID     primitive.ObjectID  `json:"ride_id" bson:"ride_id" validate:"required"`
	Content    string              `json:"content" bson:"content" validate:"required,max=1000"`
	Timestamp  time.Time           `json:"timestamp" bson:"timestamp"`
	IsRead     bool                `json:"is_read" bson:"is_read"`
}

// MessageDetail joins a message with its sender projection for chat reads.
type MessageDetail struct {
	Message `bson:",inline"`
	Sender  *PublicProfile `json:"sender" bson:"sender"`
}

// GroupChat is the full conversation view for one ride: the driver, the
// roster of members, and the ordered message history.
type GroupChat struct {
	RideID             primitive.ObjectID `json:"ride_id"`
	DriverName         string             `json:"driver_name"`
	DriverProfileImage string             `json:"driver_profile_image"`
	Members            []*PublicProfile   `json:"group_members"`
	Messages           []*MessageDetail   `json:"messages"`
}
