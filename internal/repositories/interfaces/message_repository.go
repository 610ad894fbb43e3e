package interfaces

import (
	"context"

	"tushare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Message, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	DeleteByRide(ctx context.Context, rideID primitive.ObjectID) error
}
