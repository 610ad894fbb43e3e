package interfaces

import (
	"context"

	"tushare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ride, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ListByDestination searches open rides whose destination contains
	// the given text.
	ListByDestination(ctx context.Context, destination string) ([]*models.Ride, error)

	// Seat accounting. DecrementSeats is conditional on a seat still
	// being available and returns ErrNoSeatsLeft when the filter does
	// not match.
	DecrementSeats(ctx context.Context, id primitive.ObjectID) error
	IncrementSeats(ctx context.Context, id primitive.ObjectID) error
}
