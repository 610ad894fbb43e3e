package interfaces

import (
	"context"

	"tushare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	// UpdateStatus transitions a booking that is still in an active
	// status and returns ErrNotModified when it is not, so a seat is
	// never released twice.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus) error

	// GetActiveByRideAndPassenger finds the passenger's live booking on
	// a ride, ignoring canceled ones.
	GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error)

	ListByPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.Booking, error)
	ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Booking, error)
	ListActiveByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Booking, error)
}
