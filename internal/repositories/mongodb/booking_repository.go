package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection(utils.CollectionBookings),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return interfaces.ErrDuplicateKey
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// UpdateStatus transitions a booking that is still in an active status.
// The status guard in the filter means two concurrent cancels cannot
// both match, which is what seat accounting relies on.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":    id,
			"status": bson.M{"$in": models.ActiveBookingStatuses},
		},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotModified
	}

	return nil
}

func (r *bookingRepository) GetActiveByRideAndPassenger(ctx context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{
		"ride_id":      rideID,
		"passenger_id": passengerID,
		"status":       bson.M{"$in": models.ActiveBookingStatuses},
	}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) ListByPassenger(ctx context.Context, passengerID primitive.ObjectID) ([]*models.Booking, error) {
	return r.list(ctx, bson.M{"passenger_id": passengerID})
}

func (r *bookingRepository) ListByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Booking, error) {
	return r.list(ctx, bson.M{"ride_id": rideID})
}

func (r *bookingRepository) ListActiveByRide(ctx context.Context, rideID primitive.ObjectID) ([]*models.Booking, error) {
	return r.list(ctx, bson.M{
		"ride_id": rideID,
		"status":  bson.M{"$in": models.ActiveBookingStatuses},
	})
}

func (r *bookingRepository) list(ctx context.Context, filter bson.M) ([]*models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}
