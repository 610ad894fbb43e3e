package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCanceled  BookingStatus = "canceled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ActiveBookingStatuses are the statuses that hold a seat. A canceled booking
// releases its seat and no longer blocks a rebooking.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
}

type Booking struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RideID      primitive.ObjectID `json:"ride_id" bson:"ride_id" validate:"required"`
	PassengerID primitive.ObjectID `json:"passenger_id" bson:"passenger_id" validate:"required"`
	SeatsBooked int                `json:"seats_booked" bson:"seats_booked"`
	TotalPrice  float64            `json:"total_price" bson:"total_price"`
	Status      BookingStatus      `json:"status" bson:"status"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCanceled
}
