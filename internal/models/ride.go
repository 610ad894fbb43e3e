package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Ride struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DriverID          primitive.ObjectID `json:"driver_id" bson:"driver_id" validate:"required"`
	VehicleType       string             `json:"vehicle_type" bson:"vehicle_type" validate:"required"`
	VehicleModel      string             `json:"vehicle_model" bson:"vehicle_model"`
	VehiclePlate      string             `json:"vehicle_plate" bson:"vehicle_plate" validate:"required"`
	AvailableSeats    int                `json:"available_seats" bson:"available_seats" validate:"required,min=1"`
	DepartureLocation string             `json:"departure_location" bson:"departure_location" validate:"required"`
	Destination       string             `json:"destination" bson:"destination" validate:"required"`
	DepartureTime     time.Time          `json:"departure_time" bson:"departure_time" validate:"required"`
	PricePerSeat      float64            `json:"price_per_seat" bson:"price_per_seat" validate:"required,gt=0"`
	IsAvailable       bool               `json:"is_available" bson:"is_available"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

// RideDetail is a ride joined with its driver projection and, where relevant,
// the roster of passengers who booked it. Repositories build it with explicit
// queries; rides themselves carry foreign keys only.
type RideDetail struct {
	Ride               `bson:",inline"`
	DriverName         string       `json:"driver_name" bson:"driver_name"`
	DriverProfileImage string       `json:"driver_profile_image" bson:"driver_profile_image"`
	Passengers         []*Passenger `json:"passengers,omitempty" bson:"passengers,omitempty"`
}

// Passenger is the roster entry exposed to co-riders of a shared ride.
type Passenger struct {
	Name              string `json:"name" bson:"name"`
	DepartureLocation string `json:"departure_location" bson:"departure_location"`
	ProfileImage      string `json:"profile_image" bson:"profile_image"`
}
