package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/internal/utils"
	"tushare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionRunner executes fn atomically. The mongo implementation
// runs it inside a session transaction; test fakes just call fn.
type TransactionRunner interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type RideService interface {
	CreateRide(ctx context.Context, driverID primitive.ObjectID, req *CreateRideRequest) (*models.Ride, error)
	GetRide(ctx context.Context, id primitive.ObjectID) (*models.RideDetail, error)
	GetAvailableRides(ctx context.Context, destination string) ([]*models.RideDetail, error)
	UpdateRide(ctx context.Context, rideID, driverID primitive.ObjectID, req *UpdateRideRequest) (*models.Ride, error)
	DeleteRide(ctx context.Context, rideID, driverID primitive.ObjectID) error

	BookRide(ctx context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, passengerID primitive.ObjectID) error
	GetBookedRides(ctx context.Context, passengerID primitive.ObjectID) ([]*models.RideDetail, error)

	CanAccessRide(ctx context.Context, userID, rideID primitive.ObjectID) (bool, error)
}

type CreateRideRequest struct {
	VehicleType       string    `json:"vehicle_type" validate:"required,oneof=car van minibus"`
	VehicleModel      string    `json:"vehicle_model" validate:"required,max=50"`
	VehiclePlate      string    `json:"vehicle_plate" validate:"required,min=2,max=20"`
	AvailableSeats    int       `json:"available_seats" validate:"required,min=1,max=8"`
	DepartureLocation string    `json:"departure_location" validate:"required,max=200"`
	Destination       string    `json:"destination" validate:"required,max=200"`
	DepartureTime     time.Time `json:"departure_time" validate:"required"`
	PricePerSeat      float64   `json:"price_per_seat" validate:"required,gt=0"`
}

type UpdateRideRequest struct {
	VehicleModel      *string    `json:"vehicle_model" validate:"omitempty,max=50"`
	AvailableSeats    *int       `json:"available_seats" validate:"omitempty,min=0,max=8"`
	DepartureLocation *string    `json:"departure_location" validate:"omitempty,max=200"`
	Destination       *string    `json:"destination" validate:"omitempty,max=200"`
	DepartureTime     *time.Time `json:"departure_time"`
	PricePerSeat      *float64   `json:"price_per_seat" validate:"omitempty,gt=0"`
	IsAvailable       *bool      `json:"is_available"`
}

type rideService struct {
	rideRepo    interfaces.RideRepository
	bookingRepo interfaces.BookingRepository
	userRepo    interfaces.UserRepository
	tx          TransactionRunner
	logger      *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	bookingRepo interfaces.BookingRepository,
	userRepo interfaces.UserRepository,
	tx TransactionRunner,
	log *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		tx:          tx,
		logger:      log,
	}
}

func (s *rideService) CreateRide(ctx context.Context, driverID primitive.ObjectID, req *CreateRideRequest) (*models.Ride, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("ride validation failed: %w", err)
	}

	ride := &models.Ride{
		DriverID:          driverID,
		VehicleType:       req.VehicleType,
		VehicleModel:      req.VehicleModel,
		VehiclePlate:      strings.ToUpper(strings.TrimSpace(req.VehiclePlate)),
		AvailableSeats:    req.AvailableSeats,
		DepartureLocation: req.DepartureLocation,
		Destination:       req.Destination,
		DepartureTime:     req.DepartureTime,
		PricePerSeat:      req.PricePerSeat,
		IsAvailable:       true,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, ErrVehiclePlateTaken
		}
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	s.logger.WithRideID(ride.ID).WithUserID(driverID).Info("Ride created")

	return ride, nil
}

func (s *rideService) GetRide(ctx context.Context, id primitive.ObjectID) (*models.RideDetail, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	return s.buildRideDetail(ctx, ride, true)
}

// GetAvailableRides searches open rides by destination. The destination
// filter is mandatory; searching without one is reported as not found,
// mirroring the behavior clients already depend on.
func (s *rideService) GetAvailableRides(ctx context.Context, destination string) ([]*models.RideDetail, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, ErrDestinationRequired
	}

	rides, err := s.rideRepo.ListByDestination(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to search rides: %w", err)
	}

	details := make([]*models.RideDetail, 0, len(rides))
	for _, ride := range rides {
		detail, err := s.buildRideDetail(ctx, ride, false)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	return details, nil
}

func (s *rideService) UpdateRide(ctx context.Context, rideID, driverID primitive.ObjectID, req *UpdateRideRequest) (*models.Ride, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("ride validation failed: %w", err)
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.DriverID != driverID {
		return nil, ErrPermissionRequired
	}

	updates := make(map[string]interface{})
	if req.VehicleModel != nil {
		updates["vehicle_model"] = *req.VehicleModel
	}
	if req.AvailableSeats != nil {
		updates["available_seats"] = *req.AvailableSeats
	}
	if req.DepartureLocation != nil {
		updates["departure_location"] = *req.DepartureLocation
	}
	if req.Destination != nil {
		updates["destination"] = *req.Destination
	}
	if req.DepartureTime != nil {
		updates["departure_time"] = *req.DepartureTime
	}
	if req.PricePerSeat != nil {
		updates["price_per_seat"] = *req.PricePerSeat
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if len(updates) == 0 {
		return ride, nil
	}

	if err := s.rideRepo.Update(ctx, rideID, updates); err != nil {
		return nil, fmt.Errorf("failed to update ride: %w", err)
	}

	updated, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload ride: %w", err)
	}

	return updated, nil
}

func (s *rideService) DeleteRide(ctx context.Context, rideID, driverID primitive.ObjectID) error {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrRideNotFound
		}
		return fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.DriverID != driverID {
		return ErrPermissionRequired
	}

	if err := s.rideRepo.Delete(ctx, rideID); err != nil {
		return fmt.Errorf("failed to delete ride: %w", err)
	}

	s.logger.WithRideID(rideID).WithUserID(driverID).Info("Ride deleted")

	return nil
}

// BookRide reserves one seat. Preconditions run in a fixed order so the
// caller always gets the most specific error, then the seat decrement
// and booking insert commit atomically. The conditional decrement loses
// gracefully when two passengers race for the last seat, and the partial
// unique index catches a concurrent duplicate booking.
func (s *rideService) BookRide(ctx context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.DriverID == passengerID {
		return nil, ErrCannotBookOwnRide
	}

	if ride.AvailableSeats <= 0 {
		return nil, ErrNoSeatsAvailable
	}

	if _, err := s.bookingRepo.GetActiveByRideAndPassenger(ctx, rideID, passengerID); err == nil {
		return nil, ErrBookingAlreadyExists
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing booking: %w", err)
	}

	booking := &models.Booking{
		RideID:      rideID,
		PassengerID: passengerID,
		SeatsBooked: 1,
		TotalPrice:  ride.PricePerSeat,
		Status:      models.BookingStatusPending,
	}

	err = s.tx.RunTransaction(ctx, func(txCtx context.Context) error {
		if err := s.rideRepo.DecrementSeats(txCtx, rideID); err != nil {
			return err
		}
		return s.bookingRepo.Create(txCtx, booking)
	})
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNoSeatsLeft):
			return nil, ErrNoSeatsAvailable
		case errors.Is(err, interfaces.ErrDuplicateKey):
			return nil, ErrCannotCompleteBooking
		default:
			return nil, fmt.Errorf("%w: %v", ErrCannotCompleteBooking, err)
		}
	}

	s.logger.WithRideID(rideID).WithUserID(passengerID).Info("Ride booked")

	return booking, nil
}

// CancelBooking releases the seat held by a live booking. Canceling an
// already-canceled booking is a no-op.
func (s *rideService) CancelBooking(ctx context.Context, bookingID, passengerID primitive.ObjectID) error {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.PassengerID != passengerID {
		return ErrPermissionRequired
	}

	if booking.Status == models.BookingStatusCanceled {
		return nil
	}

	err = s.tx.RunTransaction(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.UpdateStatus(txCtx, bookingID, models.BookingStatusCanceled); err != nil {
			return err
		}
		return s.rideRepo.IncrementSeats(txCtx, booking.RideID)
	})
	if errors.Is(err, interfaces.ErrNotModified) {
		// A concurrent cancel already took the booking out of its
		// active status and released the seat.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.logger.WithRideID(booking.RideID).WithUserID(passengerID).Info("Booking canceled")

	return nil
}

func (s *rideService) GetBookedRides(ctx context.Context, passengerID primitive.ObjectID) ([]*models.RideDetail, error) {
	bookings, err := s.bookingRepo.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	details := make([]*models.RideDetail, 0, len(bookings))
	for _, booking := range bookings {
		if !booking.IsActive() {
			continue
		}

		ride, err := s.rideRepo.GetByID(ctx, booking.RideID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get booked ride: %w", err)
		}

		detail, err := s.buildRideDetail(ctx, ride, true)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}

	return details, nil
}

// CanAccessRide reports ride chat membership: the driver or a passenger
// holding a live booking.
func (s *rideService) CanAccessRide(ctx context.Context, userID, rideID primitive.ObjectID) (bool, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get ride: %w", err)
	}

	if ride.DriverID == userID {
		return true, nil
	}

	_, err = s.bookingRepo.GetActiveByRideAndPassenger(ctx, rideID, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check booking: %w", err)
	}

	return true, nil
}

func (s *rideService) buildRideDetail(ctx context.Context, ride *models.Ride, withPassengers bool) (*models.RideDetail, error) {
	detail := &models.RideDetail{Ride: *ride}

	driver, err := s.userRepo.GetByID(ctx, ride.DriverID)
	if err == nil {
		detail.DriverName = driver.FullName()
		detail.DriverProfileImage = driver.ProfileImage
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	if !withPassengers {
		return detail, nil
	}

	bookings, err := s.bookingRepo.ListActiveByRide(ctx, ride.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ride bookings: %w", err)
	}

	passengers := make([]*models.Passenger, 0, len(bookings))
	for _, booking := range bookings {
		passenger, err := s.userRepo.GetByID(ctx, booking.PassengerID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get passenger: %w", err)
		}

		passengers = append(passengers, &models.Passenger{
			Name:              passenger.FullName(),
			DepartureLocation: ride.DepartureLocation,
			ProfileImage:      passenger.ProfileImage,
		})
	}
	detail.Passengers = passengers

	return detail, nil
}
