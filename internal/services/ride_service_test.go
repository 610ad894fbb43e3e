package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tushare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type rideFixture struct {
	rides    *fakeRideRepo
	bookings *fakeBookingRepo
	users    *fakeUserRepo
	service  RideService
}

func newRideFixture(t *testing.T) *rideFixture {
	t.Helper()
	fx := &rideFixture{
		rides:    newFakeRideRepo(),
		bookings: newFakeBookingRepo(),
		users:    newFakeUserRepo(),
	}
	fx.service = NewRideService(fx.rides, fx.bookings, fx.users, fakeTx{}, testLogger(t))
	return fx
}

func (fx *rideFixture) seedUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		FirstName:    "Test",
		LastName:     "User",
		Username:     username,
		Email:        username + "@example.com",
		MobileNumber: "+23480000" + username,
		Role:         role,
		IsVerified:   true,
	}
	if err := fx.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (fx *rideFixture) seedRide(t *testing.T, driverID primitive.ObjectID, seats int, plate string) *models.Ride {
	t.Helper()
	ride := &models.Ride{
		DriverID:          driverID,
		VehicleType:       "car",
		VehicleModel:      "Corolla",
		VehiclePlate:      plate,
		AvailableSeats:    seats,
		DepartureLocation: "Yaba",
		Destination:       "Lekki",
		DepartureTime:     time.Now().Add(2 * time.Hour),
		PricePerSeat:      1500,
		IsAvailable:       true,
	}
	if err := fx.rides.Create(context.Background(), ride); err != nil {
		t.Fatalf("seed ride: %v", err)
	}
	return ride
}

func TestCreateRideRejectsDuplicatePlate(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver1", models.UserRoleDriver)

	req := &CreateRideRequest{
		VehicleType:       "car",
		VehicleModel:      "Corolla",
		VehiclePlate:      "abc-123",
		AvailableSeats:    3,
		DepartureLocation: "Yaba",
		Destination:       "Lekki",
		DepartureTime:     time.Now().Add(time.Hour),
		PricePerSeat:      1000,
	}

	ride, err := fx.service.CreateRide(context.Background(), driver.ID, req)
	if err != nil {
		t.Fatalf("CreateRide: %v", err)
	}
	if ride.VehiclePlate != "ABC-123" {
		t.Errorf("plate not normalized: %q", ride.VehiclePlate)
	}

	if _, err := fx.service.CreateRide(context.Background(), driver.ID, req); !errors.Is(err, ErrVehiclePlateTaken) {
		t.Errorf("duplicate plate: got %v, want ErrVehiclePlateTaken", err)
	}
}

func TestGetAvailableRidesRequiresDestination(t *testing.T) {
	fx := newRideFixture(t)
	if _, err := fx.service.GetAvailableRides(context.Background(), "  "); !errors.Is(err, ErrDestinationRequired) {
		t.Errorf("got %v, want ErrDestinationRequired", err)
	}
}

func TestGetAvailableRidesFiltersOutFullRides(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver2", models.UserRoleDriver)
	fx.seedRide(t, driver.ID, 2, "OPEN-1")
	fx.seedRide(t, driver.ID, 0, "FULL-1")

	details, err := fx.service.GetAvailableRides(context.Background(), "lekki")
	if err != nil {
		t.Fatalf("GetAvailableRides: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("got %d rides, want 1", len(details))
	}
	if details[0].DriverName != driver.FullName() {
		t.Errorf("driver name = %q, want %q", details[0].DriverName, driver.FullName())
	}
}

func TestBookRideValidations(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver3", models.UserRoleDriver)
	passenger := fx.seedUser(t, "rider3", models.UserRolePassenger)
	ride := fx.seedRide(t, driver.ID, 2, "BK-001")

	if _, err := fx.service.BookRide(context.Background(), primitive.NewObjectID(), passenger.ID); !errors.Is(err, ErrRideNotFound) {
		t.Errorf("unknown ride: got %v, want ErrRideNotFound", err)
	}

	if _, err := fx.service.BookRide(context.Background(), ride.ID, driver.ID); !errors.Is(err, ErrCannotBookOwnRide) {
		t.Errorf("own ride: got %v, want ErrCannotBookOwnRide", err)
	}

	booking, err := fx.service.BookRide(context.Background(), ride.ID, passenger.ID)
	if err != nil {
		t.Fatalf("BookRide: %v", err)
	}
	if booking.Status != models.BookingStatusPending {
		t.Errorf("booking status = %q, want pending", booking.Status)
	}
	if booking.TotalPrice != ride.PricePerSeat {
		t.Errorf("total price = %v, want %v", booking.TotalPrice, ride.PricePerSeat)
	}

	// A seat is still free, so the duplicate check is what rejects this.
	if _, err := fx.service.BookRide(context.Background(), ride.ID, passenger.ID); !errors.Is(err, ErrBookingAlreadyExists) {
		t.Errorf("double booking: got %v, want ErrBookingAlreadyExists", err)
	}

	other := fx.seedUser(t, "rider3b", models.UserRolePassenger)
	if _, err := fx.service.BookRide(context.Background(), ride.ID, other.ID); err != nil {
		t.Fatalf("BookRide last seat: %v", err)
	}

	third := fx.seedUser(t, "rider3c", models.UserRolePassenger)
	if _, err := fx.service.BookRide(context.Background(), ride.ID, third.ID); !errors.Is(err, ErrNoSeatsAvailable) {
		t.Errorf("full ride: got %v, want ErrNoSeatsAvailable", err)
	}
}

// Two passengers race for the last seat. Exactly one wins and the seat
// count never goes negative.
func TestBookRideLastSeatRace(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver4", models.UserRoleDriver)
	alice := fx.seedUser(t, "alice4", models.UserRolePassenger)
	bob := fx.seedUser(t, "bob4", models.UserRolePassenger)
	ride := fx.seedRide(t, driver.ID, 1, "RACE-1")

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, passengerID := range []primitive.ObjectID{alice.ID, bob.ID} {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			_, err := fx.service.BookRide(context.Background(), ride.ID, id)
			results <- err
		}(passengerID)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNoSeatsAvailable):
			losses++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("got %d wins and %d losses, want exactly one of each", wins, losses)
	}

	updated, err := fx.rides.GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.AvailableSeats != 0 {
		t.Errorf("available seats = %d, want 0", updated.AvailableSeats)
	}
}

func TestCancelBookingFreesSeatForRebooking(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver5", models.UserRoleDriver)
	passenger := fx.seedUser(t, "rider5", models.UserRolePassenger)
	ride := fx.seedRide(t, driver.ID, 1, "CXL-01")

	booking, err := fx.service.BookRide(context.Background(), ride.ID, passenger.ID)
	if err != nil {
		t.Fatalf("BookRide: %v", err)
	}

	stranger := fx.seedUser(t, "rider5b", models.UserRolePassenger)
	if err := fx.service.CancelBooking(context.Background(), booking.ID, stranger.ID); !errors.Is(err, ErrPermissionRequired) {
		t.Errorf("foreign cancel: got %v, want ErrPermissionRequired", err)
	}

	if err := fx.service.CancelBooking(context.Background(), booking.ID, passenger.ID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	// Canceling again is a no-op and must not release a second seat.
	if err := fx.service.CancelBooking(context.Background(), booking.ID, passenger.ID); err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}

	updated, err := fx.rides.GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.AvailableSeats != 1 {
		t.Fatalf("available seats = %d, want 1", updated.AvailableSeats)
	}

	// The canceled booking no longer blocks a fresh one.
	if _, err := fx.service.BookRide(context.Background(), ride.ID, passenger.ID); err != nil {
		t.Fatalf("rebooking after cancel: %v", err)
	}
}

// gatedBookingRepo holds every GetByID at a barrier so concurrent
// cancels all read the booking before any of them writes it.
type gatedBookingRepo struct {
	*fakeBookingRepo
	barrier *sync.WaitGroup
}

func (r *gatedBookingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := r.fakeBookingRepo.GetByID(ctx, id)
	r.barrier.Done()
	r.barrier.Wait()
	return booking, err
}

// Two concurrent cancels of the same booking can both observe it as
// pending. Only one transition may happen, so the seat comes back
// exactly once and available_seats never exceeds the ride's capacity.
func TestCancelBookingConcurrentDoubleCancel(t *testing.T) {
	rides := newFakeRideRepo()
	bookings := newFakeBookingRepo()
	users := newFakeUserRepo()

	var barrier sync.WaitGroup
	barrier.Add(2)
	gated := &gatedBookingRepo{fakeBookingRepo: bookings, barrier: &barrier}

	fx := &rideFixture{rides: rides, bookings: bookings, users: users}
	fx.service = NewRideService(rides, gated, users, fakeTx{}, testLogger(t))

	driver := fx.seedUser(t, "driver10", models.UserRoleDriver)
	passenger := fx.seedUser(t, "rider10", models.UserRolePassenger)
	ride := fx.seedRide(t, driver.ID, 1, "DBL-10")

	booking, err := fx.service.BookRide(context.Background(), ride.ID, passenger.ID)
	if err != nil {
		t.Fatalf("BookRide: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- fx.service.CancelBooking(context.Background(), booking.ID, passenger.ID)
		}()
	}
	wg.Wait()
	close(results)

	for err := range results {
		if err != nil {
			t.Fatalf("CancelBooking: %v", err)
		}
	}

	updated, err := rides.GetByID(context.Background(), ride.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.AvailableSeats != 1 {
		t.Fatalf("available seats = %d, want 1", updated.AvailableSeats)
	}

	got, err := bookings.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID booking: %v", err)
	}
	if got.Status != models.BookingStatusCanceled {
		t.Errorf("booking status = %q, want canceled", got.Status)
	}
}

func TestCancelBookingUnknownID(t *testing.T) {
	fx := newRideFixture(t)
	passenger := fx.seedUser(t, "rider6", models.UserRolePassenger)
	if err := fx.service.CancelBooking(context.Background(), primitive.NewObjectID(), passenger.ID); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("got %v, want ErrBookingNotFound", err)
	}
}

func TestGetBookedRidesSkipsCanceled(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver7", models.UserRoleDriver)
	passenger := fx.seedUser(t, "rider7", models.UserRolePassenger)
	kept := fx.seedRide(t, driver.ID, 2, "KEEP-7")
	dropped := fx.seedRide(t, driver.ID, 2, "DROP-7")

	if _, err := fx.service.BookRide(context.Background(), kept.ID, passenger.ID); err != nil {
		t.Fatalf("BookRide kept: %v", err)
	}
	canceled, err := fx.service.BookRide(context.Background(), dropped.ID, passenger.ID)
	if err != nil {
		t.Fatalf("BookRide dropped: %v", err)
	}
	if err := fx.service.CancelBooking(context.Background(), canceled.ID, passenger.ID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}

	details, err := fx.service.GetBookedRides(context.Background(), passenger.ID)
	if err != nil {
		t.Fatalf("GetBookedRides: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("got %d booked rides, want 1", len(details))
	}
	if details[0].ID != kept.ID {
		t.Errorf("booked ride = %s, want %s", details[0].ID.Hex(), kept.ID.Hex())
	}
}

func TestCanAccessRideMembership(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver8", models.UserRoleDriver)
	passenger := fx.seedUser(t, "rider8", models.UserRolePassenger)
	stranger := fx.seedUser(t, "lurker8", models.UserRolePassenger)
	ride := fx.seedRide(t, driver.ID, 2, "ACC-08")

	if _, err := fx.service.BookRide(context.Background(), ride.ID, passenger.ID); err != nil {
		t.Fatalf("BookRide: %v", err)
	}

	cases := []struct {
		name   string
		userID primitive.ObjectID
		want   bool
	}{
		{"driver", driver.ID, true},
		{"booked passenger", passenger.ID, true},
		{"stranger", stranger.ID, false},
	}
	for _, tc := range cases {
		ok, err := fx.service.CanAccessRide(context.Background(), tc.userID, ride.ID)
		if err != nil {
			t.Fatalf("%s: CanAccessRide: %v", tc.name, err)
		}
		if ok != tc.want {
			t.Errorf("%s: access = %v, want %v", tc.name, ok, tc.want)
		}
	}

	ok, err := fx.service.CanAccessRide(context.Background(), driver.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("vanished ride: %v", err)
	}
	if ok {
		t.Error("vanished ride grants access")
	}
}

func TestUpdateRideRequiresOwnership(t *testing.T) {
	fx := newRideFixture(t)
	driver := fx.seedUser(t, "driver9", models.UserRoleDriver)
	other := fx.seedUser(t, "driver9b", models.UserRoleDriver)
	ride := fx.seedRide(t, driver.ID, 3, "OWN-09")

	seats := 2
	req := &UpdateRideRequest{AvailableSeats: &seats}

	if _, err := fx.service.UpdateRide(context.Background(), ride.ID, other.ID, req); !errors.Is(err, ErrPermissionRequired) {
		t.Errorf("foreign update: got %v, want ErrPermissionRequired", err)
	}

	updated, err := fx.service.UpdateRide(context.Background(), ride.ID, driver.ID, req)
	if err != nil {
		t.Fatalf("UpdateRide: %v", err)
	}
	if updated.AvailableSeats != 2 {
		t.Errorf("available seats = %d, want 2", updated.AvailableSeats)
	}

	if err := fx.service.DeleteRide(context.Background(), ride.ID, other.ID); !errors.Is(err, ErrPermissionRequired) {
		t.Errorf("foreign delete: got %v, want ErrPermissionRequired", err)
	}
	if err := fx.service.DeleteRide(context.Background(), ride.ID, driver.ID); err != nil {
		t.Fatalf("DeleteRide: %v", err)
	}
	if _, err := fx.service.GetRide(context.Background(), ride.ID); !errors.Is(err, ErrRideNotFound) {
		t.Errorf("deleted ride: got %v, want ErrRideNotFound", err)
	}
}
