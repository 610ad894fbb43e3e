package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger(t interface{ Fatalf(string, ...interface{}) }) *logger.Logger {
	log, err := logger.NewLogger(&logger.Config{Level: "error", Format: "text", Output: "stdout"})
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

// fakeTx runs the callback directly. The fake repositories apply each
// operation under their own locks, which is enough to exercise the
// booking engine's conditional seat decrement.
type fakeTx struct{}

func (fakeTx) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string][]byte)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return interfaces.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.items, key)
	}
	return nil
}

func (c *fakeCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok, nil
}

func (c *fakeCache) SetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	c.mu.Lock()
	_, exists := c.items[key]
	c.mu.Unlock()
	if exists {
		return false, nil
	}
	return true, c.Set(ctx, key, value, exp)
}

type fakeEmailService struct {
	mu            sync.Mutex
	verifications []string
	resets        []string
}

func (f *fakeEmailService) SendVerificationEmail(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifications = append(f.verifications, to)
	return nil
}

func (f *fakeEmailService) SendPasswordResetEmail(_ context.Context, to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, to)
	return nil
}

func (f *fakeEmailService) Close() {}

func (f *fakeEmailService) verificationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verifications)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username || existing.MobileNumber == user.MobileNumber {
			return interfaces.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) GetByMobileNumber(_ context.Context, mobileNumber string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.MobileNumber == mobileNumber })
}

func (r *fakeUserRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "first_name":
			user.FirstName = value.(string)
		case "last_name":
			user.LastName = value.(string)
		case "gender":
			user.Gender = value.(string)
		case "bio":
			user.Bio = value.(string)
		case "mobile_number":
			user.MobileNumber = value.(string)
		case "password":
			user.Password = value.(string)
		case "is_verified":
			user.IsVerified = value.(bool)
		case "profile_image":
			user.ProfileImage = value.(string)
		case "facebook_handle":
			user.FacebookHandle = value.(string)
		case "instagram_handle":
			user.InstagramHandle = value.(string)
		case "twitter_handle":
			user.TwitterHandle = value.(string)
		case "work_address":
			user.WorkAddress = value.(string)
		case "home_address":
			user.HomeAddress = value.(string)
		case "last_login":
			t := value.(time.Time)
			user.LastLogin = &t
		}
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	return r.Update(ctx, id, map[string]interface{}{"last_login": time.Now()})
}

func (r *fakeUserRepo) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_verified": verified})
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

type fakeRideRepo struct {
	mu    sync.Mutex
	rides map[primitive.ObjectID]*models.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[primitive.ObjectID]*models.Ride)}
}

func (r *fakeRideRepo) Create(_ context.Context, ride *models.Ride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rides {
		if existing.VehiclePlate == ride.VehiclePlate {
			return interfaces.ErrDuplicateKey
		}
	}
	ride.ID = primitive.NewObjectID()
	ride.CreatedAt = time.Now()
	ride.UpdatedAt = time.Now()
	clone := *ride
	r.rides[ride.ID] = &clone
	return nil
}

func (r *fakeRideRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *ride
	return &clone, nil
}

func (r *fakeRideRepo) Update(_ context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "available_seats":
			ride.AvailableSeats = value.(int)
		case "destination":
			ride.Destination = value.(string)
		case "departure_location":
			ride.DepartureLocation = value.(string)
		case "price_per_seat":
			ride.PricePerSeat = value.(float64)
		case "is_available":
			ride.IsAvailable = value.(bool)
		case "vehicle_model":
			ride.VehicleModel = value.(string)
		case "departure_time":
			ride.DepartureTime = value.(time.Time)
		}
	}
	ride.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRideRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rides[id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.rides, id)
	return nil
}

func (r *fakeRideRepo) ListByDestination(_ context.Context, destination string) ([]*models.Ride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Ride
	for _, ride := range r.rides {
		if ride.AvailableSeats > 0 && ride.IsAvailable && containsFold(ride.Destination, destination) {
			clone := *ride
			out = append(out, &clone)
		}
	}
	return out, nil
}

// DecrementSeats mirrors the conditional update: it only succeeds while
// a seat remains, under the repository lock.
func (r *fakeRideRepo) DecrementSeats(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if ride.AvailableSeats <= 0 {
		return interfaces.ErrNoSeatsLeft
	}
	ride.AvailableSeats--
	return nil
}

func (r *fakeRideRepo) IncrementSeats(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ride, ok := r.rides[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	ride.AvailableSeats++
	return nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[primitive.ObjectID]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[primitive.ObjectID]*models.Booking)}
}

// Create enforces the partial unique index: at most one non-canceled
// booking per (ride, passenger).
func (r *fakeBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.RideID == booking.RideID &&
			existing.PassengerID == booking.PassengerID &&
			existing.Status != models.BookingStatusCanceled {
			return interfaces.ErrDuplicateKey
		}
	}
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *booking
	return &clone, nil
}

// UpdateStatus only transitions bookings still in an active status,
// mirroring the guarded mongo update.
func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	if !booking.IsActive() {
		return interfaces.ErrNotModified
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return nil
}

func (r *fakeBookingRepo) GetActiveByRideAndPassenger(_ context.Context, rideID, passengerID primitive.ObjectID) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, booking := range r.bookings {
		if booking.RideID == rideID && booking.PassengerID == passengerID && booking.Status != models.BookingStatusCanceled {
			clone := *booking
			return &clone, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeBookingRepo) ListByPassenger(_ context.Context, passengerID primitive.ObjectID) ([]*models.Booking, error) {
	return r.list(func(b *models.Booking) bool { return b.PassengerID == passengerID })
}

func (r *fakeBookingRepo) ListByRide(_ context.Context, rideID primitive.ObjectID) ([]*models.Booking, error) {
	return r.list(func(b *models.Booking) bool { return b.RideID == rideID })
}

func (r *fakeBookingRepo) ListActiveByRide(_ context.Context, rideID primitive.ObjectID) ([]*models.Booking, error) {
	return r.list(func(b *models.Booking) bool {
		return b.RideID == rideID && b.Status != models.BookingStatusCanceled
	})
}

func (r *fakeBookingRepo) list(match func(*models.Booking) bool) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, booking := range r.bookings {
		if match(booking) {
			clone := *booking
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[primitive.ObjectID]*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[primitive.ObjectID]*models.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = primitive.NewObjectID()
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	clone := *message
	r.messages[message.ID] = &clone
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	clone := *message
	return &clone, nil
}

func (r *fakeMessageRepo) ListByRide(_ context.Context, rideID primitive.ObjectID) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, message := range r.messages {
		if message.RideID == rideID {
			clone := *message
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok {
		return interfaces.ErrNotFound
	}
	message.IsRead = true
	return nil
}

func (r *fakeMessageRepo) DeleteByRide(_ context.Context, rideID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, message := range r.messages {
		if message.RideID == rideID {
			delete(r.messages, id)
		}
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	h := []rune(haystack)
	n := []rune(needle)
	if len(n) == 0 {
		return true
	}
	lower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + 32
		}
		return r
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
