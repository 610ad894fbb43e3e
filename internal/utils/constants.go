package utils

import "time"

// Application Constants
const (
	AppName    = "TuShare"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 1 * time.Hour
	JWTRefreshTokenTTL = 2 * 24 * time.Hour
	PasswordMinLength  = 8
	PasswordMaxLength  = 128

	// Email verification links expire after this window.
	URLTokenMaxAge = 30 * time.Minute

	// Ride Constants
	MaxSeatsPerRide = 8
	MinPricePerSeat = 0.0

	// Chat
	MaxMessageLength = 1000

	// File Upload
	MaxImageSize          = 5 * 1024 * 1024 // 5MB
	ProfileImageDimension = 512             // px, square thumbnails
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "user not found"
	ErrUserExists         = "user already exists"
	ErrInvalidToken       = "invalid token"
	ErrTokenExpired       = "token expired"
	ErrInvalidInput       = "invalid input"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrValidationFailed   = "validation failed"
	ErrFileUploadFailed   = "file upload failed"
)

// Cache Keys
const (
	CacheKeyBlacklistPrefix = "blacklist:"
	CacheKeyUserPrefix      = "user:"
	CacheKeyRidePrefix      = "ride:"
)

// Collections
const (
	CollectionUsers    = "users"
	CollectionRides    = "rides"
	CollectionBookings = "bookings"
	CollectionMessages = "messages"
)
