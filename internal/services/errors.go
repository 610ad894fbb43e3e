package services

import (
	"errors"
	"net/http"
)

// Domain errors surfaced by the service layer. Handlers translate them
// through ErrorStatus and never leak wrapped storage errors to clients.
var (
	// Users and auth
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user with email already exists")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrMobileNumberTaken    = errors.New("mobile number already in use")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAccountNotVerified   = errors.New("account is not verified")
	ErrPermissionRequired   = errors.New("you do not have permission to perform this action")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters long")
	ErrPasswordsDontMatch   = errors.New("passwords do not match")
	ErrInvalidToken         = errors.New("token is invalid")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTokenRevoked         = errors.New("token has been revoked")
	ErrAccessTokenRequired  = errors.New("access token required")
	ErrRefreshTokenRequired = errors.New("refresh token required")
	ErrTokenMissingEmail    = errors.New("verification token carries no email")

	// Rides and bookings
	ErrRideNotFound          = errors.New("ride not found")
	ErrVehiclePlateTaken     = errors.New("a ride with this vehicle plate already exists")
	ErrDestinationRequired   = errors.New("destination not found")
	ErrCannotBookOwnRide     = errors.New("drivers cannot book their own ride")
	ErrNoSeatsAvailable      = errors.New("no seats available on this ride")
	ErrBookingAlreadyExists  = errors.New("ride already booked")
	ErrCannotCompleteBooking = errors.New("could not complete booking")
	ErrBookingNotFound       = errors.New("booking not found")

	// Chat
	ErrMessageNotFound = errors.New("message not found")
	ErrNotRideMember   = errors.New("not a member of this ride")
)

// ErrorStatus maps a domain error to its HTTP status and stable error
// code. Unknown errors come back as an opaque 500.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, ErrUserAlreadyExists):
		return http.StatusConflict, "USER_EXISTS"
	case errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict, "USERNAME_TAKEN"
	case errors.Is(err, ErrMobileNumberTaken):
		return http.StatusConflict, "MOBILE_NUMBER_TAKEN"
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, ErrAccountNotVerified):
		return http.StatusForbidden, "ACCOUNT_NOT_VERIFIED"
	case errors.Is(err, ErrPermissionRequired):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, ErrPasswordTooShort):
		return http.StatusBadRequest, "PASSWORD_TOO_SHORT"
	case errors.Is(err, ErrPasswordsDontMatch):
		return http.StatusBadRequest, "PASSWORDS_DONT_MATCH"
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN"
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, "TOKEN_EXPIRED"
	case errors.Is(err, ErrTokenRevoked):
		return http.StatusUnauthorized, "TOKEN_REVOKED"
	case errors.Is(err, ErrAccessTokenRequired):
		return http.StatusForbidden, "ACCESS_TOKEN_REQUIRED"
	case errors.Is(err, ErrRefreshTokenRequired):
		return http.StatusUnauthorized, "REFRESH_TOKEN_REQUIRED"
	case errors.Is(err, ErrTokenMissingEmail):
		return http.StatusInternalServerError, "TOKEN_MISSING_EMAIL"
	case errors.Is(err, ErrRideNotFound):
		return http.StatusNotFound, "RIDE_NOT_FOUND"
	case errors.Is(err, ErrVehiclePlateTaken):
		return http.StatusConflict, "VEHICLE_PLATE_TAKEN"
	case errors.Is(err, ErrDestinationRequired):
		return http.StatusNotFound, "DESTINATION_NOT_FOUND"
	case errors.Is(err, ErrCannotBookOwnRide):
		return http.StatusForbidden, "CANNOT_BOOK_OWN_RIDE"
	case errors.Is(err, ErrNoSeatsAvailable):
		return http.StatusBadRequest, "NO_SEATS_AVAILABLE"
	case errors.Is(err, ErrBookingAlreadyExists):
		return http.StatusConflict, "BOOKING_EXISTS"
	case errors.Is(err, ErrCannotCompleteBooking):
		return http.StatusInternalServerError, "BOOKING_FAILED"
	case errors.Is(err, ErrBookingNotFound):
		return http.StatusNotFound, "BOOKING_NOT_FOUND"
	case errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound, "MESSAGE_NOT_FOUND"
	case errors.Is(err, ErrNotRideMember):
		return http.StatusForbidden, "NOT_RIDE_MEMBER"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
