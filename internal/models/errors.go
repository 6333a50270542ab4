package models

import "errors"

// Sentinel errors shared by services and mapped to HTTP statuses in the
// handlers. Repos and services wrap these with fmt.Errorf("...: %w", err) so
// callers can still match with errors.Is.
var (
	// Authentication (401)
	ErrMissingAuthHeader  = errors.New("authorization header missing")
	ErrMissingToken       = errors.New("access denied, token missing")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrSessionInvalid     = errors.New("session is no longer active")
	ErrSessionSuperseded  = errors.New("session superseded by a newer login")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyLoggedOut   = errors.New("already logged out")

	// Authorization (403)
	ErrForbidden = errors.New("access denied, admin only")

	// Not found (404)
	ErrUserNotFound    = errors.New("user not found")
	ErrPackageNotFound = errors.New("package not found")
	ErrDetailNotFound  = errors.New("package details not found")
	ErrBookingNotFound = errors.New("booking not found")

	// Conflicts (400/409)
	ErrDuplicateEmail   = errors.New("user already exists")
	ErrDetailExists     = errors.New("package details already exist, use update instead")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// Password reset
	ErrResetTokenInvalid = errors.New("token is invalid or has expired")

	// ErrValidation marks caller mistakes in request payloads. Services wrap
	// it with the specific complaint.
	ErrValidation = errors.New("validation failed")
)
