package core

import "errors"

// Account related errors
var (
	ErrAccountExists      = errors.New("user already exists")       // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")            // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
	ErrNoActiveSession    = errors.New("no user logged in")         // 401 Unauthorized
	ErrForbidden          = errors.New("insufficient role")         // 403 Forbidden

	// ErrUserExists is kept for callers that know the older name.
	ErrUserExists = ErrAccountExists
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid session token")        // 401
	ErrSessionNotFound   = errors.New("session not found")            // 401
	ErrSessionExpired    = errors.New("session expired")              // 401
	ErrCacheNotFound     = errors.New("session not found in cache")
)

// Validation errors (client input)
var (
	ErrEmailRequired    = errors.New("email is required")    // 400
	ErrPasswordRequired = errors.New("password is required") // 400
	ErrPasswordTooLong  = errors.New("password is too long") // 400
	ErrInvalidEmail     = errors.New("invalid email format") // 400
	ErrInvalidInput     = errors.New("invalid input")        // 400
)

// Ledger errors
var (
	ErrDestinationNotFound     = errors.New("destination not found")         // 404
	ErrBookingNotFound         = errors.New("booking not found")             // 404
	ErrInvalidStatusTransition = errors.New("invalid booking status change") // 409
)

// Form errors
var (
	ErrSubmissionFailed     = errors.New("submission failed")                       // 502
	ErrSubmissionInProgress = errors.New("submission in progress")                  // 409
	ErrNotSubmittable       = errors.New("form cannot be submitted from this step") // 409
	ErrNoNextStep           = errors.New("no next step, submit the form instead")   // 409
	ErrUnknownStep          = errors.New("unknown form step")                       // 404
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired   = errors.New("database adapter is required") // 500
	ErrHTTPAdapterRequired = errors.New("adapter is required")          // 500
	ErrSecretRequired      = errors.New("secret is required")           // 500
	ErrSecretTooShort      = errors.New("secret too short")             // 500
)
