package core

import "time"

// SignUpInput contains the data needed to register a new user
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
	Name     string `json:"name" validate:"omitempty,max=120"`
}

// SignUpResult contains the newly created user and their first session
type SignUpResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token"` // The raw token (not the hash)
}

// SignInInput contains the credentials for authentication
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResult contains the authenticated user and their session
type SignInResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Token   string   `json:"token"` // The raw token (not the hash)
}

// RefreshResult carries the rotated token
type RefreshResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

type CreateSessionResult struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

type SessionConfig struct {
	MaxAge time.Duration
	// Secret keys the stored token hashes. Empty stores plain SHA-256.
	Secret string
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}

// DashboardStats summarises the ledger for the admin dashboard.
type DashboardStats struct {
	Destinations      int    `json:"destinations"`
	Bookings          int    `json:"bookings"`
	ConfirmedBookings int    `json:"confirmedBookings"`
	TotalRevenue      string `json:"totalRevenue"`
	Users             int    `json:"users"`
}
