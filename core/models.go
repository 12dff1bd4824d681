package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a signed-up identity
//
// This is the "identity" - who someone is
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account represents an authentication method
//
// This is the "credential" - how someone proves who they are
type Account struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ProviderID string    `json:"providerId"` // "credential"
	AccountID  string    `json:"accountId"`  // email for the credential provider
	Password   *string   `json:"-"`          // Never expose in JSON
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

const CredentialProvider = "credential"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Profile is the administrative view of a user, keyed by user id.
type Profile struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin"`
}

// ProfileData is the caller-supplied part of a sign-up.
type ProfileData struct {
	FullName string `json:"fullName"`
}

// Session represents an API login session
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionData combines user and session info
// The model returned to clients
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
	Role    Role     `json:"role"`
}

type Category string

const (
	CategoryBeach     Category = "beach"
	CategoryMountain  Category = "mountain"
	CategoryCity      Category = "city"
	CategoryAdventure Category = "adventure"
	CategoryCultural  Category = "cultural"
)

// Categories lists every known destination category in display order.
var Categories = []Category{CategoryBeach, CategoryMountain, CategoryCity, CategoryAdventure, CategoryCultural}

type Destination struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required,min=2,max=120"`
	Country     string          `json:"country" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Duration    string          `json:"duration" validate:"required"`
	Image       string          `json:"image" validate:"omitempty,url"`
	Rating      float64         `json:"rating" validate:"gte=0,lte=5"`
	Category    Category        `json:"category" validate:"required,oneof=beach mountain city adventure cultural"`
	Featured    bool            `json:"featured"`
}

// DestinationPatch carries a partial update. Nil fields are left untouched.
type DestinationPatch struct {
	Name        *string          `json:"name,omitempty"`
	Country     *string          `json:"country,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Duration    *string          `json:"duration,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Rating      *float64         `json:"rating,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Featured    *bool            `json:"featured,omitempty"`
}

// Apply merges the patch into d.
func (p DestinationPatch) Apply(d *Destination) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Country != nil {
		d.Country = *p.Country
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Price != nil {
		d.Price = *p.Price
	}
	if p.Duration != nil {
		d.Duration = *p.Duration
	}
	if p.Image != nil {
		d.Image = *p.Image
	}
	if p.Rating != nil {
		d.Rating = *p.Rating
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Featured != nil {
		d.Featured = *p.Featured
	}
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// CanTransition reports whether a booking may move from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled
	default:
		return false
	}
}

type Booking struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	DestinationID string          `json:"destinationId"`
	Destination   Destination     `json:"destination"` // snapshot taken at booking time
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Guests        int             `json:"guests"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Status        BookingStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// BookingInput is what a caller supplies to create a booking.
type BookingInput struct {
	UserID        string
	DestinationID string
	StartDate     time.Time
	EndDate       time.Time
	Guests        int
	TotalPrice    decimal.Decimal
}
