package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/logger"
	"github.com/lborres/wanderlust/validate"
)

type SortBy string

const (
	SortByRating SortBy = "rating"
	SortByPrice  SortBy = "price"
	SortByName   SortBy = "name"
)

// DestinationFilter narrows ListDestinations. The zero value lists every
// destination in insertion order.
type DestinationFilter struct {
	Category     core.Category
	FeaturedOnly bool
	Sort         SortBy
}

// BookingEvents is told about every booking write.
type BookingEvents interface {
	BookingEvent(status core.BookingStatus)
}

// Ledger holds destinations and bookings. Writers are serialized per
// destination id and per booking id.
type Ledger struct {
	db     core.LedgerStorage
	users  core.UserStorage
	locks  *keyedMutex
	events BookingEvents
	now    func() time.Time
	newID  func() string
	log    logger.Logger
}

func NewLedger(db core.LedgerStorage, users core.UserStorage, events BookingEvents, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.Discard()
	}
	return &Ledger{
		db:     db,
		users:  users,
		locks:  newKeyedMutex(),
		events: events,
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
		log:    log.With("component", "ledger"),
	}
}

func (l *Ledger) emit(status core.BookingStatus) {
	if l.events != nil {
		l.events.BookingEvent(status)
	}
}

func checkDestination(d *core.Destination) error {
	errs := validate.Struct(d)
	if errs == nil {
		errs = validate.Errors{}
	}
	if d.Price.IsNegative() || d.Price.IsZero() {
		errs.Check("price", errors.New("price must be greater than zero"))
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

// ============================================
// DESTINATIONS
// ============================================

// AddDestination stores d under a fresh id. The caller's ID is ignored.
func (l *Ledger) AddDestination(ctx context.Context, d core.Destination) (*core.Destination, error) {
	if err := checkDestination(&d); err != nil {
		return nil, err
	}
	d.ID = l.newID()

	if err := l.db.CreateDestination(ctx, &d); err != nil {
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}
	l.log.Info("destination added", "destination_id", d.ID, "name", d.Name)
	return &d, nil
}

// UpdateDestination merges patch into the stored destination. Fields absent
// from the patch keep their value.
func (l *Ledger) UpdateDestination(ctx context.Context, id string, patch core.DestinationPatch) (*core.Destination, error) {
	unlock := l.locks.Lock("destination:" + id)
	defer unlock()

	d, err := l.db.GetDestination(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(d)
	if err := checkDestination(d); err != nil {
		return nil, err
	}
	if err := l.db.UpdateDestination(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update destination: %w", err)
	}
	return d, nil
}

// DeleteDestination removes a destination. Bookings keep their snapshot.
func (l *Ledger) DeleteDestination(ctx context.Context, id string) error {
	unlock := l.locks.Lock("destination:" + id)
	defer unlock()

	if err := l.db.DeleteDestination(ctx, id); err != nil {
		return err
	}
	l.log.Info("destination deleted", "destination_id", id)
	return nil
}

func (l *Ledger) GetDestination(ctx context.Context, id string) (*core.Destination, error) {
	return l.db.GetDestination(ctx, id)
}

func (l *Ledger) ListDestinations(ctx context.Context, f DestinationFilter) ([]*core.Destination, error) {
	all, err := l.db.ListDestinations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Destination, 0, len(all))
	for _, d := range all {
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if f.FeaturedOnly && !d.Featured {
			continue
		}
		out = append(out, d)
	}

	switch f.Sort {
	case SortByRating:
		slices.SortStableFunc(out, func(a, b *core.Destination) int { return cmp.Compare(b.Rating, a.Rating) })
	case SortByPrice:
		slices.SortStableFunc(out, func(a, b *core.Destination) int { return a.Price.Cmp(b.Price) })
	case SortByName:
		slices.SortStableFunc(out, func(a, b *core.Destination) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
	}
	return out, nil
}

// ============================================
// BOOKINGS
// ============================================

// CreateBooking records a pending booking with a snapshot of the
// destination as it is now. The user must exist.
func (l *Ledger) CreateBooking(ctx context.Context, in core.BookingInput) (*core.Booking, error) {
	errs := validate.Errors{}
	errs.Check("guests", validate.Guests(in.Guests))
	if in.StartDate.IsZero() {
		errs["startDate"] = "check-in date is required"
	}
	if !in.EndDate.After(in.StartDate) {
		errs["endDate"] = "check-out date must be after check-in date"
	}
	if in.TotalPrice.IsNegative() {
		errs["totalPrice"] = "total price cannot be negative"
	}
	if !errs.Empty() {
		return nil, errs
	}

	unlockUser := l.locks.Lock("user:" + in.UserID)
	defer unlockUser()

	if _, err := l.users.GetUserByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	unlock := l.locks.Lock("destination:" + in.DestinationID)
	dest, err := l.db.GetDestination(ctx, in.DestinationID)
	unlock()
	if err != nil {
		return nil, err
	}

	b := &core.Booking{
		ID:            l.newID(),
		UserID:        in.UserID,
		DestinationID: in.DestinationID,
		Destination:   *dest,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Guests:        in.Guests,
		TotalPrice:    in.TotalPrice,
		Status:        core.BookingPending,
		CreatedAt:     l.now(),
	}
	if err := l.db.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	l.emit(b.Status)
	l.log.Info("booking created", "booking_id", b.ID, "user_id", b.UserID, "destination_id", b.DestinationID)
	return b, nil
}

// UpdateBookingStatus moves a booking to status. Allowed moves are pending
// to confirmed or cancelled, and confirmed to cancelled.
func (l *Ledger) UpdateBookingStatus(ctx context.Context, id string, status core.BookingStatus) (*core.Booking, error) {
	unlock := l.locks.Lock("booking:" + id)
	defer unlock()

	b, err := l.db.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s to %s", core.ErrInvalidStatusTransition, b.Status, status)
	}
	if err := l.db.UpdateBookingStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	b.Status = status
	l.emit(status)
	l.log.Info("booking status changed", "booking_id", id, "status", status)
	return b, nil
}

func (l *Ledger) ConfirmBooking(ctx context.Context, id string) (*core.Booking, error) {
	return l.UpdateBookingStatus(ctx, id, core.BookingConfirmed)
}

// CancelBooking cancels a booking owned by userID. Admins use
// UpdateBookingStatus directly.
func (l *Ledger) CancelBooking(ctx context.Context, userID, id string) (*core.Booking, error) {
	b, err := l.db.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, core.ErrBookingNotFound
	}
	return l.UpdateBookingStatus(ctx, id, core.BookingCancelled)
}

// RemoveUser deletes every booking of userID, then runs remove to drop the
// identity. No booking can be created for userID in between.
func (l *Ledger) RemoveUser(ctx context.Context, userID string, remove func(context.Context, string) error) error {
	unlock := l.locks.Lock("user:" + userID)
	defer unlock()

	if _, err := l.users.GetUserByID(ctx, userID); err != nil {
		return err
	}
	n, err := l.db.DeleteUserBookings(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bookings: %w", err)
	}
	if err := remove(ctx, userID); err != nil {
		return err
	}
	l.log.Info("user bookings deleted", "user_id", userID, "count", n)
	return nil
}

func (l *Ledger) GetBooking(ctx context.Context, id string) (*core.Booking, error) {
	return l.db.GetBooking(ctx, id)
}

// GetUserBookings returns userID's bookings in creation order.
func (l *Ledger) GetUserBookings(ctx context.Context, userID string) ([]*core.Booking, error) {
	return l.db.ListUserBookings(ctx, userID)
}

func (l *Ledger) ListBookings(ctx context.Context) ([]*core.Booking, error) {
	return l.db.ListBookings(ctx)
}
