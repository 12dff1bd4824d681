package memory

import (
	"context"

	"github.com/lborres/wanderlust/core"
)

// ============================================
// DESTINATIONS
// ============================================

func (s *Storage) CreateDestination(_ context.Context, d *core.Destination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.destinations[d.ID]; exists {
		return core.ErrInvalidInput
	}
	cp := *d
	s.destinations[d.ID] = &cp
	s.destinationOrder = append(s.destinationOrder, d.ID)
	return nil
}

func (s *Storage) GetDestination(_ context.Context, id string) (*core.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.destinations[id]
	if !ok {
		return nil, core.ErrDestinationNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *Storage) ListDestinations(_ context.Context) ([]*core.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Destination, 0, len(s.destinationOrder))
	for _, id := range s.destinationOrder {
		cp := *s.destinations[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Storage) UpdateDestination(_ context.Context, d *core.Destination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.destinations[d.ID]; !ok {
		return core.ErrDestinationNotFound
	}
	cp := *d
	s.destinations[d.ID] = &cp
	return nil
}

func (s *Storage) DeleteDestination(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.destinations[id]; !ok {
		return core.ErrDestinationNotFound
	}
	delete(s.destinations, id)
	s.destinationOrder = removeID(s.destinationOrder, id)
	return nil
}

// ============================================
// BOOKINGS
// ============================================

func (s *Storage) CreateBooking(_ context.Context, b *core.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[b.ID]; exists {
		return core.ErrInvalidInput
	}
	cp := *b
	s.bookings[b.ID] = &cp
	s.bookingOrder = append(s.bookingOrder, b.ID)
	return nil
}

func (s *Storage) GetBooking(_ context.Context, id string) (*core.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, core.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Storage) ListBookings(_ context.Context) ([]*core.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Booking, 0, len(s.bookingOrder))
	for _, id := range s.bookingOrder {
		cp := *s.bookings[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Storage) ListUserBookings(_ context.Context, userID string) ([]*core.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Booking
	for _, id := range s.bookingOrder {
		if b := s.bookings[id]; b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Storage) DeleteUserBookings(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.bookingOrder[:0]
	deleted := 0
	for _, id := range s.bookingOrder {
		if s.bookings[id].UserID == userID {
			delete(s.bookings, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	s.bookingOrder = kept
	return deleted, nil
}

func (s *Storage) UpdateBookingStatus(_ context.Context, id string, status core.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return core.ErrBookingNotFound
	}
	b.Status = status
	return nil
}
