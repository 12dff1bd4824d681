package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/wanderlust/core"
)

func TestStorage_UserEmailIsUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, &core.User{ID: "1", Email: "a@x.com"}))

	err := s.CreateUser(ctx, &core.User{ID: "2", Email: " A@X.com"})

	assert.ErrorIs(t, err, core.ErrAccountExists)
	u, err := s.GetUserByEmail(ctx, "A@x.COM")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestStorage_ReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateDestination(ctx, &core.Destination{ID: "d1", Name: "Bali"}))

	got, _ := s.GetDestination(ctx, "d1")
	got.Name = "changed"

	again, _ := s.GetDestination(ctx, "d1")
	assert.Equal(t, "Bali", again.Name)
}

func TestStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetUserByID(ctx, "x")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
	_, err = s.GetProfile(ctx, "x")
	assert.ErrorIs(t, err, core.ErrUserNotFound)
	_, err = s.GetSessionByHash(ctx, "x")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	_, err = s.GetDestination(ctx, "x")
	assert.ErrorIs(t, err, core.ErrDestinationNotFound)
	_, err = s.GetBooking(ctx, "x")
	assert.ErrorIs(t, err, core.ErrBookingNotFound)
	assert.ErrorIs(t, s.UpdateBookingStatus(ctx, "x", core.BookingConfirmed), core.ErrBookingNotFound)
}

func TestStorage_BookingsKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, b := range []core.Booking{
		{ID: "z", UserID: "u1"},
		{ID: "a", UserID: "u2"},
		{ID: "m", UserID: "u1"},
	} {
		require.NoError(t, s.CreateBooking(ctx, &b))
	}

	all, _ := s.ListBookings(ctx)
	mine, _ := s.ListUserBookings(ctx, "u1")

	assert.Equal(t, []string{"z", "a", "m"}, bookingIDs(all))
	assert.Equal(t, []string{"z", "m"}, bookingIDs(mine))
}

func TestStorage_DeleteUserBookings(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, b := range []core.Booking{
		{ID: "z", UserID: "u1"},
		{ID: "a", UserID: "u2"},
		{ID: "m", UserID: "u1"},
	} {
		require.NoError(t, s.CreateBooking(ctx, &b))
	}

	n, err := s.DeleteUserBookings(ctx, "u1")

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	all, _ := s.ListBookings(ctx)
	assert.Equal(t, []string{"a"}, bookingIDs(all))
	_, err = s.GetBooking(ctx, "z")
	assert.ErrorIs(t, err, core.ErrBookingNotFound)
}

func TestStorage_DeleteExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Now()
	_ = s.CreateSession(ctx, &core.Session{ID: "old", TokenHash: "h1", ExpiresAt: now.Add(-time.Minute)})
	_ = s.CreateSession(ctx, &core.Session{ID: "new", TokenHash: "h2", ExpiresAt: now.Add(time.Hour)})

	n, err := s.DeleteExpiredSessions(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = s.GetSessionByID(ctx, "new")
	assert.NoError(t, err)
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	l := NewLocalStorage()

	v, err := l.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, l.Set(ctx, "k", []byte("v")))
	v, _ = l.Get(ctx, "k")
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, l.Delete(ctx, "k"))
	v, _ = l.Get(ctx, "k")
	assert.Nil(t, v)
}

func bookingIDs(bs []*core.Booking) []string {
	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}
