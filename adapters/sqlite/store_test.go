package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/wanderlust/core"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	local, _ := openTemp(t)
	return local.Store()
}

func seedUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, s.CreateUser(context.Background(), &core.User{ID: id, Email: email, CreatedAt: now, UpdatedAt: now}))
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()

	t.Run("Should round trip a user", func(t *testing.T) {
		s := newStore(t)
		seedUser(t, s, "u1", "a@x.com")

		byEmail, err := s.GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", byEmail.ID)

		byEmail.Name = "Ana"
		require.NoError(t, s.UpdateUser(ctx, byEmail))
		byID, err := s.GetUserByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", byID.Name)
	})

	t.Run("Should reject a duplicate email", func(t *testing.T) {
		s := newStore(t)
		seedUser(t, s, "u1", "a@x.com")

		err := s.CreateUser(ctx, &core.User{ID: "u2", Email: "a@x.com"})
		assert.ErrorIs(t, err, core.ErrAccountExists)
	})

	t.Run("Should report missing users", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetUserByID(ctx, "ghost")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
		assert.ErrorIs(t, s.DeleteUser(ctx, "ghost"), core.ErrUserNotFound)
	})
}

func TestStore_AccountsAndProfiles(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seedUser(t, s, "u1", "a@x.com")
	hash := "$argon2id$hash"

	require.NoError(t, s.CreateAccount(ctx, &core.Account{ID: "acc1", UserID: "u1", ProviderID: core.CredentialProvider, AccountID: "a@x.com", Password: &hash}))
	require.NoError(t, s.CreateProfile(ctx, &core.Profile{ID: "u1", Email: "a@x.com", Role: core.RoleUser, CreatedAt: time.Now()}))

	accounts, err := s.GetAccountByUserAndProvider(ctx, "u1", core.CredentialProvider)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.NotNil(t, accounts[0].Password)
	assert.Equal(t, hash, *accounts[0].Password)

	login := time.Date(2026, time.October, 1, 9, 30, 0, 0, time.UTC)
	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, profile.LastLogin)
	profile.Role = core.RoleAdmin
	profile.LastLogin = &login
	require.NoError(t, s.UpdateProfile(ctx, profile))

	profiles, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, core.RoleAdmin, profiles[0].Role)
	require.NotNil(t, profiles[0].LastLogin)
	assert.True(t, login.Equal(*profiles[0].LastLogin))
}

func TestStore_Sessions(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	now := time.Now()
	for _, sess := range []core.Session{
		{ID: "live", UserID: "u1", TokenHash: "h1", ExpiresAt: now.Add(time.Hour), CreatedAt: now, UpdatedAt: now},
		{ID: "stale", UserID: "u1", TokenHash: "h2", ExpiresAt: now.Add(-time.Hour), CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, s.CreateSession(ctx, &sess))
	}

	got, err := s.GetSessionByHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "live", got.ID)
	assert.True(t, got.ExpiresAt.After(now))

	n, err := s.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetSessionByID(ctx, "stale")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	assert.ErrorIs(t, s.DeleteSessionByHash(ctx, "h2"), core.ErrSessionNotFound)
}

func TestStore_Ledger(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	dest := core.Destination{ID: "d1", Name: "Bali", Country: "Indonesia", Price: decimal.RequireFromString("999.50"), Duration: "6 days", Rating: 4.6, Category: core.CategoryBeach, Featured: true}
	require.NoError(t, s.CreateDestination(ctx, &dest))

	start := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	for _, b := range []core.Booking{
		{ID: "z", UserID: "u1", DestinationID: "d1", Destination: dest, StartDate: start, EndDate: start.AddDate(0, 0, 6), Guests: 2, TotalPrice: decimal.NewFromInt(2337), Status: core.BookingPending, CreatedAt: start},
		{ID: "a", UserID: "u2", DestinationID: "d1", Destination: dest, StartDate: start, EndDate: start.AddDate(0, 0, 6), Guests: 1, TotalPrice: decimal.NewFromInt(1218), Status: core.BookingPending, CreatedAt: start},
		{ID: "m", UserID: "u1", DestinationID: "d1", Destination: dest, StartDate: start, EndDate: start.AddDate(0, 0, 6), Guests: 1, TotalPrice: decimal.NewFromInt(1218), Status: core.BookingPending, CreatedAt: start},
	} {
		require.NoError(t, s.CreateBooking(ctx, &b))
	}

	t.Run("Should keep destination fields", func(t *testing.T) {
		got, err := s.GetDestination(ctx, "d1")
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(dest.Price))
		assert.True(t, got.Featured)
		assert.Equal(t, core.CategoryBeach, got.Category)
	})

	t.Run("Should list bookings in insertion order", func(t *testing.T) {
		mine, err := s.ListUserBookings(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, "z", mine[0].ID)
		assert.Equal(t, "m", mine[1].ID)
		assert.Equal(t, "Bali", mine[0].Destination.Name)
		assert.True(t, mine[0].StartDate.Equal(start))
	})

	t.Run("Should update a booking status", func(t *testing.T) {
		require.NoError(t, s.UpdateBookingStatus(ctx, "a", core.BookingConfirmed))
		got, err := s.GetBooking(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, core.BookingConfirmed, got.Status)
		assert.ErrorIs(t, s.UpdateBookingStatus(ctx, "ghost", core.BookingConfirmed), core.ErrBookingNotFound)
	})

	t.Run("Should delete a user's bookings", func(t *testing.T) {
		n, err := s.DeleteUserBookings(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		all, err := s.ListBookings(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "a", all[0].ID)
	})
}

func TestStore_SharesFileWithLocalStorage(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	seedUser(t, first.Store(), "u1", "a@x.com")
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	u, err := second.Store().GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
}
