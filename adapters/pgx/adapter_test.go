package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lborres/wanderlust/core"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Adapter) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, New(mock)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Should insert a user", func(t *testing.T) {
		mock, a := newMock(t)
		u := &core.User{ID: "u1", Email: "a@x.com", Name: "A", CreatedAt: now, UpdatedAt: now}
		mock.ExpectExec("INSERT INTO users").
			WithArgs("u1", "a@x.com", "A", now, now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, a.CreateUser(ctx, u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map unique violation to ErrAccountExists", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectExec("INSERT INTO users").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := a.CreateUser(ctx, &core.User{ID: "u1", Email: "a@x.com"})
		assert.ErrorIs(t, err, core.ErrAccountExists)
	})

	t.Run("Should find a user by email", func(t *testing.T) {
		mock, a := newMock(t)
		rows := mock.NewRows([]string{"id", "email", "name", "created_at", "updated_at"}).
			AddRow("u1", "a@x.com", "A", now, now)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").WithArgs("a@x.com").WillReturnRows(rows)

		u, err := a.GetUserByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should map no rows to ErrUserNotFound", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

		_, err := a.GetUserByID(ctx, "ghost")
		assert.ErrorIs(t, err, core.ErrUserNotFound)
	})

	t.Run("Should report deleting a missing user", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectExec("DELETE FROM users").WithArgs("ghost").WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, a.DeleteUser(ctx, "ghost"), core.ErrUserNotFound)
	})
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	hash := "$argon2id$hash"

	t.Run("Should list credential accounts for a user", func(t *testing.T) {
		mock, a := newMock(t)
		rows := mock.NewRows([]string{"id", "user_id", "provider_id", "account_id", "password", "created_at", "updated_at"}).
			AddRow("acc1", "u1", core.CredentialProvider, "a@x.com", &hash, now, now)
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE user_id = \\$1 AND provider_id = \\$2").
			WithArgs("u1", core.CredentialProvider).
			WillReturnRows(rows)

		accounts, err := a.GetAccountByUserAndProvider(ctx, "u1", core.CredentialProvider)
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		require.NotNil(t, accounts[0].Password)
		assert.Equal(t, hash, *accounts[0].Password)
	})

	t.Run("Should delete an account idempotently", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectExec("DELETE FROM accounts").WithArgs("acc1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.NoError(t, a.DeleteAccount(ctx, "acc1"))
	})
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	var never *time.Time

	t.Run("Should list profiles in insertion order", func(t *testing.T) {
		mock, a := newMock(t)
		rows := mock.NewRows([]string{"id", "email", "full_name", "role", "created_at", "last_login"}).
			AddRow("1", "admin@x.com", "Admin", core.RoleAdmin, now, &now).
			AddRow("2", "user@x.com", "User", core.RoleUser, now, never)
		mock.ExpectQuery("SELECT (.+) FROM profiles ORDER BY seq").WillReturnRows(rows)

		profiles, err := a.ListProfiles(ctx)
		require.NoError(t, err)
		require.Len(t, profiles, 2)
		assert.Equal(t, core.RoleAdmin, profiles[0].Role)
		assert.NotNil(t, profiles[0].LastLogin)
		assert.Nil(t, profiles[1].LastLogin)
	})

	t.Run("Should report updating a missing profile", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectExec("UPDATE profiles").
			WithArgs("a@x.com", "A", core.RoleUser, never, "ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := a.UpdateProfile(ctx, &core.Profile{ID: "ghost", Email: "a@x.com", FullName: "A", Role: core.RoleUser})
		assert.ErrorIs(t, err, core.ErrUserNotFound)
	})
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Should find a session by token hash", func(t *testing.T) {
		mock, a := newMock(t)
		rows := mock.NewRows([]string{"id", "user_id", "token_hash", "ip_address", "user_agent", "expires_at", "created_at", "updated_at"}).
			AddRow("s1", "u1", "hash", "127.0.0.1", "cli", now.Add(time.Hour), now, now)
		mock.ExpectQuery("SELECT (.+) FROM sessions WHERE token_hash = \\$1").WithArgs("hash").WillReturnRows(rows)

		s, err := a.GetSessionByHash(ctx, "hash")
		require.NoError(t, err)
		assert.Equal(t, "u1", s.UserID)
	})

	t.Run("Should map missing sessions to ErrSessionNotFound", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM sessions WHERE token_hash = \\$1").WithArgs("nope").WillReturnError(pgx.ErrNoRows)
		mock.ExpectExec("DELETE FROM sessions WHERE token_hash").WithArgs("nope").WillReturnResult(pgxmock.NewResult("DELETE", 0))

		_, err := a.GetSessionByHash(ctx, "nope")
		assert.ErrorIs(t, err, core.ErrSessionNotFound)
		assert.ErrorIs(t, a.DeleteSessionByHash(ctx, "nope"), core.ErrSessionNotFound)
	})

	t.Run("Should count removed user sessions", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectExec("DELETE FROM sessions WHERE user_id").WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 3))

		n, err := a.DeleteUserSessions(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestDestinations(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "name", "country", "description", "price", "duration", "image", "rating", "category", "featured"}

	t.Run("Should store the price as text", func(t *testing.T) {
		mock, a := newMock(t)
		d := &core.Destination{ID: "d1", Name: "Bali", Country: "Indonesia", Price: decimal.RequireFromString("1299.50"), Duration: "7 days", Rating: 4.8, Category: core.CategoryBeach}
		mock.ExpectExec("INSERT INTO destinations").
			WithArgs("d1", "Bali", "Indonesia", "", "1299.5", "7 days", "", 4.8, core.CategoryBeach, false).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, a.CreateDestination(ctx, d))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Should parse numeric prices", func(t *testing.T) {
		mock, a := newMock(t)
		rows := mock.NewRows(columns).
			AddRow("d1", "Bali", "Indonesia", "", "1299.00", "7 days", "", 4.8, core.CategoryBeach, true).
			AddRow("d2", "Alps", "Switzerland", "", "1899.00", "6 days", "", 4.7, core.CategoryMountain, false)
		mock.ExpectQuery("SELECT (.+) FROM destinations ORDER BY seq").WillReturnRows(rows)

		list, err := a.ListDestinations(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].Price.Equal(decimal.NewFromInt(1299)))
		assert.Equal(t, "Alps", list[1].Name)
	})

	t.Run("Should map no rows to ErrDestinationNotFound", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM destinations WHERE id = \\$1").WithArgs("x").WillReturnError(pgx.ErrNoRows)

		_, err := a.GetDestination(ctx, "x")
		assert.ErrorIs(t, err, core.ErrDestinationNotFound)
	})
}

func TestBookings(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	columns := []string{"id", "user_id", "destination_id", "destination", "start_date", "end_date", "guests", "total_price", "status", "created_at"}
	snapshot, err := json.Marshal(core.Destination{ID: "d1", Name: "Bali", Price: decimal.NewFromInt(1299)})
	require.NoError(t, err)

	t.Run("Should list a user's bookings with their snapshot", func(t *testing.T) {
		mock, a := newMock(t)
		rows := mock.NewRows(columns).
			AddRow("b1", "u1", "d1", snapshot, now, now.Add(48*time.Hour), 2, "3009.00", core.BookingPending, now).
			AddRow("b2", "u1", "d1", snapshot, now, now.Add(48*time.Hour), 1, "1554.00", core.BookingConfirmed, now)
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE user_id = \\$1 ORDER BY seq").WithArgs("u1").WillReturnRows(rows)

		list, err := a.ListUserBookings(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "b1", list[0].ID)
		assert.Equal(t, "Bali", list[0].Destination.Name)
		assert.True(t, list[0].TotalPrice.Equal(decimal.NewFromInt(3009)))
		assert.Equal(t, core.BookingConfirmed, list[1].Status)
	})

	t.Run("Should report a status change on a missing booking", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectExec("UPDATE bookings SET status").
			WithArgs(core.BookingConfirmed, "ghost").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, a.UpdateBookingStatus(ctx, "ghost", core.BookingConfirmed), core.ErrBookingNotFound)
	})

	t.Run("Should wrap insert failures", func(t *testing.T) {
		mock, a := newMock(t)
		boom := errors.New("connection reset")
		mock.ExpectExec("INSERT INTO bookings").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
				pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(boom)

		err := a.CreateBooking(ctx, &core.Booking{ID: "b1", Status: core.BookingPending, TotalPrice: decimal.Zero})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Should count removed user bookings", func(t *testing.T) {
		mock, a := newMock(t)
		mock.ExpectExec("DELETE FROM bookings WHERE user_id").WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 2))

		n, err := a.DeleteUserBookings(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
