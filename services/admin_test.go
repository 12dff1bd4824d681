package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lborres/wanderlust/core"
)

func TestAdminService_UpdateRole(t *testing.T) {
	tests := []struct {
		name    string
		role    core.Role
		wantErr error
	}{
		{name: "promote to admin", role: core.RoleAdmin},
		{name: "demote to user", role: core.RoleUser},
		{name: "unknown role", role: "superuser", wantErr: core.ErrInvalidInput},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)
			u := env.register(t, "a@x.com", "pw")

			// Act
			_, err := env.admin.UpdateRole(context.Background(), u.ID, test.role)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("UpdateRole() error = %v, want %v", err, test.wantErr)
			}
			role, _ := env.admin.Role(context.Background(), u.ID)
			want := test.role
			if test.wantErr != nil {
				want = core.RoleUser
			}
			if role != want {
				t.Errorf("Role() = %q, want %q", role, want)
			}
		})
	}
}

func TestAdminService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@x.com", "secret")
	in, err := env.auth.SignIn(ctx, core.SignInInput{Email: "a@x.com", Password: "secret"}, "", "")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}

	if err := env.admin.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := env.sessions.Verify(ctx, in.Token); err == nil {
		t.Error("deleted user's session still verifies")
	}
	if _, err := env.dir.Authenticate(ctx, "a@x.com", "secret"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Authenticate() after delete error = %v, want ErrInvalidCredentials", err)
	}
	profiles, _ := env.admin.ListProfiles(ctx)
	if len(profiles) != 0 {
		t.Errorf("ListProfiles() = %d profiles, want 0", len(profiles))
	}
	if err := env.admin.DeleteUser(ctx, u.ID); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrUserNotFound", err)
	}
}

func TestAdminService_DeleteUserRemovesBookings(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	ctx := context.Background()
	gone := env.register(t, "a@x.com", "pw")
	kept := env.register(t, "b@x.com", "pw")
	d := env.addDestination(t, "Bali", 1299)
	for _, userID := range []string{gone.ID, gone.ID, kept.ID} {
		if _, err := env.ledger.CreateBooking(ctx, stay(userID, d.ID)); err != nil {
			t.Fatalf("CreateBooking() error = %v", err)
		}
	}

	// Act
	err := env.admin.DeleteUser(ctx, gone.ID)

	// Assert
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	bookings, _ := env.ledger.ListBookings(ctx)
	if len(bookings) != 1 {
		t.Fatalf("ListBookings() = %d bookings, want 1", len(bookings))
	}
	for _, b := range bookings {
		if _, err := env.dir.User(ctx, b.UserID); err != nil {
			t.Errorf("booking %s references user %s: %v", b.ID, b.UserID, err)
		}
	}
	if _, err := env.ledger.CreateBooking(ctx, stay(gone.ID, d.ID)); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("CreateBooking() for deleted user error = %v, want ErrUserNotFound", err)
	}
}

func TestAdminService_Stats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@x.com", "pw")
	env.register(t, "b@x.com", "pw")
	d := env.addDestination(t, "Bali", 1299)
	env.addDestination(t, "Alps", 1899)

	confirmed, _ := env.ledger.CreateBooking(ctx, stay(u.ID, d.ID))
	if _, err := env.ledger.ConfirmBooking(ctx, confirmed.ID); err != nil {
		t.Fatalf("ConfirmBooking() error = %v", err)
	}
	if _, err := env.ledger.CreateBooking(ctx, stay(u.ID, d.ID)); err != nil {
		t.Fatalf("CreateBooking() error = %v", err)
	}

	stats, err := env.admin.Stats(ctx)

	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := core.DashboardStats{Destinations: 2, Bookings: 2, ConfirmedBookings: 1, TotalRevenue: "3009.00", Users: 2}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}
}
