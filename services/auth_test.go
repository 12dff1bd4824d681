package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lborres/wanderlust/core"
)

type recordedEvent struct {
	action string
	err    error
}

type eventRecorder struct{ events []recordedEvent }

func (r *eventRecorder) AuthEvent(action string, err error) {
	r.events = append(r.events, recordedEvent{action, err})
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name     string
		existing bool
		wantErr  error
	}{
		{name: "new user gets a session", existing: false},
		{name: "duplicate email", existing: true, wantErr: core.ErrAccountExists},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)
			if test.existing {
				env.register(t, "a@x.com", "pw")
			}

			// Act
			result, err := env.auth.SignUp(context.Background(), core.SignUpInput{Email: "a@x.com", Password: "pw"}, "127.0.0.1", "test")

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("SignUp() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr == nil && (result.Token == "" || result.Session.UserID != result.User.ID) {
				t.Errorf("SignUp() result = %+v, want a session for the new user", result)
			}
		})
	}
}

func TestAuthService_SignIn(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "correct password", password: "secret"},
		{name: "wrong password", password: "wrong", wantErr: core.ErrInvalidCredentials},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			env := newTestEnv(t)
			rec := &eventRecorder{}
			env.auth.events = rec
			u := env.register(t, "a@x.com", "secret")

			// Act
			result, err := env.auth.SignIn(context.Background(), core.SignInInput{Email: "a@x.com", Password: test.password}, "", "")

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("SignIn() error = %v, want %v", err, test.wantErr)
			}
			if len(rec.events) != 1 || rec.events[0].action != "sign_in" {
				t.Errorf("events = %v, want one sign_in", rec.events)
			}
			profile, _ := env.dir.Profile(context.Background(), u.ID)
			if test.wantErr == nil {
				if result.User.ID != u.ID {
					t.Errorf("User.ID = %q, want %q", result.User.ID, u.ID)
				}
				if profile.LastLogin == nil {
					t.Error("LastLogin should be stamped on sign-in")
				}
			} else if profile.LastLogin != nil {
				t.Error("LastLogin must not change on a failed sign-in")
			}
		})
	}
}

func TestAuthService_GetSessionAndSignOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "a@x.com", "secret")
	in, _ := env.auth.SignIn(ctx, core.SignInInput{Email: "a@x.com", Password: "secret"}, "", "")

	data, err := env.auth.GetSession(ctx, in.Token)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if data.User.Email != "a@x.com" || data.Role != core.RoleUser {
		t.Errorf("GetSession() = %+v", data)
	}

	if err := env.auth.SignOut(ctx, in.Token); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := env.auth.GetSession(ctx, in.Token); !errors.Is(err, core.ErrInvalidToken) {
		t.Errorf("GetSession() after SignOut error = %v, want ErrInvalidToken", err)
	}
	if err := env.auth.SignOut(ctx, in.Token); !errors.Is(err, core.ErrNoActiveSession) {
		t.Errorf("second SignOut() error = %v, want ErrNoActiveSession", err)
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@x.com", "secret")

	if err := env.auth.ResetPassword(context.Background(), "a@x.com"); err != nil {
		t.Errorf("ResetPassword() error = %v", err)
	}
	if err := env.auth.ResetPassword(context.Background(), "ghost@x.com"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("ResetPassword(unknown) error = %v, want ErrUserNotFound", err)
	}
}

func TestAuthService_UpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.register(t, "a@x.com", "secret")

	if err := env.auth.UpdatePassword(ctx, "", "x"); !errors.Is(err, core.ErrNoActiveSession) {
		t.Errorf("UpdatePassword(no user) error = %v, want ErrNoActiveSession", err)
	}
	if err := env.auth.UpdatePassword(ctx, u.ID, "changed"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	if _, err := env.auth.SignIn(ctx, core.SignInInput{Email: "a@x.com", Password: "changed"}, "", ""); err != nil {
		t.Errorf("SignIn() with new password error = %v", err)
	}
}
