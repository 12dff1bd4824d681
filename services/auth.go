package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/logger"
)

// AuthEvents receives sign-in outcomes, e.g. for metrics.
type AuthEvents interface {
	AuthEvent(action string, err error)
}

// AuthService is the token-based auth flow served over HTTP. Each sign-in
// gets its own session, so many users can be signed in at once.
type AuthService struct {
	dir      *Directory
	sessions *SessionManager
	events   AuthEvents
	log      logger.Logger
}

func NewAuthService(dir *Directory, sessions *SessionManager, events AuthEvents, log logger.Logger) *AuthService {
	if log == nil {
		log = logger.Discard()
	}
	return &AuthService{dir: dir, sessions: sessions, events: events, log: log.With("component", "auth")}
}

func (s *AuthService) record(action string, err error) {
	if s.events != nil {
		s.events.AuthEvent(action, err)
	}
}

// SignUp registers a new user and opens their first session
func (s *AuthService) SignUp(ctx context.Context, input core.SignUpInput, ipAddress, userAgent string) (result *core.SignUpResult, err error) {
	defer func() { s.record("sign_up", err) }()

	user, err := s.dir.Register(ctx, input)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &core.SignUpResult{User: user, Session: session.Session, Token: session.Token}, nil
}

// SignIn authenticates a user with email and password
func (s *AuthService) SignIn(ctx context.Context, input core.SignInInput, ipAddress, userAgent string) (result *core.SignInResult, err error) {
	defer func() { s.record("sign_in", err) }()

	user, err := s.dir.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.dir.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to stamp last login", "user_id", user.ID, "error", err)
	}

	session, err := s.sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &core.SignInResult{User: user, Session: session.Session, Token: session.Token}, nil
}

// SignOut invalidates the session behind token
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return core.ErrNoActiveSession
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetSession resolves token to its user, session and role
func (s *AuthService) GetSession(ctx context.Context, token string) (*core.SessionData, error) {
	session, err := s.sessions.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.dir.User(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	role := core.RoleUser
	if profile, err := s.dir.Profile(ctx, user.ID); err == nil {
		role = profile.Role
	}

	return &core.SessionData{User: user, Session: session, Role: role}, nil
}

func (s *AuthService) Refresh(ctx context.Context, token, ipAddress, userAgent string) (*core.RefreshResult, error) {
	result, err := s.sessions.Refresh(ctx, token, ipAddress, userAgent)
	if err != nil {
		return nil, err
	}
	return &core.RefreshResult{Session: result.Session, Token: result.Token}, nil
}

// ResetPassword fails for unknown emails. Otherwise it only logs the reset
// notice; no mail is sent.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	user, err := s.dir.Lookup(ctx, email)
	if err != nil {
		return err
	}
	s.log.Info("password reset requested", "user_id", user.ID, "email", user.Email)
	return nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if userID == "" {
		return core.ErrNoActiveSession
	}
	return s.dir.ChangePassword(ctx, userID, newPassword)
}
