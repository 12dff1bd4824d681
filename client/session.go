// Package client holds the signed-in state of a single user process: the
// current identity, persisted across restarts, and the listeners watching it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/logger"
	"github.com/lborres/wanderlust/pkg/observer"
	"github.com/lborres/wanderlust/services"
)

// IdentityKey is the local storage key holding the current identity.
const IdentityKey = "current_identity"

// SessionStore holds at most one signed-in identity.
//
// Local storage is the source of truth: every mutation writes it first and
// only then updates memory, so a failed write leaves the store unchanged.
// Listeners are called in registration order after the mutation completes.
// Notifications are queued and delivered one at a time in mutation order by
// whichever goroutine finds the queue idle, so a listener may subscribe or
// mutate the store; its own notification runs after the current one returns.
type SessionStore struct {
	mu         sync.Mutex
	current    *core.User
	queue      []func()
	delivering bool

	dir       *services.Directory
	local     core.LocalStorage
	listeners observer.Registry[*core.User]
	log       logger.Logger
}

// NewSessionStore restores the identity persisted under IdentityKey, if any.
// An unreadable entry is discarded.
func NewSessionStore(ctx context.Context, dir *services.Directory, local core.LocalStorage, log logger.Logger) (*SessionStore, error) {
	if log == nil {
		log = logger.Discard()
	}
	s := &SessionStore{dir: dir, local: local, log: log.With("component", "session_store")}

	raw, err := local.Get(ctx, IdentityKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IdentityKey, err)
	}
	if raw == nil {
		return s, nil
	}

	var u core.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		s.log.Warn("discarding unreadable identity", "error", err)
		if err := local.Delete(ctx, IdentityKey); err != nil {
			s.log.Warn("failed to remove unreadable identity", "error", err)
		}
		return s, nil
	}
	s.current = &u
	s.log.Debug("identity restored", "user_id", u.ID)
	return s, nil
}

// CurrentIdentity returns a copy of the signed-in identity, or nil.
func (s *SessionStore) CurrentIdentity() *core.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.current)
}

// Subscribe registers fn and calls it once with the current identity. The
// call happens before Subscribe returns unless a delivery is already in
// progress, in which case it is queued behind it.
func (s *SessionStore) Subscribe(fn func(*core.User)) observer.Subscription {
	s.mu.Lock()
	sub := s.listeners.Subscribe(fn)
	current := clone(s.current)
	s.enqueue(func() { fn(current) })
	return sub
}

// SignIn authenticates against the directory and makes the user current.
// Unknown emails, including blank ones, and wrong or blank passwords fail
// with core.ErrInvalidCredentials and leave the current identity untouched.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) (*core.User, error) {
	user, err := s.dir.Authenticate(ctx, email, password)
	if errors.Is(err, core.ErrEmailRequired) || errors.Is(err, core.ErrPasswordRequired) {
		return nil, core.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.dir.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("failed to stamp last login", "user_id", user.ID, "error", err)
	}

	if err := s.set(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("signed in", "user_id", user.ID)
	return clone(user), nil
}

// SignUp registers a new account and signs it in. An email already in the
// directory fails with core.ErrAccountExists.
func (s *SessionStore) SignUp(ctx context.Context, email, password string, profile core.ProfileData) (*core.User, error) {
	user, err := s.dir.Register(ctx, core.SignUpInput{
		Email:    strings.TrimSpace(email),
		Password: password,
		Name:     profile.FullName,
	})
	if err != nil {
		return nil, err
	}

	if err := s.set(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info("signed up", "user_id", user.ID)
	return clone(user), nil
}

// SignOut clears the current identity and its persisted copy. Signing out
// with nobody signed in is not an error.
func (s *SessionStore) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if err := s.local.Delete(ctx, IdentityKey); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to remove %s: %w", IdentityKey, err)
	}
	prev := s.current
	s.current = nil
	s.publish(nil)

	if prev != nil {
		s.log.Info("signed out", "user_id", prev.ID)
	}
	return nil
}

// ResetPassword fails with core.ErrUserNotFound for unknown emails, blank
// or malformed ones included. Otherwise a reset notice is logged; nothing is
// sent.
func (s *SessionStore) ResetPassword(ctx context.Context, email string) error {
	user, err := s.dir.Lookup(ctx, email)
	if errors.Is(err, core.ErrEmailRequired) || errors.Is(err, core.ErrInvalidEmail) {
		return core.ErrUserNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("password reset link sent", "email", user.Email)
	return nil
}

// UpdatePassword changes the signed-in user's password.
func (s *SessionStore) UpdatePassword(ctx context.Context, newPassword string) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return core.ErrNoActiveSession
	}
	if err := s.dir.ChangePassword(ctx, current.ID, newPassword); err != nil {
		return err
	}
	s.log.Info("password updated", "user_id", current.ID)
	return nil
}

// set persists user and makes it current.
func (s *SessionStore) set(ctx context.Context, user *core.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	s.mu.Lock()
	if err := s.local.Set(ctx, IdentityKey, raw); err != nil {
		s.mu.Unlock()
		s.log.Error("failed to persist identity", "user_id", user.ID, "error", err)
		return fmt.Errorf("failed to write %s: %w", IdentityKey, err)
	}
	s.current = clone(user)
	s.publish(clone(user))
	return nil
}

// publish must be called with s.mu held. It releases s.mu and notifies
// listeners in mutation order.
func (s *SessionStore) publish(u *core.User) {
	s.enqueue(func() { s.listeners.Notify(u) })
}

// enqueue must be called with s.mu held and releases it. The caller drains
// the queue unless another goroutine, or an enclosing listener, already is.
func (s *SessionStore) enqueue(job func()) {
	s.queue = append(s.queue, job)
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		s.deliver(next)
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// deliver runs job, handing delivery back if it panics.
func (s *SessionStore) deliver(job func()) {
	done := false
	defer func() {
		if !done {
			s.mu.Lock()
			s.delivering = false
			s.mu.Unlock()
		}
	}()
	job()
	done = true
}

func clone(u *core.User) *core.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
