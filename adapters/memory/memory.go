// Package memory keeps every storage port in process memory. It backs the
// demo server when no database is configured and doubles as the fake used
// in service tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lborres/wanderlust/core"
)

var _ core.StorageAdapter = (*Storage)(nil)

// Storage is safe for concurrent use. Every read returns a copy, so callers
// never alias stored records.
type Storage struct {
	mu sync.RWMutex

	users        map[string]*core.User
	userByEmail  map[string]string
	accounts     map[string]*core.Account
	profiles     map[string]*core.Profile
	profileOrder []string
	sessions     map[string]*core.Session // by token hash

	destinations     map[string]*core.Destination
	destinationOrder []string
	bookings         map[string]*core.Booking
	bookingOrder     []string

	now func() time.Time
}

func New() *Storage {
	return &Storage{
		users:        make(map[string]*core.User),
		userByEmail:  make(map[string]string),
		accounts:     make(map[string]*core.Account),
		profiles:     make(map[string]*core.Profile),
		sessions:     make(map[string]*core.Session),
		destinations: make(map[string]*core.Destination),
		bookings:     make(map[string]*core.Booking),
		now:          time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

// ============================================
// USERS
// ============================================

func (s *Storage) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(u.Email)
	if _, exists := s.userByEmail[key]; exists {
		return core.ErrAccountExists
	}
	if _, exists := s.users[u.ID]; exists {
		return core.ErrAccountExists
	}

	cp := *u
	s.users[u.ID] = &cp
	s.userByEmail[key] = u.ID
	return nil
}

func (s *Storage) GetUserByID(_ context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	id, ok := s.userByEmail[emailKey(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return s.GetUserByID(ctx, id)
}

func (s *Storage) UpdateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.users[u.ID]
	if !ok {
		return core.ErrUserNotFound
	}
	newKey := emailKey(u.Email)
	if owner, taken := s.userByEmail[newKey]; taken && owner != u.ID {
		return core.ErrAccountExists
	}

	delete(s.userByEmail, emailKey(old.Email))
	u.UpdatedAt = s.now()
	cp := *u
	s.users[u.ID] = &cp
	s.userByEmail[newKey] = u.ID
	return nil
}

func (s *Storage) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return core.ErrUserNotFound
	}
	delete(s.userByEmail, emailKey(u.Email))
	delete(s.users, id)
	return nil
}

// ============================================
// ACCOUNTS
// ============================================

func (s *Storage) CreateAccount(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return core.ErrAccountExists
	}
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *Storage) GetAccountByUserAndProvider(_ context.Context, userID, providerID string) ([]*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Account
	for _, a := range s.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Storage) UpdateAccount(_ context.Context, a *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[a.ID]; !ok {
		return core.ErrUserNotFound
	}
	a.UpdatedAt = s.now()
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *Storage) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

// ============================================
// PROFILES
// ============================================

func (s *Storage) CreateProfile(_ context.Context, p *core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[p.ID]; exists {
		return core.ErrAccountExists
	}
	cp := *p
	s.profiles[p.ID] = &cp
	s.profileOrder = append(s.profileOrder, p.ID)
	return nil
}

func (s *Storage) GetProfile(_ context.Context, id string) (*core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Storage) ListProfiles(_ context.Context) ([]*core.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Profile, 0, len(s.profileOrder))
	for _, id := range s.profileOrder {
		cp := *s.profiles[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Storage) UpdateProfile(_ context.Context, p *core.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.ID]; !ok {
		return core.ErrUserNotFound
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *Storage) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return core.ErrUserNotFound
	}
	delete(s.profiles, id)
	s.profileOrder = removeID(s.profileOrder, id)
	return nil
}

// ============================================
// SESSIONS
// ============================================

func (s *Storage) CreateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.TokenHash] = &cp
	return nil
}

func (s *Storage) GetSessionByHash(_ context.Context, tokenHash string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *Storage) GetSessionByID(_ context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.ID == id {
			cp := *session
			return &cp, nil
		}
	}
	return nil, core.ErrSessionNotFound
}

func (s *Storage) GetUserSessions(_ context.Context, userID string) ([]*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Session
	for _, session := range s.sessions {
		if session.UserID == userID {
			cp := *session
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Storage) UpdateSession(_ context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, existing := range s.sessions {
		if existing.ID == session.ID {
			delete(s.sessions, hash)
			session.UpdatedAt = s.now()
			cp := *session
			s.sessions[session.TokenHash] = &cp
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (s *Storage) DeleteSessionByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, session := range s.sessions {
		if session.ID == id {
			delete(s.sessions, hash)
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (s *Storage) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.sessions, tokenHash)
	return nil
}

func (s *Storage) DeleteUserSessions(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for hash, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, hash)
			count++
		}
	}
	return count, nil
}

func (s *Storage) DeleteExpiredSessions(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for hash, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, hash)
			count++
		}
	}
	return count, nil
}
