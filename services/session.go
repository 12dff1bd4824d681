package services

import (
	"context"
	"errors"
	"time"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/crypto"
)

// SessionManager issues and verifies API bearer tokens. Only a hash of the
// token, keyed by the configured secret, is stored.
type SessionManager struct {
	config  core.SessionConfig
	storage core.SessionStorage
	cache   core.Cache // optional, can be nil if caching is disabled
	nanoid  *crypto.NanoIDGenerator
	tokens  *crypto.TokenHasher
	now     func() time.Time
}

func NewSessionManager(config core.SessionConfig, storage core.SessionStorage, cache core.Cache) *SessionManager {
	nanoid, _ := crypto.NewNanoID("")
	if config.MaxAge <= 0 {
		config.MaxAge = core.DefaultSessionConfig().MaxAge
	}
	return &SessionManager{
		config:  config,
		storage: storage,
		cache:   cache,
		nanoid:  nanoid,
		tokens:  crypto.NewTokenHasher(config.Secret),
		now:     time.Now,
	}
}

func (sm *SessionManager) Create(ctx context.Context, userID, ip, userAgent string) (*core.CreateSessionResult, error) {
	pair, err := sm.tokens.Generate(crypto.DefaultTokenLength)
	if err != nil {
		return nil, err
	}

	sessionID, err := sm.nanoid.Generate(0)
	if err != nil {
		return nil, err
	}

	now := sm.now()
	session := &core.Session{
		ID:        sessionID,
		UserID:    userID,
		TokenHash: pair.Hash,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(sm.config.MaxAge),
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	// We don't fail the request if caching fails
	if sm.cache != nil {
		_ = sm.cache.Set(pair.Hash, session)
	}

	return &core.CreateSessionResult{Session: session, Token: pair.Token}, nil
}

func (sm *SessionManager) Verify(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := sm.tokens.Hash(token)

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil {
			if sm.now().After(session.ExpiresAt) {
				_ = sm.cache.Delete(tokenHash)
				return nil, core.ErrSessionExpired
			}
			return session, nil
		}
		// Cache miss - fall through to storage
	}

	session, err := sm.storage.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			return nil, core.ErrInvalidToken
		}
		return nil, err
	}

	if sm.now().After(session.ExpiresAt) {
		_ = sm.storage.DeleteSessionByHash(ctx, tokenHash)
		return nil, core.ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

// Refresh rotates token: a new session is issued for the same user and the
// old one is destroyed.
func (sm *SessionManager) Refresh(ctx context.Context, token, ip, userAgent string) (*core.CreateSessionResult, error) {
	session, err := sm.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	result, err := sm.Create(ctx, session.UserID, ip, userAgent)
	if err != nil {
		return nil, err
	}

	if err := sm.Destroy(ctx, token); err != nil && !errors.Is(err, core.ErrSessionNotFound) {
		return nil, err
	}
	return result, nil
}

func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}

	tokenHash := sm.tokens.Hash(token)
	if err := sm.storage.DeleteSessionByHash(ctx, tokenHash); err != nil {
		return err
	}

	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}
	return nil
}

func (sm *SessionManager) DestroyBySessionID(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return core.ErrSessionNotFound
	}

	// Look the session up first to get its hash for cache invalidation
	if sm.cache != nil {
		session, err := sm.storage.GetSessionByID(ctx, sessionID)
		if err == nil && session != nil {
			_ = sm.cache.Delete(session.TokenHash)
		}
	}

	return sm.storage.DeleteSessionByID(ctx, sessionID)
}

func (sm *SessionManager) DestroyAllUserSessions(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, core.ErrUserNotFound
	}

	sessions, err := sm.storage.GetUserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}

	count, err := sm.storage.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}

	if sm.cache != nil {
		for _, s := range sessions {
			_ = sm.cache.Delete(s.TokenHash)
		}
	}

	return count, nil
}

// PurgeExpired removes expired sessions from storage.
func (sm *SessionManager) PurgeExpired(ctx context.Context) (int, error) {
	return sm.storage.DeleteExpiredSessions(ctx)
}
