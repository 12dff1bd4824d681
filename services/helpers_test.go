package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lborres/wanderlust/adapters/memory"
	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/cache"
	"github.com/lborres/wanderlust/pkg/crypto"
	"github.com/lborres/wanderlust/pkg/logger"
)

type testEnv struct {
	db       *memory.Storage
	dir      *Directory
	sessions *SessionManager
	cache    *cache.InMemoryCache
	auth     *AuthService
	ledger   *Ledger
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memory.New()
	c := cache.NewInMemoryCache(core.CacheConfig{})
	dir := NewDirectory(db, crypto.NewFastArgon2(), logger.Discard())
	sessions := NewSessionManager(core.SessionConfig{MaxAge: time.Hour}, db, c)
	ledger := NewLedger(db, db, nil, logger.Discard())
	return &testEnv{
		db:       db,
		dir:      dir,
		sessions: sessions,
		cache:    c,
		auth:     NewAuthService(dir, sessions, nil, logger.Discard()),
		ledger:   ledger,
		admin:    NewAdminService(dir, sessions, ledger, logger.Discard()),
	}
}

func (e *testEnv) register(t *testing.T, email, password string) *core.User {
	t.Helper()
	u, err := e.dir.Register(context.Background(), core.SignUpInput{Email: email, Password: password, Name: "Test User"})
	if err != nil {
		t.Fatalf("Register(%q) error = %v", email, err)
	}
	return u
}

func (e *testEnv) addDestination(t *testing.T, name string, price int64) *core.Destination {
	t.Helper()
	d, err := e.ledger.AddDestination(context.Background(), core.Destination{
		Name:     name,
		Country:  "Somewhere",
		Price:    decimal.NewFromInt(price),
		Duration: "7 days",
		Rating:   4.5,
		Category: core.CategoryBeach,
	})
	if err != nil {
		t.Fatalf("AddDestination(%q) error = %v", name, err)
	}
	return d
}

func stay(userID, destinationID string) core.BookingInput {
	start := time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	return core.BookingInput{
		UserID:        userID,
		DestinationID: destinationID,
		StartDate:     start,
		EndDate:       start.AddDate(0, 0, 7),
		Guests:        2,
		TotalPrice:    decimal.NewFromInt(3009),
	}
}
