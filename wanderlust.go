// Package wanderlust wires the travel booking services together and hands
// them to an HTTP adapter.
package wanderlust

import (
	"context"
	"fmt"
	"time"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/form"
	"github.com/lborres/wanderlust/metrics"
	"github.com/lborres/wanderlust/pkg/cache"
	"github.com/lborres/wanderlust/pkg/crypto"
	"github.com/lborres/wanderlust/pkg/logger"
	"github.com/lborres/wanderlust/seed"
	"github.com/lborres/wanderlust/services"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	LocalStorage   = core.LocalStorage
	Cache          = core.Cache

	PasswordHandler = crypto.PasswordHandler
	Submitter       = form.Submitter
	Logger          = logger.Logger
)

// structs
type (
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
)

type (
	User        = core.User
	Profile     = core.Profile
	Session     = core.Session
	SessionData = core.SessionData
	Destination = core.Destination
	Booking     = core.Booking
	CacheStats  = core.CacheStats
)

const (
	defaultBasePath  = "/api"
	defaultSecretLen = 32

	defaultKYCDelay     = 2 * time.Second
	defaultPaymentDelay = 3 * time.Second
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = cache.NewInMemoryCache
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
)

var (
	ErrAccountExists      = core.ErrAccountExists
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrNoActiveSession    = core.ErrNoActiveSession
	ErrForbidden          = core.ErrForbidden
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrSessionNotFound   = core.ErrSessionNotFound
	ErrSessionExpired    = core.ErrSessionExpired
)

var (
	ErrDestinationNotFound     = core.ErrDestinationNotFound
	ErrBookingNotFound         = core.ErrBookingNotFound
	ErrInvalidStatusTransition = core.ErrInvalidStatusTransition
	ErrSubmissionFailed        = core.ErrSubmissionFailed
)

var (
	ErrDBAdapterRequired   = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
	ErrSecretRequired      = core.ErrSecretRequired
	ErrSecretTooShort      = core.ErrSecretTooShort
)

// HTTPAdapter binds the application's endpoints to a web framework.
type HTTPAdapter interface {
	RegisterRoutes(app *App) error
}

type Config struct {
	Database StorageAdapter
	HTTP     HTTPAdapter

	Secret   string
	BasePath string

	SessionConfig  *SessionConfig
	CacheAdapter   core.CacheWithStats
	DisableCache   bool
	PasswordHasher PasswordHandler

	// KYCGateway and PaymentGateway default to simulated providers that
	// succeed after a short delay.
	KYCGateway     Submitter
	PaymentGateway Submitter
	SubmitTimeout  time.Duration

	Metrics  *metrics.Metrics
	Logger   Logger
	SeedDemo bool
}

// App is everything an HTTP adapter needs to serve the API.
type App struct {
	Directory *services.Directory
	Sessions  *services.SessionManager
	Auth      *services.AuthService
	Admin     *services.AdminService
	Ledger    *services.Ledger
	Endpoints *services.EndpointRegistry

	KYC      Submitter
	Payments Submitter

	Metrics  *metrics.Metrics
	Log      Logger
	BasePath string
}

func New(ctx context.Context, config Config) (*App, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	log := config.Logger
	if log == nil {
		log = logger.Discard()
	}

	m := config.Metrics
	if m == nil {
		m = metrics.New()
	}

	var sessionCache core.Cache
	if !config.DisableCache {
		c := config.CacheAdapter
		if c == nil {
			c = NewInMemoryCache(CacheConfig{TTL: 5 * time.Minute, MaxSize: 500})
		}
		m.WatchCache(c)
		sessionCache = c
	}

	sessionConfig := SessionConfig{MaxAge: 24 * time.Hour}
	if config.SessionConfig != nil {
		sessionConfig = *config.SessionConfig
	}
	sessionConfig.Secret = config.Secret

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	kyc := config.KYCGateway
	if kyc == nil {
		kyc = &form.SimulatedGateway{Delay: defaultKYCDelay}
	}
	payments := config.PaymentGateway
	if payments == nil {
		payments = &form.SimulatedGateway{Delay: defaultPaymentDelay}
	}

	dir := services.NewDirectory(config.Database, passwordHasher, log)
	sessions := services.NewSessionManager(sessionConfig, config.Database, sessionCache)
	ledger := services.NewLedger(config.Database, config.Database, m, log)

	app := &App{
		Directory: dir,
		Sessions:  sessions,
		Auth:      services.NewAuthService(dir, sessions, m, log),
		Admin:     services.NewAdminService(dir, sessions, ledger, log),
		Ledger:    ledger,
		Endpoints: services.NewEndpointRegistry(),
		KYC:       form.Instrument(form.WithTimeout(kyc, config.SubmitTimeout), "kyc", m),
		Payments:  form.Instrument(form.WithTimeout(payments, config.SubmitTimeout), "payment", m),
		Metrics:   m,
		Log:       log,
		BasePath:  basePath,
	}

	if config.SeedDemo {
		if err := seed.Demo(ctx, dir, ledger, log); err != nil {
			return nil, err
		}
	}

	if err := config.HTTP.RegisterRoutes(app); err != nil {
		return nil, err
	}

	return app, nil
}
