package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	pgxadapter "github.com/lborres/wanderlust/adapters/pgx"
	"github.com/lborres/wanderlust/adapters/sqlite"
	"github.com/lborres/wanderlust/client"
	"github.com/lborres/wanderlust/config"
	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/crypto"
	"github.com/lborres/wanderlust/pkg/logger"
	"github.com/lborres/wanderlust/seed"
	"github.com/lborres/wanderlust/services"
)

// newHasher is swapped for a cheaper hasher in tests.
var newHasher = func() crypto.PasswordHandler { return crypto.NewArgon2() }

// env is everything a command needs, built once per invocation.
type env struct {
	cfg    *config.Config
	log    logger.Logger
	db     core.StorageAdapter
	dir    *services.Directory
	ledger *services.Ledger
	local  *sqlite.LocalStorage

	closers []func()
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "wanderlust",
		Short:        "Wanderlust travel booking",
		Long:         "Browse destinations, book trips and verify your identity, or run the booking API server.",
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		ServeCmd(),
		SignInCmd(),
		SignUpCmd(),
		SignOutCmd(),
		WhoAmICmd(),
		ResetPasswordCmd(),
		UpdatePasswordCmd(),
		DestinationsCmd(),
		BookingsCmd(),
		BookCmd(),
		KYCCmd(),
	)

	return root
}

// runE builds the command environment, runs fn and releases the
// environment whatever the outcome.
func runE(fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		e, err := newEnv(cmd.Context(), verbose)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, e, args)
	}
}

// newEnv loads configuration and opens storage. Postgres is used when a
// DSN is configured, otherwise the local SQLite file holds everything so
// accounts and bookings survive between invocations.
func newEnv(ctx context.Context, verbose bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = string(logger.DebugLevel)
	}
	e := &env{cfg: cfg, log: logger.New(cfg.Logger())}

	if cfg.DatabaseDSN == "" {
		local, err := e.localStore(ctx)
		if err != nil {
			return nil, err
		}
		e.db = local.Store()
	} else {
		pool, err := pgxadapter.Connect(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		e.db = pgxadapter.New(pool)
		e.closers = append(e.closers, pool.Close)
	}

	e.dir = services.NewDirectory(e.db, newHasher(), e.log)
	e.ledger = services.NewLedger(e.db, e.db, nil, e.log)

	if cfg.SeedDemo {
		if err := seed.Demo(ctx, e.dir, e.ledger, e.log); err != nil {
			e.close()
			return nil, err
		}
	}
	return e, nil
}

// localStore opens the local SQLite file once per invocation.
func (e *env) localStore(ctx context.Context) (*sqlite.LocalStorage, error) {
	if e.local != nil {
		return e.local, nil
	}
	local, err := sqlite.Open(ctx, e.cfg.LocalStore)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	e.local = local
	e.closers = append(e.closers, func() { _ = local.Close() })
	return local, nil
}

// sessionStore opens the local identity store.
func (e *env) sessionStore(ctx context.Context) (*client.SessionStore, error) {
	local, err := e.localStore(ctx)
	if err != nil {
		return nil, err
	}
	return client.NewSessionStore(ctx, e.dir, local, e.log)
}

// signedIn returns the store and its identity, failing when nobody is
// signed in.
func (e *env) signedIn(ctx context.Context) (*client.SessionStore, *core.User, error) {
	store, err := e.sessionStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	user := store.CurrentIdentity()
	if user == nil {
		return nil, nil, errors.New("not signed in, run `wanderlust signin` first")
	}
	return store, user, nil
}
