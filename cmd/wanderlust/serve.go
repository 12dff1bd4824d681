package main

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/spf13/cobra"

	"github.com/lborres/wanderlust"
	fiberadapter "github.com/lborres/wanderlust/adapters/fiber"
	"github.com/lborres/wanderlust/form"
	"github.com/lborres/wanderlust/pkg/cache"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = 10 * time.Minute
)

func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the booking API server",
		Long:  "Serve the booking API under the configured base path and Prometheus metrics on /metrics.",
		RunE:  runE(runServe),
	}
	cmd.Flags().Bool("access-log", false, "Log every request")
	return cmd
}

func accessLogFormat() string {
	format := []string{
		// Timestamp & Request ID
		"${time}|${requestid}",

		// Response metadata
		"${status}|${latency}",

		// Client info
		"${ip}:${port}",

		// Transfer size
		"${bytesReceived}|${bytesSent}",

		// Request details
		"${method}|${path}|${queryParams}",

		// errors
		"${error}",
	}
	return strings.Join(format, "|") + "\n"
}

func runServe(cmd *cobra.Command, e *env, _ []string) error {
	if err := e.cfg.ValidateServer(); err != nil {
		return err
	}
	ctx := cmd.Context()

	app := fiber.New()
	if accessLog, _ := cmd.Flags().GetBool("access-log"); accessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     accessLogFormat(),
			TimeFormat: "2006/01/02 15:04:05",
			TimeZone:   "Local",
		}))
	}

	session := e.cfg.Session()
	svc, err := wanderlust.New(ctx, wanderlust.Config{
		Database:       e.db,
		HTTP:           fiberadapter.New(app),
		Secret:         e.cfg.Secret,
		BasePath:       e.cfg.BasePath,
		SessionConfig:  &session,
		CacheAdapter:   cache.NewInMemoryCache(e.cfg.Cache()),
		PasswordHasher: newHasher(),
		KYCGateway:     &form.SimulatedGateway{Delay: e.cfg.KYCSubmitDelay},
		PaymentGateway: &form.SimulatedGateway{Delay: e.cfg.PaymentDelay},
		SubmitTimeout:  e.cfg.SubmitTimeout,
		Logger:         e.log,
	})
	if err != nil {
		return err
	}

	go purgeSessions(ctx, svc)
	go func() {
		<-ctx.Done()
		e.log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			e.log.Error("shutdown failed", "error", err)
		}
	}()

	e.log.Info("listening", "addr", e.cfg.HTTPAddr, "base_path", svc.BasePath)
	return app.Listen(e.cfg.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true})
}

// purgeSessions drops expired sessions until ctx ends.
func purgeSessions(ctx context.Context, svc *wanderlust.App) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.Sessions.PurgeExpired(ctx)
			if err != nil {
				svc.Log.Warn("session purge failed", "error", err)
				continue
			}
			if n > 0 {
				svc.Log.Debug("purged expired sessions", "count", n)
			}
		}
	}
}
