// Package main is the entry point for the brandgate API server.
//
// It loads configuration, opens the flat-file stores, wires the domain
// services into the HTTP chassis, and serves until SIGINT/SIGTERM triggers a
// graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"brandgate/internal/api/handlers"
	"brandgate/internal/billing"
	"brandgate/internal/config"
	"brandgate/internal/core"
	"brandgate/internal/external"
	"brandgate/internal/trial"
	"brandgate/internal/usage"
)

// shutdownGrace is how long in-flight requests get to finish on shutdown.
const shutdownGrace = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("brandgate API starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"data_dir", cfg.Storage.DataDir,
	)

	// Flat-file stores.
	trialStore, err := trial.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening trial store: %w", err)
	}
	usageStore, err := usage.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening usage store: %w", err)
	}

	// Domain services.
	ledger := trial.NewLedger(trialStore, logger)
	meter := usage.NewMeter(usageStore, usage.NewGzipArchiver(cfg.Storage.DataDir), logger)
	resolver := billing.NewResolver(billing.NewStaticRegistry(), cfg.License, cfg.IsProduction())
	stripeClient := external.NewStripeClient(external.StripeClientConfig{
		SecretKey: cfg.Billing.StripeSecretKey.Unmask(),
		Logger:    logger,
	})

	// HTTP chassis.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	authHandler := handlers.NewAuthHandler(ledger, srv.Validator, logger)
	trialHandler := handlers.NewTrialHandler(ledger)
	billingHandler := handlers.NewBillingHandler(stripeClient, cfg, srv.Validator, logger)
	usageHandler := handlers.NewUsageHandler(meter)
	featureHandler := handlers.NewFeatureHandler(resolver, ledger, meter, srv.Validator, logger)
	webhookHandler := handlers.NewStripeWebhookHandler(
		&external.StripeVerifier{},
		cfg.Billing.StripeWebhookSecret.Unmask(),
		logger,
	)

	srv.APIRouteRegistrars = append(srv.APIRouteRegistrars,
		func(r chi.Router) { authHandler.RegisterRoutes(r) },
		func(r chi.Router) { trialHandler.RegisterRoutes(r) },
		func(r chi.Router) { billingHandler.RegisterRoutes(r) },
		func(r chi.Router) { usageHandler.RegisterRoutes(r) },
		func(r chi.Router) { featureHandler.RegisterRoutes(r) },
		func(r chi.Router) { webhookHandler.RegisterRoutes(r) },
	)
	srv.MountRoutes()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// newLogger builds the application-wide slog logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
