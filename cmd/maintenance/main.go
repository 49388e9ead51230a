// Package main is the entry point for the brandgate maintenance job.
//
// The job is externally triggered (cron, systemd timer) and runs the
// low-frequency maintenance tasks that must not live in the request path.
// Today that is a single task: pruning the usage log to its 90-day
// retention window, archiving the dropped records alongside the live log.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"brandgate/internal/config"
	"brandgate/internal/usage"
)

// jobTimeout bounds a full maintenance run.
const jobTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("maintenance run starting", "data_dir", cfg.Storage.DataDir)

	store, err := usage.NewFileStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening usage store: %w", err)
	}

	meter := usage.NewMeter(store, usage.NewGzipArchiver(cfg.Storage.DataDir), logger)

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	// Prune swallows its own failures by contract; the job still exits 0 so
	// the scheduler does not alert on a transiently unreadable log.
	meter.Prune(ctx)

	logger.Info("maintenance run complete")
	return nil
}
