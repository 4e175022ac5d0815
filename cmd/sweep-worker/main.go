package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintra/internal/config"
	"fintra/internal/core"
	"fintra/internal/log"
	"fintra/internal/storage"
)

// sweep-worker periodically marks due pending payments overdue across all
// owners. The read path also sweeps lazily per owner, so this worker only
// keeps statuses fresh for owners who have not looked at their data lately.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.New(log.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Overdue sweep configured",
		"interval", cfg.SweepInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	sweep := func(now time.Time) {
		swept, err := repo.SweepAllOverdue(ctx, core.DateOf(now))
		if err != nil {
			logger.Error("Sweep failed", log.FieldError, err)
			return
		}
		if swept > 0 {
			logger.Info("Marked payments overdue", "count", swept)
		}
	}

	// Initial sweep on startup, then on every tick.
	sweep(time.Now())

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				sweep(now)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig.String())
	cancel()
}
