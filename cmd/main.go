// Command foresight computes team and player Elo ratings from box scores.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/foresight/internal/app"
	"github.com/okian/foresight/internal/config"
	"github.com/okian/foresight/pkg/logger"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailed      = 1
	exitConfig      = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return exitConfig
	}

	// Console plus the append-only run log.
	if err := logger.Init(logger.WithFile(app.LogPath(cfg))); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return exitFailed
	}
	defer func() {
		_ = logger.Sync()
		_ = logger.Close()
	}()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	log := logger.Get()
	rep, err := app.New(app.WithConfig(cfg), app.WithLogger(log)).Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		log.Warn(ctx, "run interrupted, partial results saved",
			logger.Int("processed", rep.Summary.Processed),
			logger.Int("games", rep.Summary.Games),
		)
		return exitInterrupted
	case err != nil:
		log.Error(ctx, "rating run failed", logger.Error(err))
		return exitFailed
	}

	log.Info(ctx, "elo calculation complete", logger.String("runID", rep.RunID.String()))
	return exitOK
}
