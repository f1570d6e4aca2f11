package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
	"github.com/hackgods/pickup-appointment-scheduling/internal/clock"
	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/docstore"
	"github.com/hackgods/pickup-appointment-scheduling/internal/lock"
	"github.com/hackgods/pickup-appointment-scheduling/internal/logging"
	"github.com/hackgods/pickup-appointment-scheduling/internal/records"
)

// prune-worker periodically drops appointments whose order has been picked
// up or whose row is incomplete, so the sheet stays clean even when nobody
// opens the admin view.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("prune-worker starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.WorkerInterval),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := docstore.Open(rootCtx, cfg, log)
	if err != nil {
		log.Fatal("docstore open error", zap.Error(err))
	}
	defer backend.Close()

	clk := clock.NewReal()
	store := records.NewSheetStore(backend.Store, cfg, log)
	svc := appointment.NewService(store, lock.NewMemory(cfg.LockTimeout, clk), nil, cfg, clk, log)

	// Run once at startup
	runOnce(rootCtx, svc, log)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("shutdown signal received, stopping prune worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, log)
		}
	}
}

func runOnce(ctx context.Context, svc *appointment.Service, log *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	start := time.Now()
	removed, err := svc.PruneAppointments(runCtx)
	if err != nil {
		log.Error("prune run error", zap.Error(err))
		return
	}
	log.Info("prune run complete",
		zap.Int("removed", removed),
		zap.Duration("took", time.Since(start)),
	)
}
