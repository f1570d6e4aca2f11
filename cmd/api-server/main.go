package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/pickup-appointment-scheduling/internal/api"
	"github.com/hackgods/pickup-appointment-scheduling/internal/appointment"
	"github.com/hackgods/pickup-appointment-scheduling/internal/clock"
	"github.com/hackgods/pickup-appointment-scheduling/internal/config"
	"github.com/hackgods/pickup-appointment-scheduling/internal/docstore"
	"github.com/hackgods/pickup-appointment-scheduling/internal/lock"
	"github.com/hackgods/pickup-appointment-scheduling/internal/logging"
	"github.com/hackgods/pickup-appointment-scheduling/internal/notify"
	"github.com/hackgods/pickup-appointment-scheduling/internal/records"
)

var version = "dev"

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

	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("docstore", cfg.DocstoreBackend),
		zap.String("notify", cfg.NotifyBackend),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := docstore.Open(rootCtx, cfg, log)
	if err != nil {
		log.Fatal("docstore open error", zap.Error(err))
	}
	defer backend.Close()

	sink, closeSink, err := openSink(cfg, log)
	if err != nil {
		log.Fatal("notifier init error", zap.Error(err))
	}
	defer closeSink()

	clk := clock.NewReal()
	store := records.NewSheetStore(backend.Store, cfg, log)
	locker := lock.NewMemory(cfg.LockTimeout, clk)
	notifier := notify.New(sink, cfg.NotifyCC, clk)
	svc := appointment.NewService(store, locker, notifier, cfg, clk, log)

	auth, err := api.NewAdminAuth(cfg.AdminPassword, cfg.AdminTokenSecret, cfg.AdminTokenTTL, clk)
	if err != nil {
		log.Fatal("admin auth init error", zap.Error(err))
	}

	router := api.NewRouter(api.RouterConfig{
		Service:            svc,
		Auth:               auth,
		Log:                log,
		PgPool:             backend.PgPool,
		Redis:              backend.Redis,
		Env:                cfg.Env,
		Version:            version,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openSink(cfg config.Config, log *zap.Logger) (notify.Sink, func(), error) {
	if cfg.NotifyBackend != config.NotifyAMQP {
		return notify.NewLogSink(log), func() {}, nil
	}
	pub, err := notify.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing notices to RabbitMQ", zap.String("exchange", cfg.AMQPExchange))
	return pub, func() {
		if err := pub.Close(); err != nil {
			log.Warn("error closing rabbitmq publisher", zap.Error(err))
		}
	}, nil
}
