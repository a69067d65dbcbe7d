package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/cache"
	"clinic-booking/internal/config"
	"clinic-booking/internal/http-server/middleware/ratelimit"
	"clinic-booking/internal/lock"
	"clinic-booking/internal/metrics"
	"clinic-booking/internal/notify"
	svc "clinic-booking/internal/service"
	"clinic-booking/internal/storage/memory"
	"clinic-booking/internal/storage/postgres"
	slogpretty "clinic-booking/pkg/logger/handlers/slogpretty"
	"clinic-booking/pkg/logger/sl"

	"golang.org/x/time/rate"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type storage interface {
	svc.Store
	io.Closer
}

type locker interface {
	lock.Locker
	io.Closer
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting booking API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		log.Error("Failed to load booking timezone", slog.String("timezone", cfg.Booking.Timezone), sl.Err(err))
		os.Exit(1)
	}

	store, err := setupStorage(log, cfg)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	locks, err := setupLocker(cfg)
	if err != nil {
		log.Error("Failed to init lock", sl.Err(err))
		os.Exit(1)
	}

	categories := cache.NewCategoryCache(cfg.Cache.CategoryTTL, cfg.Cache.CleanupInterval)

	service := svc.NewService(store, locks, categories, svc.Options{
		Location:         loc,
		LockTTL:          cfg.Booking.LockTTL,
		LockWait:         cfg.Booking.LockWait,
		FreeWindowMonths: cfg.Booking.FreeWindowMonths,
	})

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.SMTP.Enabled {
		notifier = notify.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	}

	router := newRouter(log, deps{
		service:  service,
		resolver: auth.NewResolver(cfg.Auth.JWTSecret),
		limiter: ratelimit.New(ratelimit.Config{
			Rate:  rate.Limit(cfg.RateLimit.RPS),
			Burst: cfg.RateLimit.Burst,
		}),
		metrics:  metrics.New("booking"),
		notifier: notifier,
	})

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if err := store.Close(); err != nil {
		log.Error("Failed to close storage", sl.Err(err))
	} else {
		log.Info("Storage closed")
	}

	if err := locks.Close(); err != nil {
		log.Error("Failed to close locker", sl.Err(err))
	} else {
		log.Info("Locker closed")
	}

	log.Info("Shutdown finished, server stopped")

}

func setupStorage(log *slog.Logger, cfg *config.Config) (storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("Using in-memory storage, data is lost on restart")
		s := memory.New()
		if cfg.Env == envLocal {
			seedDemo(s)
		}
		return s, nil
	default:
		s, err := postgres.New(cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func setupLocker(cfg *config.Config) (locker, error) {
	if !cfg.Redis.Enabled {
		return lock.NewMemoryLock(), nil
	}

	l, err := lock.NewRedisLock(cfg.Redis.Addr)
	if err != nil {
		return nil, err
	}

	return l, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
