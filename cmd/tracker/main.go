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

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/employee-tracker/internal/app"
	"github.com/noah-isme/employee-tracker/internal/auth"
	"github.com/noah-isme/employee-tracker/internal/locations"
	"github.com/noah-isme/employee-tracker/internal/observability"
	"github.com/noah-isme/employee-tracker/internal/platform/cache"
	"github.com/noah-isme/employee-tracker/internal/platform/db"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger, os.Args[1:]); err != nil {
		logger.Error("tracker exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) error {
	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer dbpool.Close()

	if len(args) > 0 {
		switch args[0] {
		case "migrate":
			return db.Migrate(ctx, dbpool)
		default:
			return fmt.Errorf("unknown command %q", args[0])
		}
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, dbpool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	metrics := observability.NewMetrics()
	readiness := map[string]app.ReadinessCheck{"postgres": dbpool.Ping}

	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("token cache disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Warn("redis close", slog.Any("error", err))
				}
			}()
			readiness["redis"] = cache.Check(redisClient)
		}
	}

	authService := auth.NewService(auth.NewRepository(dbpool), auth.ServiceConfig{
		BcryptCost: cfg.BcryptCost,
		Cache:      auth.NewTokenCache(redisClient, cfg.TokenCacheTTL).WithObserver(metrics),
		Logger:     logger,
	})
	authHandler := auth.NewHandler(logger, authService, metrics)

	locationService := locations.NewService(locations.NewRepository(dbpool), nil)
	locationHandler := locations.NewHandler(logger, locationService, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		AuthMiddleware:   auth.Middleware{Resolver: authService, Logger: logger},
		LocationsHandler: locationHandler,
		Metrics:          metrics,
		Readiness:        readiness,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
