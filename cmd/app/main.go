// @title       Dispatch API
// @version     1.0
// @description Assigns the nearest free rider of a company to a delivery request.
// @BasePath    /api
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/locator"
	"dispatch/internal/adapters/out/opencellid"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/redis"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"
)

const serviceName = "dispatch"

func main() {
	boot := logger.New(logger.Options{ServiceName: serviceName})

	cfg, err := cmd.LoadConfig(os.Args[1:])
	if err != nil {
		boot.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "dispatch stopped", err)
		os.Exit(1)
	}
}

func run(cfg cmd.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DB.Options())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { err = multierr.Append(err, postgres.Close(db)) }()

	if cfg.MigrateOnly || cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, db, cfg.DB.Driver); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logg.Info(ctx, "migrations applied")
	}
	if cfg.MigrateOnly {
		return nil
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
	} else {
		logg.Warn(ctx, "REDIS_URL not set, rider location snapshots are disabled", nil)
	}

	m := metrics.New()
	resolver, err := newResolver(ctx, cfg, logg, m)
	if err != nil {
		return err
	}

	root, err := cmd.NewCompositionRoot(cfg, db, cmd.Dependencies{
		Resolver: resolver,
		Redis:    redisClient,
		Metrics:  m,
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	jobManager, err := root.CreateJobManager()
	if err != nil {
		return err
	}
	if err := jobManager.StartAll(); err != nil {
		return fmt.Errorf("start jobs: %w", err)
	}
	defer jobManager.StopAll()
	logg.Info(logg.WithField(ctx, "jobs", jobManager.Names()), "jobs started")

	return serve(ctx, cfg, logg, root)
}

func newResolver(ctx context.Context, cfg cmd.Config, logg *logger.Logger, m *metrics.Metrics) (*locator.Resolver, error) {
	center, err := kernel.NewLocation(cfg.Fallback.Latitude, cfg.Fallback.Longitude)
	if err != nil {
		return nil, fmt.Errorf("fallback center: %w", err)
	}

	// left nil without a key so the interface stays nil rather than holding a nil *Client
	var provider ports.LocationProvider
	if cfg.OpenCellID.APIKey != "" {
		client, err := opencellid.NewClient(cfg.OpenCellID.APIKey,
			opencellid.WithBaseURL(cfg.OpenCellID.BaseURL),
			opencellid.WithMCC(cfg.OpenCellID.MCC),
			opencellid.WithTimeout(cfg.OpenCellID.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("opencellid client: %w", err)
		}
		provider = client
	} else {
		logg.Warn(ctx, "OPENCELLID_API_KEY not set, every rider location will be simulated", nil)
	}

	return locator.NewResolver(locator.Options{
		Provider: provider,
		Center:   center,
		Jitter:   cfg.Fallback.JitterDegrees,
		Metrics:  m,
		Logger:   logg,
	})
}

func serve(ctx context.Context, cfg cmd.Config, logg *logger.Logger, root cmd.CompositionRoot) error {
	e := root.CreateRouter()
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.App.HTTPPort)

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting http server")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownWait)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
