package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tum-registrar/internal/repository"
	"github.com/noah-isme/tum-registrar/internal/service"
	"github.com/noah-isme/tum-registrar/pkg/cache"
	"github.com/noah-isme/tum-registrar/pkg/config"
	"github.com/noah-isme/tum-registrar/pkg/database"
	"github.com/noah-isme/tum-registrar/pkg/jobs"
	"github.com/noah-isme/tum-registrar/pkg/storage"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *service.MetricsService
	registry *service.RegistryService
	exports  *service.ExportService
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, metrics: service.NewMetricsService()}

	repo, err := a.openStateRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	state := service.NewStateService(repo, service.StateOptions{
		Driver:       cfg.State.Driver,
		LegacyFormat: cfg.State.LegacyFormat,
	}, a.metrics, logger.Named("state"))

	a.registry = service.NewRegistryService(nil, state, validator.New(), a.metrics, logger.Named("registry"))
	loc := cfg.Location()
	a.registry.SetClock(func() time.Time { return time.Now().In(loc) })
	if res := a.registry.Load(ctx); res.Failure != nil {
		logger.Warn("starting with an empty registry", zap.Error(res.Failure))
	}

	store, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.exports = service.NewExportService(a.registry, store, logger.Named("export"), nil, nil, nil)
	return a, nil
}

func (a *app) openStateRepository(ctx context.Context) (service.StateRepository, error) {
	switch a.cfg.State.Driver {
	case "", config.StateDriverFile:
		a.cfg.State.Driver = config.StateDriverFile
		return repository.NewFileStateRepository(a.cfg.State.File), nil
	case config.StateDriverPostgres:
		db, err := database.NewPostgres(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		repo := repository.NewSQLStateRepository(db)
		return repo, repo.EnsureSchema(ctx)
	case config.StateDriverSQLite:
		db, err := database.NewSQLite(a.cfg.State.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		repo := repository.NewSQLStateRepository(db)
		return repo, repo.EnsureSchema(ctx)
	case config.StateDriverRedis:
		client, err := cache.NewRedis(ctx, a.cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewRedisStateRepository(client, a.cfg.State.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown STATE_DRIVER %q", a.cfg.State.Driver)
	}
}

// startAutosave runs background saves when enabled. The returned func stops them.
func (a *app) startAutosave(ctx context.Context) func() {
	if !a.cfg.Autosave.Enabled {
		return func() {}
	}
	a.registry.StartAutosave(ctx, jobsConfig(a.cfg.Autosave, a.logger.Named("autosave")))
	return a.registry.StopAutosave
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func jobsConfig(cfg config.AutosaveConfig, logger *zap.Logger) jobs.QueueConfig {
	return jobs.QueueConfig{
		Workers:    1,
		BufferSize: 1,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	}
}
