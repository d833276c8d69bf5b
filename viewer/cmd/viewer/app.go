package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/Krimson/eeg-explorer/viewer/internal/config"
	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/logger"
	"github.com/Krimson/eeg-explorer/viewer/internal/overlay"
)

// app - то, что нужно каждой команде после запуска
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// setup загружает конфигурацию и логгер. Команды кроме serve
// пишут читаемые логи в stderr.
func setup(console bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if console {
		opts.Format = "console"
		opts.Output = os.Stderr
	}
	log, err := logger.Init(opts)
	if err != nil {
		return nil, config.Errorf("LOG_LEVEL/LOG_FORMAT", "%v", err)
	}

	return &app{cfg: cfg, log: log}, nil
}

// store - удаленное хранилище с открытым соединением
type store interface {
	dataset.RemoteStore
	io.Closer
}

// openStore подключает бэкенд. Для BackendNone хранилище nil.
func (a *app) openStore(ctx context.Context, backend string) (dataset.RemoteStore, func(), error) {
	noop := func() {}

	var s store
	switch backend {
	case config.BackendNone:
		return nil, noop, nil

	case config.BackendHub:
		hub := dataset.NewHubStore(dataset.HubOptions{
			Endpoint: a.cfg.HubEndpoint,
			Repo:     a.cfg.HubRepo,
			Revision: a.cfg.HubRevision,
			Token:    a.cfg.HubToken,
			MaxBytes: a.cfg.MaxObjectBytes,
			Client:   &http.Client{},
		})
		return hub, noop, nil

	case config.BackendRedis:
		client, err := dataset.NewRedisClient(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		s = dataset.NewRedisStore(client, a.cfg.RedisKeyPrefix, a.cfg.MaxObjectBytes)

	case config.BackendPostgres:
		pg, err := dataset.NewPostgresStoreFromDSN(ctx, a.cfg.PostgresDSN, a.cfg.MaxObjectBytes)
		if err != nil {
			return nil, noop, err
		}
		s = pg

	default:
		return nil, noop, config.Errorf("STORE_BACKEND", "unknown backend %q", backend)
	}

	closeFn := func() {
		if err := s.Close(); err != nil {
			a.log.Warn().Err(err).Str("store", s.Name()).Msg("failed to close store")
		}
	}
	return s, closeFn, nil
}

// newResolver создает резолвер датасетов над настроенным хранилищем
func (a *app) newResolver(ctx context.Context) (*dataset.Resolver, func(), error) {
	cache, err := dataset.NewLocalCache(a.cfg.DataDir)
	if err != nil {
		return nil, nil, config.Errorf("DATA_DIR", "%v", err)
	}

	remote, closeFn, err := a.openStore(ctx, a.cfg.StoreBackend)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", a.cfg.StoreBackend, err)
	}

	resolver := dataset.NewResolver(cache, remote, a.cfg.RemoteFetchTimeout, logger.Component("dataset"))
	a.log.Debug().
		Str("data_dir", cache.Dir()).
		Str("store", resolver.StoreName()).
		Msg("dataset resolver ready")
	return resolver, closeFn, nil
}

// loadLayout читает таблицу электродов и изображение мозга.
// Любая ошибка - ConfigurationError.
func (a *app) loadLayout() (*overlay.Layout, error) {
	table, err := overlay.LoadTable(a.cfg.ElectrodesFile)
	if err != nil {
		return nil, err
	}
	base, err := overlay.LoadBaseImage(a.cfg.BrainImagePath)
	if err != nil {
		return nil, err
	}
	return overlay.NewLayout(table, base)
}
