package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/storagekit/internal/catalog"
	"github.com/starford/storagekit/internal/itemservice"
	"github.com/starford/storagekit/internal/throttle"
	"github.com/starford/storagekit/pkg/storage"
	"github.com/starford/storagekit/pkg/storage/local"
)

// Workspace is an opened storage root together with its catalog and the
// item service built on both.
type Workspace struct {
	Config  *Config
	Logger  *slog.Logger
	Root    storage.Folder
	Catalog *catalog.DB
	Items   *itemservice.Service
}

// Open initializes the served root, opens the catalog and reconciles it
// with the disk. The caller must Close the workspace.
func Open(opts ...Option) (*Workspace, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))

	provider := local.NewProvider(cfg.Storage.Root)
	if _, err := provider.Initialize(); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	root, err := provider.Root()
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if dir := filepath.Dir(cfg.Catalog.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}
	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}

	if err := catalog.Sync(db, root, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	limits := throttle.New(throttle.Config{
		MaxTransfers:       cfg.Storage.Limits.MaxTransfers,
		IOLimitBytesPerSec: cfg.Storage.Limits.IOLimitBytesPerSec,
	})

	return &Workspace{
		Config:  cfg,
		Logger:  logger,
		Root:    root,
		Catalog: db,
		Items:   itemservice.NewService(root, db, itemservice.WithThrottle(limits)),
	}, nil
}

// Close releases the catalog.
func (w *Workspace) Close() error {
	return w.Catalog.Close()
}

// NewLocalService builds the app-data, temp and picker service described by
// the storage configuration.
func NewLocalService(cfg *Config, prompter local.Prompter) (*local.Service, error) {
	var opts []local.ServiceOption
	if cfg.Storage.AppDataPath != "" {
		opts = append(opts, local.WithAppDataPath(cfg.Storage.AppDataPath))
	}
	if cfg.Storage.TempPath != "" {
		opts = append(opts, local.WithTempPath(cfg.Storage.TempPath))
	}
	return local.NewService(cfg.Storage.AppName, prompter, opts...)
}
