// Package app assembles the session: storage backend, store, remote
// client, theme store and command bus, all built from one Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todogroups/internal/command"
	"github.com/Makepad-fr/todogroups/internal/config"
	"github.com/Makepad-fr/todogroups/internal/logging"
	"github.com/Makepad-fr/todogroups/internal/metrics"
	"github.com/Makepad-fr/todogroups/internal/query"
	"github.com/Makepad-fr/todogroups/internal/remote"
	"github.com/Makepad-fr/todogroups/internal/storage"
	"github.com/Makepad-fr/todogroups/internal/storage/filestore"
	"github.com/Makepad-fr/todogroups/internal/storage/pgstore"
	"github.com/Makepad-fr/todogroups/internal/storage/s3store"
	"github.com/Makepad-fr/todogroups/internal/storage/sqlitestore"
	"github.com/Makepad-fr/todogroups/internal/store"
	"github.com/Makepad-fr/todogroups/internal/ui"
)

// App is one session's worth of wired components.
type App struct {
	Config  *config.Config
	Log     *log.Logger
	Metrics *metrics.Recorder
	Backend storage.Backend
	Store   *store.Store
	Query   *query.Query
	Remote  *remote.Client
	Themes  *ui.ThemeStore
	Bus     *command.Bus

	closers []io.Closer
}

// New opens the configured backend and wires everything on top of it.
// Logs go to cfg.Log.File when set, otherwise to logOut.
func New(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}, logOut)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: logger, Metrics: metrics.New(), closers: []io.Closer{logCloser}}

	backend, err := OpenBackend(ctx, cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Backend = backend
	a.closers = append(a.closers, backend)
	logger.Debug("storage opened", "driver", cfg.Storage.Driver, "key", cfg.Storage.Key)

	timeout, _ := cfg.Remote.TimeoutDuration()
	a.Store = store.New(backend,
		store.WithKey(cfg.Storage.Key),
		store.WithLogger(logger.WithPrefix("store")),
		store.WithMetrics(a.Metrics),
	)
	a.Query = query.New(a.Store)
	a.Remote = remote.New(
		remote.WithBaseURL(cfg.Remote.BaseURL),
		remote.WithTimeout(timeout),
		remote.WithLogger(logger.WithPrefix("remote")),
		remote.WithMetrics(a.Metrics),
	)
	a.Themes = ui.NewThemeStore(backend, cfg.UI.Theme)

	a.Bus = command.NewBus(logger.WithPrefix("command"), a.Metrics)
	svc := command.NewService(command.Deps{
		Store:  a.Store,
		Remote: a.Remote,
		Themes: a.Themes,
		IDs:    cfg.IDPolicy(),
		Logger: logger.WithPrefix("command"),
	})
	if err := svc.Register(a.Bus); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the backend and the log file, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenBackend builds the storage driver named by cfg.Driver.
func OpenBackend(ctx context.Context, cfg config.Storage) (storage.Backend, error) {
	switch cfg.Driver {
	case storage.DriverMemory:
		return storage.NewMemory(), nil
	case storage.DriverFile, "":
		return filestore.New(cfg.Dir)
	case storage.DriverSQLite:
		return sqlitestore.New(ctx, cfg.Path)
	case storage.DriverPostgres:
		return pgstore.New(ctx, cfg.DSN)
	case storage.DriverS3:
		return s3store.New(ctx, s3store.Config{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
