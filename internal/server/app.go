// Package server wires configuration, the database, the services and the
// REST API together and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/blobstore"
	"github.com/railohail/timeline-rail/internal/server/config"
	"github.com/railohail/timeline-rail/internal/server/httpapi"
	"github.com/railohail/timeline-rail/internal/server/repositories/repomanager"
	"github.com/railohail/timeline-rail/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	services httpapi.Services
}

// openDB opens a pgx-backed pool and checks that the server is reachable.
func openDB(ctx context.Context, c *config.Config) (*sql.DB, error) {
	pgcfg, err := pgx.ParseConfig(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pgcfg.ConnectTimeout = c.DBConnectTimeout

	db := stdlib.OpenDB(*pgcfg)
	db.SetMaxOpenConns(c.DBMaxOpenConns)
	db.SetConnMaxIdleTime(c.DBMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, c.DBConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// newBlobStore returns nil when images are kept inline in the database.
func newBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	if c.ImageBackend != config.ImageBackendS3 {
		return nil, nil
	}
	s, err := blobstore.NewS3Store(ctx, c)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	db, err := openDB(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		services: newServices(db, m, blobs, c, logger),
	}, nil
}

func newServices(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, c *config.Config, logger logging.Logger) httpapi.Services {
	images := services.NewImageService(db, m, blobs, c, logger)
	timelines := services.NewTimelineService(db, m, images, logger)
	return httpapi.Services{
		Users:     services.NewUserService(db, m, c),
		Timelines: timelines,
		Images:    images,
		Transfer:  services.NewTransferService(db, m, timelines, images, logger),
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config, app.logger, app.services)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until the server stops, either on a signal or because it failed.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
