// Package cli is the interactive timeline-rail client.
//
// NewApp wires the configuration, the local SQLite database holding the
// session, the API client and the chosen storage backend behind a
// store.Store. Run starts the REPL and blocks until the user exits.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/railohail/timeline-rail/internal/client/client"
	"github.com/railohail/timeline-rail/internal/client/config"
	"github.com/railohail/timeline-rail/internal/client/localdb"
	"github.com/railohail/timeline-rail/internal/client/repositories/metadata"
	"github.com/railohail/timeline-rail/internal/client/storage"
	"github.com/railohail/timeline-rail/internal/client/store"
	"github.com/railohail/timeline-rail/internal/filex"
	"github.com/railohail/timeline-rail/internal/logging"
)

// localUserID owns timelines of the local backends when nobody is logged in.
const localUserID = "local"

var errNotLoggedIn = errors.New("not logged in, use 'login' or 'register'")

type App struct {
	config  *config.Config
	logger  logging.Logger
	api     *client.APIClient
	db      *sql.DB
	meta    metadata.Repository
	storage storage.Storage
	store   *store.Store
	session metadata.Session
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local database, restores the saved session and builds
// the storage backend named in c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := localdb.Open(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "err", err)
		return nil, err
	}

	meta := metadata.NewSQLiteRepository(db)
	session, err := metadata.LoadSession(ctx, meta)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	api := client.New(c.ServerURL, c.RequestTimeout)
	api.SetToken(session.Token)

	st, err := storage.New(ctx, storage.Options{
		Backend:      storage.Backend(c.StorageBackend),
		Client:       api,
		DB:           db,
		DatabasePath: c.DatabasePath,
		KVDir:        c.KVDir,
		Logger:       logger.With("module", "storage"),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s storage: %w", c.StorageBackend, err)
	}

	return &App{
		config:  c,
		logger:  logger,
		api:     api,
		db:      db,
		meta:    meta,
		storage: st,
		store:   store.New(st, logger.With("module", "store"), store.WithDeleteTimeout(c.DeleteTimeout)),
		session: session,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run greets the user, opens the last session's timeline if there is one
// and hands over to the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to timeline-rail (type 'help' for commands)")
	if err := a.refreshSession(ctx); err != nil {
		a.logger.Warn(ctx, "could not refresh session", "err", err)
	}
	if a.isLoggedIn() {
		if err := a.ensureReady(ctx); err != nil {
			a.logger.Warn(ctx, "could not open timeline", "err", err)
		}
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

// refreshSession swaps a saved token for a fresh one. A rejected token ends
// the session, an unreachable server keeps it.
func (a *App) refreshSession(ctx context.Context) error {
	if !a.remote() || a.session.Token == "" {
		return nil
	}
	tok, err := a.api.Refresh(ctx)
	switch {
	case err == nil:
		a.session.Token = tok
		return metadata.SaveSession(ctx, a.meta, a.session)
	case client.IsUnavailable(err):
		a.logger.Warn(ctx, "server unavailable, keeping saved session")
		return nil
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, client.ErrForbidden):
		printlnFn("Session expired, please log in again")
		return a.Logout(ctx)
	default:
		return err
	}
}

func (a *App) Close() error {
	return errors.Join(a.storage.Close(), a.db.Close())
}

func (a *App) remote() bool {
	b := storage.Backend(a.config.StorageBackend)
	return b == "" || b == storage.BackendRemote
}

// isLoggedIn is true with a saved token, and always for local backends.
func (a *App) isLoggedIn() bool {
	return a.session.Token != "" || !a.remote()
}

func (a *App) userID() string {
	if a.session.UserID != "" {
		return a.session.UserID
	}
	return localUserID
}

// ensureReady initializes the store on first use.
func (a *App) ensureReady(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if a.store.State() == store.Ready {
		return nil
	}
	return a.store.Initialize(ctx, a.userID())
}

func (a *App) status() string {
	s := a.session.Username
	if t := a.store.Current(); t != nil {
		if s != "" {
			s += " "
		}
		s += t.Name
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
