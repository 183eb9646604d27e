// Package storage persists client timelines. Three backends share the
// Storage interface: the REST API (default), an embedded SQLite database
// and a Badger key-value store. The backend is chosen once by New.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/railohail/timeline-rail/internal/client/client"
	"github.com/railohail/timeline-rail/internal/client/localdb"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/filex"
	"github.com/railohail/timeline-rail/internal/logging"
)

// Storage is implemented by every backend. SaveTimeline may rewrite the ids
// of t and its children to the ones the backend assigned.
type Storage interface {
	Init(ctx context.Context) error
	SaveTimeline(ctx context.Context, t *models.TimelineData) error
	LoadTimeline(ctx context.Context, id string) (*models.TimelineData, error)
	DeleteTimeline(ctx context.Context, id string) error
	ListTimelines(ctx context.Context) ([]string, error)
	TimelineExists(ctx context.Context, id string) (bool, error)

	// SaveImage stores a data URL and returns the filename it is kept
	// under, which the remote backend may change.
	SaveImage(ctx context.Context, filename, dataURL string) (string, error)
	LoadImage(ctx context.Context, filename string) (string, error)
	DeleteImage(ctx context.Context, filename string) error

	ExportTimeline(ctx context.Context, id string) ([]byte, error)
	// ImportTimeline stores a document produced by ExportTimeline (or a
	// bare timeline) as a new timeline and returns its id.
	ImportTimeline(ctx context.Context, data []byte) (string, error)

	Info(ctx context.Context) (*models.StorageInfo, error)
	Close() error
}

type Backend string

const (
	BackendRemote Backend = "remote"
	BackendSQLite Backend = "sqlite"
	BackendKV     Backend = "kv"
)

type Options struct {
	Backend Backend

	// remote
	Client *client.APIClient

	// sqlite: DB is used when set, otherwise DatabasePath is opened.
	DB           *sql.DB
	DatabasePath string

	// kv
	KVDir string

	Logger logging.Logger
}

// New builds and initialises the backend named by opts.Backend. An empty
// backend means remote.
func New(ctx context.Context, opts Options) (Storage, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop{}
	}

	var s Storage
	switch opts.Backend {
	case BackendRemote, "":
		if opts.Client == nil {
			return nil, fmt.Errorf("remote storage needs an API client")
		}
		s = NewRemote(opts.Client, logger)

	case BackendSQLite:
		db := opts.DB
		if db == nil {
			if err := filex.EnsureParentDir(opts.DatabasePath); err != nil {
				return nil, err
			}
			var err error
			if db, err = localdb.Open(ctx, opts.DatabasePath); err != nil {
				return nil, err
			}
		}
		s = NewSQLite(db, logger)

	case BackendKV:
		if err := filex.EnsureDir(opts.KVDir); err != nil {
			return nil, err
		}
		kv, err := OpenKV(opts.KVDir, logger)
		if err != nil {
			return nil, err
		}
		s = kv

	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	if err := s.Init(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// now is a seam for tests.
var now = time.Now
