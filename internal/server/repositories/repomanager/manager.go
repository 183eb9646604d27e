package repomanager

import (
	"context"
	"database/sql"

	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/server/repositories/events"
	"github.com/railohail/timeline-rail/internal/server/repositories/highlights"
	"github.com/railohail/timeline-rail/internal/server/repositories/images"
	"github.com/railohail/timeline-rail/internal/server/repositories/timelines"
	"github.com/railohail/timeline-rail/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to either the pool or a
// transaction, so services can choose per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Timelines(db dbx.DBTX) timelines.Repository
	Events(db dbx.DBTX) events.Repository
	Highlights(db dbx.DBTX) highlights.Repository
	Images(db dbx.DBTX) images.Repository
}
