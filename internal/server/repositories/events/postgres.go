package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/server/models"
)

const columns = "id, timeline_id, title, description, start_date, end_date, color, image_filename, link, track, created_at, updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(&e.ID, &e.TimelineID, &e.Title, &e.Description, &e.StartDate, &e.EndDate,
		&e.Color, &e.Image, &e.Link, &e.Track, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	query :=
		`INSERT INTO events (timeline_id, title, description, start_date, end_date, color, image_filename, link, track)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING ` + columns

	created, err := scanEvent(r.db.QueryRowContext(ctx, query,
		e.TimelineID, e.Title, e.Description, e.StartDate, e.EndDate, e.Color, e.Image, e.Link, e.Track))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListByTimeline(ctx context.Context, timelineID string) ([]models.Event, error) {
	query :=
		`SELECT ` + columns + ` FROM events
		 WHERE timeline_id = $1
		 ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, timelineID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, timelineID string) (*models.Event, error) {
	query :=
		`SELECT ` + columns + ` FROM events
		 WHERE id = $1 AND timeline_id = $2`

	return r.one(r.db.QueryRowContext(ctx, query, id, timelineID))
}

// Update writes only the fields present in patch. An empty patch returns
// common.ErrNothingChanged and leaves updated_at alone.
func (r *PostgresRepository) Update(ctx context.Context, id, timelineID string, patch models.EventPatch) (*models.Event, error) {
	var b dbx.UpdateBuilder
	if patch.Title.Set {
		b.Set("title", patch.Title.Arg())
	}
	if patch.Description.Set {
		b.Set("description", patch.Description.Arg())
	}
	if patch.StartDate.Set {
		b.Set("start_date", patch.StartDate.Arg())
	}
	if patch.EndDate.Set {
		b.Set("end_date", patch.EndDate.Arg())
	}
	if patch.Color.Set {
		b.Set("color", patch.Color.Arg())
	}
	if patch.Image.Set {
		b.Set("image_filename", patch.Image.Arg())
	}
	if patch.Link.Set {
		b.Set("link", patch.Link.Arg())
	}
	if patch.Track.Set {
		b.Set("track", patch.Track.Arg())
	}
	if b.Empty() {
		return nil, common.ErrNothingChanged
	}

	query, args := b.SQL("events",
		[]dbx.Where{{Column: "id", Value: id}, {Column: "timeline_id", Value: timelineID}},
		columns)

	return r.one(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) Delete(ctx context.Context, id, timelineID string) (*models.Event, error) {
	query :=
		`DELETE FROM events
		 WHERE id = $1 AND timeline_id = $2
		 RETURNING ` + columns

	return r.one(r.db.QueryRowContext(ctx, query, id, timelineID))
}

func (r *PostgresRepository) one(row *sql.Row) (*models.Event, error) {
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}
