package timelines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/server/models"
)

const columns = "id, user_id, name, settings, created_at, updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimeline(row rowScanner) (*models.Timeline, error) {
	t := &models.Timeline{}
	var settings []byte
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &settings, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Settings = settings
	return t, nil
}

func settingsArg(s []byte) string {
	if len(s) == 0 {
		return string(models.EmptySettings)
	}
	return string(s)
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Timeline) (*models.Timeline, error) {
	query :=
		`INSERT INTO timelines (user_id, name, settings)
		 VALUES ($1, $2, $3)
		 RETURNING ` + columns

	created, err := scanTimeline(r.db.QueryRowContext(ctx, query, t.UserID, t.Name, settingsArg(t.Settings)))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Timeline, error) {
	query :=
		`SELECT ` + columns + ` FROM timelines
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Timeline, 0)
	for rows.Next() {
		t, err := scanTimeline(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, userID string) (*models.Timeline, error) {
	query :=
		`SELECT ` + columns + ` FROM timelines
		 WHERE id = $1 AND user_id = $2`

	return r.one(r.db.QueryRowContext(ctx, query, id, userID))
}

// Update applies the fields present in patch. An empty patch returns
// common.ErrNothingChanged without touching the row.
func (r *PostgresRepository) Update(ctx context.Context, id, userID string, patch models.TimelinePatch) (*models.Timeline, error) {
	var b dbx.UpdateBuilder
	if patch.Name.Set {
		b.Set("name", patch.Name.Arg())
	}
	if patch.Settings.Set {
		if patch.Settings.Null {
			b.Set("settings", string(models.EmptySettings))
		} else {
			b.Set("settings", settingsArg(patch.Settings.Value))
		}
	}
	if b.Empty() {
		return nil, common.ErrNothingChanged
	}

	query, args := b.SQL("timelines",
		[]dbx.Where{{Column: "id", Value: id}, {Column: "user_id", Value: userID}},
		columns)

	return r.one(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) (*models.Timeline, error) {
	query :=
		`DELETE FROM timelines
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + columns

	return r.one(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) one(row *sql.Row) (*models.Timeline, error) {
	t, err := scanTimeline(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}
