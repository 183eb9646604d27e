package timelines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/timex"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func notFoundIfNone(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.WithMessage(common.ErrorNotFound, what+" not found")
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, t *models.TimelineData) error {
	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO timelines (id, name, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			settings = excluded.settings,
			updated_at = excluded.updated_at
	`, t.ID, t.Name, string(settings), formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the timeline row with empty child slices.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.TimelineData, error) {
	var (
		t                    models.TimelineData
		settings             string
		createdAt, updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, settings, created_at, updated_at FROM timelines WHERE id = ?`, id,
	).Scan(&t.ID, &t.Name, &settings, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.WithMessage(common.ErrorNotFound, "Timeline not found")
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal([]byte(settings), &t.Settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if t.CreatedAt, err = timex.ParseDate(createdAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if t.UpdatedAt, err = timex.ParseDate(updatedAt); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	t.Events = []models.Event{}
	t.Highlights = []models.Highlight{}
	return &t, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM timelines WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// List returns timeline ids, most recently updated first.
func (r *SQLiteRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM timelines ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

// Delete removes only the timeline row; callers clear children first.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timelines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return notFoundIfNone(res, "Timeline")
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM timelines`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
