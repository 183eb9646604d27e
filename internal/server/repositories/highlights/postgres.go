package highlights

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/server/models"
)

const columns = "id, timeline_id, start_date, end_date, start_label, end_label, color, created_at, updated_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHighlight(row rowScanner) (*models.Highlight, error) {
	h := &models.Highlight{}
	err := row.Scan(&h.ID, &h.TimelineID, &h.StartDate, &h.EndDate, &h.StartLabel, &h.EndLabel,
		&h.Color, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Create inserts the highlight, falling back to the default color when
// none is given.
func (r *PostgresRepository) Create(ctx context.Context, h *models.Highlight) (*models.Highlight, error) {
	query :=
		`INSERT INTO highlights (timeline_id, start_date, end_date, start_label, end_label, color)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + columns

	color := h.Color
	if color == "" {
		color = models.DefaultHighlightColor
	}

	created, err := scanHighlight(r.db.QueryRowContext(ctx, query,
		h.TimelineID, h.StartDate, h.EndDate, h.StartLabel, h.EndLabel, color))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) ListByTimeline(ctx context.Context, timelineID string) ([]models.Highlight, error) {
	query :=
		`SELECT ` + columns + ` FROM highlights
		 WHERE timeline_id = $1
		 ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, timelineID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Highlight, 0)
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id, timelineID string) (*models.Highlight, error) {
	query :=
		`SELECT ` + columns + ` FROM highlights
		 WHERE id = $1 AND timeline_id = $2`

	return r.one(r.db.QueryRowContext(ctx, query, id, timelineID))
}

func (r *PostgresRepository) Update(ctx context.Context, id, timelineID string, patch models.HighlightPatch) (*models.Highlight, error) {
	var b dbx.UpdateBuilder
	if patch.StartDate.Set {
		b.Set("start_date", patch.StartDate.Arg())
	}
	if patch.EndDate.Set {
		b.Set("end_date", patch.EndDate.Arg())
	}
	if patch.StartLabel.Set {
		b.Set("start_label", patch.StartLabel.Arg())
	}
	if patch.EndLabel.Set {
		b.Set("end_label", patch.EndLabel.Arg())
	}
	if patch.Color.Set {
		if patch.Color.Null {
			b.Set("color", models.DefaultHighlightColor)
		} else {
			b.Set("color", patch.Color.Value)
		}
	}
	if b.Empty() {
		return nil, common.ErrNothingChanged
	}

	query, args := b.SQL("highlights",
		[]dbx.Where{{Column: "id", Value: id}, {Column: "timeline_id", Value: timelineID}},
		columns)

	return r.one(r.db.QueryRowContext(ctx, query, args...))
}

func (r *PostgresRepository) Delete(ctx context.Context, id, timelineID string) (*models.Highlight, error) {
	query :=
		`DELETE FROM highlights
		 WHERE id = $1 AND timeline_id = $2
		 RETURNING ` + columns

	return r.one(r.db.QueryRowContext(ctx, query, id, timelineID))
}

func (r *PostgresRepository) one(row *sql.Row) (*models.Highlight, error) {
	h, err := scanHighlight(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return h, nil
}
