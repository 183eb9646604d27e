package timelines

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/timex"
)

type SQLiteHighlightRepository struct {
	db dbx.DBTX
}

func NewSQLiteHighlightRepository(db dbx.DBTX) *SQLiteHighlightRepository {
	return &SQLiteHighlightRepository{db: db}
}

func (r *SQLiteHighlightRepository) ListByTimeline(ctx context.Context, timelineID string) ([]models.Highlight, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, start_label, end_label, color
		FROM highlights WHERE timeline_id = ? ORDER BY position, start_date
	`, timelineID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	highlights := []models.Highlight{}
	for rows.Next() {
		var (
			h                    models.Highlight
			start, end           string
			startLabel, endLabel sql.NullString
		)
		if err := rows.Scan(&h.ID, &start, &end, &startLabel, &endLabel, &h.Color); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if h.StartDate, err = timex.ParseDate(start); err != nil {
			return nil, fmt.Errorf("highlight %s start_date: %w", h.ID, err)
		}
		if h.EndDate, err = timex.ParseDate(end); err != nil {
			return nil, fmt.Errorf("highlight %s end_date: %w", h.ID, err)
		}
		h.StartLabel = nullString(startLabel)
		h.EndLabel = nullString(endLabel)
		highlights = append(highlights, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return highlights, nil
}

func (r *SQLiteHighlightRepository) Insert(ctx context.Context, timelineID string, position int, h *models.Highlight) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO highlights (id, timeline_id, position, start_date, end_date, start_label, end_label, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, timelineID, position, formatTime(h.StartDate), formatTime(h.EndDate), h.StartLabel, h.EndLabel, h.Color)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteHighlightRepository) Update(ctx context.Context, timelineID string, position int, h *models.Highlight) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE highlights SET position = ?, start_date = ?, end_date = ?, start_label = ?, end_label = ?, color = ?
		WHERE id = ? AND timeline_id = ?
	`, position, formatTime(h.StartDate), formatTime(h.EndDate), h.StartLabel, h.EndLabel, h.Color, h.ID, timelineID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return notFoundIfNone(res, "Highlight")
}

func (r *SQLiteHighlightRepository) Delete(ctx context.Context, id, timelineID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE id = ? AND timeline_id = ?`, id, timelineID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return notFoundIfNone(res, "Highlight")
}

func (r *SQLiteHighlightRepository) DeleteByTimeline(ctx context.Context, timelineID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM highlights WHERE timeline_id = ?`, timelineID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
