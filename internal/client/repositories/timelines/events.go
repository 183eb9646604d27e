package timelines

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/timex"
)

type SQLiteEventRepository struct {
	db dbx.DBTX
}

func NewSQLiteEventRepository(db dbx.DBTX) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) ListByTimeline(ctx context.Context, timelineID string) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, start_date, end_date, color, image, link, track
		FROM events WHERE timeline_id = ? ORDER BY position, start_date
	`, timelineID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			e                              models.Event
			start                          string
			description, end, color, image sql.NullString
			link                           sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &description, &start, &end, &color, &image, &link, &e.Track); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if e.StartDate, err = timex.ParseDate(start); err != nil {
			return nil, fmt.Errorf("event %s start_date: %w", e.ID, err)
		}
		if e.EndDate, err = timex.ParseOptionalDate(nullString(end)); err != nil {
			return nil, fmt.Errorf("event %s end_date: %w", e.ID, err)
		}
		e.Description = nullString(description)
		e.Color = nullString(color)
		e.Image = nullString(image)
		e.Link = nullString(link)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return events, nil
}

func (r *SQLiteEventRepository) Insert(ctx context.Context, timelineID string, position int, e *models.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, timeline_id, position, title, description, start_date, end_date, color, image, link, track)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, timelineID, position, e.Title, e.Description, formatTime(e.StartDate), formatOptionalTime(e.EndDate),
		e.Color, e.Image, e.Link, e.Track)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) Update(ctx context.Context, timelineID string, position int, e *models.Event) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE events SET position = ?, title = ?, description = ?, start_date = ?, end_date = ?,
			color = ?, image = ?, link = ?, track = ?
		WHERE id = ? AND timeline_id = ?
	`, position, e.Title, e.Description, formatTime(e.StartDate), formatOptionalTime(e.EndDate),
		e.Color, e.Image, e.Link, e.Track, e.ID, timelineID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return notFoundIfNone(res, "Event")
}

func (r *SQLiteEventRepository) Delete(ctx context.Context, id, timelineID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND timeline_id = ?`, id, timelineID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return notFoundIfNone(res, "Event")
}

func (r *SQLiteEventRepository) DeleteByTimeline(ctx context.Context, timelineID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE timeline_id = ?`, timelineID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
