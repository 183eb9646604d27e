// Package timelines keeps timeline rows and their events and highlights in
// the client's SQLite database. Child order is kept in a position column.
package timelines

import (
	"context"

	"github.com/railohail/timeline-rail/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, t *models.TimelineData) error
	Get(ctx context.Context, id string) (*models.TimelineData, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type EventRepository interface {
	ListByTimeline(ctx context.Context, timelineID string) ([]models.Event, error)
	Insert(ctx context.Context, timelineID string, position int, e *models.Event) error
	Update(ctx context.Context, timelineID string, position int, e *models.Event) error
	Delete(ctx context.Context, id, timelineID string) error
	DeleteByTimeline(ctx context.Context, timelineID string) error
}

type HighlightRepository interface {
	ListByTimeline(ctx context.Context, timelineID string) ([]models.Highlight, error)
	Insert(ctx context.Context, timelineID string, position int, h *models.Highlight) error
	Update(ctx context.Context, timelineID string, position int, h *models.Highlight) error
	Delete(ctx context.Context, id, timelineID string) error
	DeleteByTimeline(ctx context.Context, timelineID string) error
}
