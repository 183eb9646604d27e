package events

import (
	"context"

	"github.com/railohail/timeline-rail/internal/server/models"
)

// Repository stores events. Callers verify timeline ownership first; the
// repository only scopes by timeline.
type Repository interface {
	Create(ctx context.Context, e *models.Event) (*models.Event, error)
	ListByTimeline(ctx context.Context, timelineID string) ([]models.Event, error)
	Get(ctx context.Context, id, timelineID string) (*models.Event, error)
	Update(ctx context.Context, id, timelineID string, patch models.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id, timelineID string) (*models.Event, error)
}
