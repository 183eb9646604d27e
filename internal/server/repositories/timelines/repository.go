package timelines

import (
	"context"

	"github.com/railohail/timeline-rail/internal/server/models"
)

// Repository stores timelines. Every lookup is scoped by owner so a foreign
// timeline is indistinguishable from a missing one.
type Repository interface {
	Create(ctx context.Context, t *models.Timeline) (*models.Timeline, error)
	ListByUser(ctx context.Context, userID string) ([]models.Timeline, error)
	Get(ctx context.Context, id, userID string) (*models.Timeline, error)
	Update(ctx context.Context, id, userID string, patch models.TimelinePatch) (*models.Timeline, error)
	Delete(ctx context.Context, id, userID string) (*models.Timeline, error)
}
