package highlights

import (
	"context"

	"github.com/railohail/timeline-rail/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, h *models.Highlight) (*models.Highlight, error)
	ListByTimeline(ctx context.Context, timelineID string) ([]models.Highlight, error)
	Get(ctx context.Context, id, timelineID string) (*models.Highlight, error)
	Update(ctx context.Context, id, timelineID string, patch models.HighlightPatch) (*models.Highlight, error)
	Delete(ctx context.Context, id, timelineID string) (*models.Highlight, error)
}
