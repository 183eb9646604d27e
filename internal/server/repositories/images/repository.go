package images

import (
	"context"

	"github.com/railohail/timeline-rail/internal/server/models"
)

type Repository interface {
	Save(ctx context.Context, img *models.Image) (*models.Image, error)
	Get(ctx context.Context, filename string) (*models.Image, error)
	Delete(ctx context.Context, filename string) (*models.Image, error)
}
