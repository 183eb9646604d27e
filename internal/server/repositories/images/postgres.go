package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/server/models"
)

const columns = "id, filename, data, mime_type, size, storage_key, created_at"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save stores the image under its filename. Uploading the same filename
// twice replaces the earlier content.
func (r *PostgresRepository) Save(ctx context.Context, img *models.Image) (*models.Image, error) {
	query :=
		`INSERT INTO images (filename, data, mime_type, size, storage_key)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (filename) DO UPDATE
		 SET data = EXCLUDED.data, mime_type = EXCLUDED.mime_type,
		     size = EXCLUDED.size, storage_key = EXCLUDED.storage_key
		 RETURNING id, created_at`

	saved := *img
	err := r.db.QueryRowContext(ctx, query, img.Filename, img.Data, img.MimeType, img.Size, img.StorageKey).
		Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &saved, nil
}

func (r *PostgresRepository) Get(ctx context.Context, filename string) (*models.Image, error) {
	query := `SELECT ` + columns + ` FROM images WHERE filename = $1`
	return r.one(r.db.QueryRowContext(ctx, query, filename))
}

func (r *PostgresRepository) Delete(ctx context.Context, filename string) (*models.Image, error) {
	query := `DELETE FROM images WHERE filename = $1 RETURNING ` + columns
	return r.one(r.db.QueryRowContext(ctx, query, filename))
}

func (r *PostgresRepository) one(row *sql.Row) (*models.Image, error) {
	img := &models.Image{}
	err := row.Scan(&img.ID, &img.Filename, &img.Data, &img.MimeType, &img.Size, &img.StorageKey, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}
