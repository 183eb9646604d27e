package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/timex"
)

var errImageNotFound = common.WithMessage(common.ErrorNotFound, "Image not found")

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save inserts img or replaces the image stored under the same filename.
func (r *SQLiteRepository) Save(ctx context.Context, img *Image) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO images (filename, data, mime_type, size, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			data = excluded.data,
			mime_type = excluded.mime_type,
			size = excluded.size
	`, img.Filename, img.Data, img.MimeType, img.Size, img.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, filename string) (*Image, error) {
	var (
		img       Image
		createdAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT filename, data, mime_type, size, created_at FROM images WHERE filename = ?`, filename,
	).Scan(&img.Filename, &img.Data, &img.MimeType, &img.Size, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if img.CreatedAt, err = timex.ParseDate(createdAt); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	return &img, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, filename string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return errImageNotFound
	}
	return nil
}

func (r *SQLiteRepository) Stats(ctx context.Context) (int, int64, error) {
	var (
		count int
		size  int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1), COALESCE(SUM(size), 0) FROM images`).Scan(&count, &size)
	if err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return count, size, nil
}
