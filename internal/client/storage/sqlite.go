package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/client/repositories/images"
	"github.com/railohail/timeline-rail/internal/client/repositories/timelines"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dataurl"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/logging"
)

// SQLite keeps everything in a local database. A save applies the whole
// sync plan in one transaction.
type SQLite struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLite expects db to be migrated already (see localdb.Open).
func NewSQLite(db *sql.DB, logger logging.Logger) *SQLite {
	return &SQLite{db: db, logger: logger.With("module", "storage.sqlite")}
}

func (s *SQLite) Init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func loadFull(ctx context.Context, db dbx.DBTX, id string) (*models.TimelineData, error) {
	t, err := timelines.NewSQLiteRepository(db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Events, err = timelines.NewSQLiteEventRepository(db).ListByTimeline(ctx, id); err != nil {
		return nil, err
	}
	if t.Highlights, err = timelines.NewSQLiteHighlightRepository(db).ListByTimeline(ctx, id); err != nil {
		return nil, err
	}
	t.Normalize()
	return t, nil
}

func (s *SQLite) LoadTimeline(ctx context.Context, id string) (*models.TimelineData, error) {
	return loadFull(ctx, s.db, id)
}

func (s *SQLite) TimelineExists(ctx context.Context, id string) (bool, error) {
	return timelines.NewSQLiteRepository(s.db).Exists(ctx, id)
}

func (s *SQLite) ListTimelines(ctx context.Context) ([]string, error) {
	return timelines.NewSQLiteRepository(s.db).List(ctx)
}

func (s *SQLite) SaveTimeline(ctx context.Context, t *models.TimelineData) error {
	fillIDs(t)
	ts := now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = ts
	}
	t.UpdatedAt = ts

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		tlRepo := timelines.NewSQLiteRepository(tx)
		evRepo := timelines.NewSQLiteEventRepository(tx)
		hlRepo := timelines.NewSQLiteHighlightRepository(tx)

		var prev *models.TimelineData
		exists, err := tlRepo.Exists(ctx, t.ID)
		if err != nil {
			return err
		}
		if exists {
			if prev, err = loadFull(ctx, tx, t.ID); err != nil {
				return err
			}
		}

		if err := tlRepo.Upsert(ctx, t); err != nil {
			return err
		}

		for _, op := range PlanSync(prev, t) {
			var err error
			switch {
			case op.Child == ChildEvent && op.Kind == OpDelete:
				err = evRepo.Delete(ctx, op.ID, t.ID)
			case op.Child == ChildEvent && op.Kind == OpUpdate:
				err = evRepo.Update(ctx, t.ID, op.Index, &t.Events[op.Index])
			case op.Child == ChildEvent && op.Kind == OpCreate:
				err = evRepo.Insert(ctx, t.ID, op.Index, &t.Events[op.Index])
			case op.Child == ChildHighlight && op.Kind == OpDelete:
				err = hlRepo.Delete(ctx, op.ID, t.ID)
			case op.Child == ChildHighlight && op.Kind == OpUpdate:
				err = hlRepo.Update(ctx, t.ID, op.Index, &t.Highlights[op.Index])
			case op.Child == ChildHighlight && op.Kind == OpCreate:
				err = hlRepo.Insert(ctx, t.ID, op.Index, &t.Highlights[op.Index])
			}
			if err != nil {
				return fmt.Errorf("%s %s %s: %w", op.Kind, op.Child, op.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLite) DeleteTimeline(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := timelines.NewSQLiteEventRepository(tx).DeleteByTimeline(ctx, id); err != nil {
			return err
		}
		if err := timelines.NewSQLiteHighlightRepository(tx).DeleteByTimeline(ctx, id); err != nil {
			return err
		}
		return timelines.NewSQLiteRepository(tx).Delete(ctx, id)
	})
}

func (s *SQLite) SaveImage(ctx context.Context, filename, dataURL string) (string, error) {
	mimeType, data, err := dataurl.Decode(dataURL)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", filename, err)
	}
	err = images.NewSQLiteRepository(s.db).Save(ctx, &images.Image{
		Filename:  filename,
		Data:      dataURL,
		MimeType:  mimeType,
		Size:      int64(len(data)),
		CreatedAt: now(),
	})
	if err != nil {
		return "", err
	}
	return filename, nil
}

func (s *SQLite) LoadImage(ctx context.Context, filename string) (string, error) {
	img, err := images.NewSQLiteRepository(s.db).Get(ctx, filename)
	if err != nil {
		return "", err
	}
	return img.Data, nil
}

// DeleteImage succeeds when the image is already gone.
func (s *SQLite) DeleteImage(ctx context.Context, filename string) error {
	err := images.NewSQLiteRepository(s.db).Delete(ctx, filename)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func (s *SQLite) ExportTimeline(ctx context.Context, id string) ([]byte, error) {
	t, err := s.LoadTimeline(ctx, id)
	if err != nil {
		return nil, err
	}

	imgs := map[string]string{}
	for _, name := range imageRefs(t) {
		data, err := s.LoadImage(ctx, name)
		if err != nil {
			s.logger.Warn(ctx, "image skipped in export", "filename", name, "error", err)
			continue
		}
		imgs[name] = data
	}
	return encodeExport(t, imgs)
}

func (s *SQLite) ImportTimeline(ctx context.Context, data []byte) (string, error) {
	t, imgs, err := decodeImport(data)
	if err != nil {
		return "", common.WithMessage(common.ErrorValidation, err.Error())
	}
	renew(t)

	for name, dataURL := range imgs {
		if _, err := s.SaveImage(ctx, name, dataURL); err != nil {
			s.logger.Warn(ctx, "image skipped in import", "filename", name, "error", err)
		}
	}
	if err := s.SaveTimeline(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (s *SQLite) Info(ctx context.Context) (*models.StorageInfo, error) {
	count, err := timelines.NewSQLiteRepository(s.db).Count(ctx)
	if err != nil {
		return nil, err
	}
	imgCount, _, err := images.NewSQLiteRepository(s.db).Stats(ctx)
	if err != nil {
		return nil, err
	}

	var size int64
	err = s.db.QueryRowContext(ctx,
		`SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`,
	).Scan(&size)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &models.StorageInfo{TotalTimelines: count, TotalImages: imgCount, StorageSize: size}, nil
}
