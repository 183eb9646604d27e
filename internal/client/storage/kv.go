package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dataurl"
	"github.com/railohail/timeline-rail/internal/logging"
)

const (
	timelineKeyPrefix = "timeline:"
	imageKeyPrefix    = "image:"
)

var errTimelineNotFound = common.WithMessage(common.ErrorNotFound, "Timeline not found")

type kvImage struct {
	Data      string    `json:"data"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// KV stores each timeline as one JSON document in Badger, so a save
// replaces the whole snapshot.
type KV struct {
	db     *badger.DB
	logger logging.Logger
}

// OpenKV opens (or creates) a Badger store in dir.
func OpenKV(dir string, logger logging.Logger) (*KV, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewKV(db, logger), nil
}

func NewKV(db *badger.DB, logger logging.Logger) *KV {
	return &KV{db: db, logger: logger.With("module", "storage.kv")}
}

func (k *KV) Init(ctx context.Context) error {
	if k.db.IsClosed() {
		return fmt.Errorf("badger store is closed")
	}
	return nil
}

func (k *KV) Close() error {
	return k.db.Close()
}

func (k *KV) get(key string, v any) error {
	return k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func (k *KV) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return k.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (k *KV) del(key string) error {
	return k.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(key)); err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
}

func (k *KV) keys(prefix string) ([]string, error) {
	var out []string
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			out = append(out, string(it.Item().Key()[len(p):]))
		}
		return nil
	})
	return out, err
}

func (k *KV) SaveTimeline(ctx context.Context, t *models.TimelineData) error {
	fillIDs(t)
	ts := now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = ts
	}
	t.UpdatedAt = ts
	return k.put(timelineKeyPrefix+t.ID, t)
}

func (k *KV) LoadTimeline(ctx context.Context, id string) (*models.TimelineData, error) {
	var t models.TimelineData
	err := k.get(timelineKeyPrefix+id, &t)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errTimelineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get timeline %s: %w", id, err)
	}
	t.Normalize()
	return &t, nil
}

func (k *KV) DeleteTimeline(ctx context.Context, id string) error {
	err := k.del(timelineKeyPrefix + id)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errTimelineNotFound
	}
	return err
}

// ListTimelines returns ids most recently updated first, matching the
// other backends.
func (k *KV) ListTimelines(ctx context.Context) ([]string, error) {
	ids, err := k.keys(timelineKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}

	type entry struct {
		id      string
		updated time.Time
	}
	entries := make([]entry, 0, len(ids))
	for _, id := range ids {
		var t struct {
			UpdatedAt time.Time `json:"updatedAt"`
		}
		if err := k.get(timelineKeyPrefix+id, &t); err != nil {
			return nil, fmt.Errorf("get timeline %s: %w", id, err)
		}
		entries = append(entries, entry{id: id, updated: t.UpdatedAt})
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return b.updated.Compare(a.updated)
	})

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.id)
	}
	return out, nil
}

func (k *KV) TimelineExists(ctx context.Context, id string) (bool, error) {
	err := k.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(timelineKeyPrefix + id))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (k *KV) SaveImage(ctx context.Context, filename, dataURL string) (string, error) {
	mimeType, data, err := dataurl.Decode(dataURL)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", filename, err)
	}
	img := kvImage{Data: dataURL, MimeType: mimeType, Size: int64(len(data)), CreatedAt: now().UTC()}
	if err := k.put(imageKeyPrefix+filename, img); err != nil {
		return "", err
	}
	return filename, nil
}

func (k *KV) LoadImage(ctx context.Context, filename string) (string, error) {
	var img kvImage
	err := k.get(imageKeyPrefix+filename, &img)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", common.WithMessage(common.ErrorNotFound, "Image not found")
	}
	if err != nil {
		return "", fmt.Errorf("get image %s: %w", filename, err)
	}
	return img.Data, nil
}

func (k *KV) DeleteImage(ctx context.Context, filename string) error {
	err := k.del(imageKeyPrefix + filename)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (k *KV) ExportTimeline(ctx context.Context, id string) ([]byte, error) {
	t, err := k.LoadTimeline(ctx, id)
	if err != nil {
		return nil, err
	}
	imgs := map[string]string{}
	for _, name := range imageRefs(t) {
		data, err := k.LoadImage(ctx, name)
		if err != nil {
			k.logger.Warn(ctx, "image skipped in export", "filename", name, "error", err)
			continue
		}
		imgs[name] = data
	}
	return encodeExport(t, imgs)
}

func (k *KV) ImportTimeline(ctx context.Context, data []byte) (string, error) {
	t, imgs, err := decodeImport(data)
	if err != nil {
		return "", common.WithMessage(common.ErrorValidation, err.Error())
	}
	renew(t)
	for name, dataURL := range imgs {
		if _, err := k.SaveImage(ctx, name, dataURL); err != nil {
			k.logger.Warn(ctx, "image skipped in import", "filename", name, "error", err)
		}
	}
	if err := k.SaveTimeline(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

func (k *KV) Info(ctx context.Context) (*models.StorageInfo, error) {
	tls, err := k.keys(timelineKeyPrefix)
	if err != nil {
		return nil, err
	}
	imgs, err := k.keys(imageKeyPrefix)
	if err != nil {
		return nil, err
	}
	lsm, vlog := k.db.Size()
	return &models.StorageInfo{TotalTimelines: len(tls), TotalImages: len(imgs), StorageSize: lsm + vlog}, nil
}
