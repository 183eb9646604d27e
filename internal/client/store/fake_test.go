package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/common"
)

// fakeStorage is an in-memory storage.Storage that records every call.
type fakeStorage struct {
	mu        sync.Mutex
	timelines map[string]*models.TimelineData
	order     []string
	images    map[string]string
	calls     []string

	saveErr   error
	listErr   error
	deleteErr error
	// deleteBlock, when set, makes DeleteTimeline wait for it to close.
	deleteBlock chan struct{}
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{timelines: map[string]*models.TimelineData{}, images: map[string]string{}}
}

func (f *fakeStorage) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeStorage) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStorage) put(t *models.TimelineData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.timelines[t.ID]; !ok {
		f.order = append(f.order, t.ID)
	}
	f.timelines[t.ID] = t.Clone()
}

func (f *fakeStorage) Init(context.Context) error { return nil }
func (f *fakeStorage) Close() error               { return nil }

func (f *fakeStorage) SaveTimeline(_ context.Context, t *models.TimelineData) error {
	f.mu.Lock()
	f.record("save %s", t.Name)
	err := f.saveErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.put(t)
	return nil
}

func (f *fakeStorage) LoadTimeline(_ context.Context, id string) (*models.TimelineData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("load %s", id)
	t, ok := f.timelines[id]
	if !ok {
		return nil, common.WithMessage(common.ErrorNotFound, "Timeline not found")
	}
	return t.Clone(), nil
}

func (f *fakeStorage) DeleteTimeline(ctx context.Context, id string) error {
	f.mu.Lock()
	f.record("delete timeline %s", id)
	block, err := f.deleteBlock, f.deleteErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.timelines[id]; !ok {
		return common.WithMessage(common.ErrorNotFound, "Timeline not found")
	}
	delete(f.timelines, id)
	for i, o := range f.order {
		if o == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStorage) ListTimelines(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string{}, f.order...), nil
}

func (f *fakeStorage) TimelineExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.timelines[id]
	return ok, nil
}

func (f *fakeStorage) SaveImage(_ context.Context, filename, dataURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("save image %s", filename)
	f.images[filename] = dataURL
	return filename, nil
}

func (f *fakeStorage) LoadImage(_ context.Context, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.images[filename]
	if !ok {
		return "", common.WithMessage(common.ErrorNotFound, "Image not found")
	}
	return data, nil
}

func (f *fakeStorage) DeleteImage(_ context.Context, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete image %s", filename)
	delete(f.images, filename)
	return nil
}

func (f *fakeStorage) ExportTimeline(_ context.Context, id string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.timelines[id]; !ok {
		return nil, errors.New("missing")
	}
	return []byte(`{"timeline":{"id":"` + id + `"}}`), nil
}

func (f *fakeStorage) ImportTimeline(_ context.Context, data []byte) (string, error) {
	t, err := models.Decode(data)
	if err != nil {
		return "", err
	}
	t.ID = "imported"
	f.put(t)
	return t.ID, nil
}

func (f *fakeStorage) Info(context.Context) (*models.StorageInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.StorageInfo{TotalTimelines: len(f.timelines), TotalImages: len(f.images)}, nil
}
