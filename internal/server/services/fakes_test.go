package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/config"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/repositories/events"
	"github.com/railohail/timeline-rail/internal/server/repositories/highlights"
	"github.com/railohail/timeline-rail/internal/server/repositories/images"
	"github.com/railohail/timeline-rail/internal/server/repositories/timelines"
	"github.com/railohail/timeline-rail/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// In-memory repositories with the same observable behaviour as the
// PostgreSQL ones: scoped lookups, NotFound on misses, RETURNING on delete.

type fakeUsers struct {
	byID   map[string]*models.User
	getErr error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, common.ErrorNotFound
}

type fakeTimelines struct {
	byID map[string]*models.Timeline
	err  error
}

func (f *fakeTimelines) Create(_ context.Context, t *models.Timeline) (*models.Timeline, error) {
	if f.err != nil {
		return nil, f.err
	}
	c := *t
	c.ID = uuid.NewString()
	if len(c.Settings) == 0 {
		c.Settings = models.EmptySettings
	}
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeTimelines) ListByUser(_ context.Context, userID string) ([]models.Timeline, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Timeline
	for _, t := range f.byID {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeTimelines) Get(_ context.Context, id, userID string) (*models.Timeline, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.byID[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeTimelines) Update(ctx context.Context, id, userID string, p models.TimelinePatch) (*models.Timeline, error) {
	if p.Empty() {
		return nil, common.ErrNothingChanged
	}
	if _, err := f.Get(ctx, id, userID); err != nil {
		return nil, err
	}
	t := f.byID[id]
	if p.Name.Set {
		t.Name = p.Name.Value
	}
	if p.Settings.Set {
		t.Settings = p.Settings.Value
		if p.Settings.Null {
			t.Settings = models.EmptySettings
		}
	}
	t.UpdatedAt = time.Now().UTC()
	c := *t
	return &c, nil
}

func (f *fakeTimelines) Delete(ctx context.Context, id, userID string) (*models.Timeline, error) {
	t, err := f.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	delete(f.byID, id)
	return t, nil
}

type fakeEvents struct {
	byID      map[string]*models.Event
	createErr error
	updates   int
}

func (f *fakeEvents) Create(_ context.Context, e *models.Event) (*models.Event, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	c := *e
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeEvents) ListByTimeline(_ context.Context, timelineID string) ([]models.Event, error) {
	var out []models.Event
	for _, e := range f.byID {
		if e.TimelineID == timelineID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeEvents) Get(_ context.Context, id, timelineID string) (*models.Event, error) {
	e, ok := f.byID[id]
	if !ok || e.TimelineID != timelineID {
		return nil, common.ErrorNotFound
	}
	c := *e
	return &c, nil
}

func (f *fakeEvents) Update(ctx context.Context, id, timelineID string, p models.EventPatch) (*models.Event, error) {
	if p.Empty() {
		return nil, common.ErrNothingChanged
	}
	if _, err := f.Get(ctx, id, timelineID); err != nil {
		return nil, err
	}
	f.updates++
	e := f.byID[id]
	if p.Title.Set {
		e.Title = p.Title.Value
	}
	if p.StartDate.Set {
		e.StartDate = p.StartDate.Value
	}
	if p.EndDate.Set {
		e.EndDate = nil
		if !p.EndDate.Null {
			v := p.EndDate.Value
			e.EndDate = &v
		}
	}
	if p.Image.Set {
		e.Image = nil
		if !p.Image.Null {
			v := p.Image.Value
			e.Image = &v
		}
	}
	if p.Track.Set {
		e.Track = p.Track.Value
	}
	e.UpdatedAt = time.Now().UTC()
	c := *e
	return &c, nil
}

func (f *fakeEvents) Delete(ctx context.Context, id, timelineID string) (*models.Event, error) {
	e, err := f.Get(ctx, id, timelineID)
	if err != nil {
		return nil, err
	}
	delete(f.byID, id)
	return e, nil
}

type fakeHighlights struct {
	byID map[string]*models.Highlight
}

func (f *fakeHighlights) Create(_ context.Context, h *models.Highlight) (*models.Highlight, error) {
	c := *h
	c.ID = uuid.NewString()
	if c.Color == "" {
		c.Color = models.DefaultHighlightColor
	}
	f.byID[c.ID] = &c
	return &c, nil
}

func (f *fakeHighlights) ListByTimeline(_ context.Context, timelineID string) ([]models.Highlight, error) {
	var out []models.Highlight
	for _, h := range f.byID {
		if h.TimelineID == timelineID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeHighlights) Get(_ context.Context, id, timelineID string) (*models.Highlight, error) {
	h, ok := f.byID[id]
	if !ok || h.TimelineID != timelineID {
		return nil, common.ErrorNotFound
	}
	c := *h
	return &c, nil
}

func (f *fakeHighlights) Update(ctx context.Context, id, timelineID string, p models.HighlightPatch) (*models.Highlight, error) {
	if _, err := f.Get(ctx, id, timelineID); err != nil {
		return nil, err
	}
	h := f.byID[id]
	if p.StartDate.Set {
		h.StartDate = p.StartDate.Value
	}
	if p.EndDate.Set {
		h.EndDate = p.EndDate.Value
	}
	if p.Color.Set {
		h.Color = p.Color.Value
		if p.Color.Null {
			h.Color = models.DefaultHighlightColor
		}
	}
	c := *h
	return &c, nil
}

func (f *fakeHighlights) Delete(ctx context.Context, id, timelineID string) (*models.Highlight, error) {
	h, err := f.Get(ctx, id, timelineID)
	if err != nil {
		return nil, err
	}
	delete(f.byID, id)
	return h, nil
}

type fakeImages struct {
	byName    map[string]*models.Image
	deleteErr error
	deleted   []string
}

func (f *fakeImages) Save(_ context.Context, img *models.Image) (*models.Image, error) {
	c := *img
	c.ID = uuid.NewString()
	f.byName[c.Filename] = &c
	return &c, nil
}

func (f *fakeImages) Get(_ context.Context, filename string) (*models.Image, error) {
	img, ok := f.byName[filename]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *img
	return &c, nil
}

func (f *fakeImages) Delete(_ context.Context, filename string) (*models.Image, error) {
	f.deleted = append(f.deleted, filename)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	img, ok := f.byName[filename]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.byName, filename)
	return img, nil
}

type fakeRepoManager struct {
	users      *fakeUsers
	timelines  *fakeTimelines
	events     *fakeEvents
	highlights *fakeHighlights
	images     *fakeImages
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:      &fakeUsers{byID: map[string]*models.User{}},
		timelines:  &fakeTimelines{byID: map[string]*models.Timeline{}},
		events:     &fakeEvents{byID: map[string]*models.Event{}},
		highlights: &fakeHighlights{byID: map[string]*models.Highlight{}},
		images:     &fakeImages{byName: map[string]*models.Image{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.users }
func (m *fakeRepoManager) Timelines(dbx.DBTX) timelines.Repository      { return m.timelines }
func (m *fakeRepoManager) Events(dbx.DBTX) events.Repository            { return m.events }
func (m *fakeRepoManager) Highlights(dbx.DBTX) highlights.Repository    { return m.highlights }
func (m *fakeRepoManager) Images(dbx.DBTX) images.Repository            { return m.images }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// expectReadTx queues n committed transactions, one per GetFull call.
func expectReadTx(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

type testServices struct {
	db        *sql.DB
	mock      sqlmock.Sqlmock
	rm        *fakeRepoManager
	users     *UserService
	timelines *TimelineService
	images    *ImageService
	transfer  *TransferService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	cfg := testConfig()
	log := logging.Nop{}

	imgs := NewImageService(db, rm, nil, cfg, log)
	tls := NewTimelineService(db, rm, imgs, log)
	return &testServices{
		db:        db,
		mock:      mock,
		rm:        rm,
		users:     NewUserService(db, rm, cfg),
		timelines: tls,
		images:    imgs,
		transfer:  NewTransferService(db, rm, tls, imgs, log),
	}
}
