package httpapi

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/server/auth"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/services"
)

var testSecret = []byte("test-secret")

type fakeUsers struct {
	registerErr error
	loginErr    error
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	u := &models.User{ID: "u1", Username: in.Username, Email: in.Email, PasswordHash: "hash"}
	tok, _ := auth.GenerateToken(auth.Identity{ID: u.ID, Username: u.Username}, testSecret, time.Hour)
	return &services.AuthResult{User: u, Token: tok}, nil
}

func (f *fakeUsers) Login(_ context.Context, in services.LoginInput) (*services.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.AuthResult{User: &models.User{ID: "u1", Username: in.Username}, Token: "t"}, nil
}

func (f *fakeUsers) Me(_ context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Username: "alice", Email: "a@example.com"}, nil
}

func (f *fakeUsers) Refresh(_ context.Context, id auth.Identity) (string, error) {
	return auth.GenerateToken(id, testSecret, time.Hour)
}

func (f *fakeUsers) Verify(token string) (*auth.Identity, error) {
	return auth.ParseToken(token, testSecret)
}

type call struct {
	method string
	args   []string
	raw    map[string]json.RawMessage
}

type fakeTimelines struct {
	calls []call
	err   error
	full  *models.TimelineFull
}

func (f *fakeTimelines) record(method string, raw map[string]json.RawMessage, args ...string) error {
	f.calls = append(f.calls, call{method: method, args: args, raw: raw})
	return f.err
}

func (f *fakeTimelines) List(_ context.Context, userID string) ([]models.Timeline, error) {
	return nil, f.record("List", nil, userID)
}

func (f *fakeTimelines) Create(_ context.Context, userID string, in services.TimelineInput) (*models.Timeline, error) {
	if err := f.record("Create", nil, userID, in.Name); err != nil {
		return nil, err
	}
	return &models.Timeline{ID: "t1", Name: in.Name, Settings: models.EmptySettings}, nil
}

func (f *fakeTimelines) GetFull(_ context.Context, id, userID string) (*models.TimelineFull, error) {
	if err := f.record("GetFull", nil, id, userID); err != nil {
		return nil, err
	}
	return f.full, nil
}

func (f *fakeTimelines) Update(_ context.Context, id, userID string, raw map[string]json.RawMessage) (*models.Timeline, error) {
	if err := f.record("Update", raw, id, userID); err != nil {
		return nil, err
	}
	return &models.Timeline{ID: id}, nil
}

func (f *fakeTimelines) Delete(_ context.Context, id, userID string) error {
	return f.record("Delete", nil, id, userID)
}

func (f *fakeTimelines) CreateEvent(_ context.Context, timelineID, userID string, in services.EventInput) (*models.Event, error) {
	if err := f.record("CreateEvent", nil, timelineID, userID, in.Title); err != nil {
		return nil, err
	}
	return &models.Event{ID: "e1", Title: in.Title}, nil
}

func (f *fakeTimelines) UpdateEvent(_ context.Context, timelineID, eventID, userID string, raw map[string]json.RawMessage) (*models.Event, error) {
	if err := f.record("UpdateEvent", raw, timelineID, eventID, userID); err != nil {
		return nil, err
	}
	return &models.Event{ID: eventID}, nil
}

func (f *fakeTimelines) DeleteEvent(_ context.Context, timelineID, eventID, userID string) error {
	return f.record("DeleteEvent", nil, timelineID, eventID, userID)
}

func (f *fakeTimelines) CreateHighlight(_ context.Context, timelineID, userID string, in services.HighlightInput) (*models.Highlight, error) {
	if err := f.record("CreateHighlight", nil, timelineID, userID); err != nil {
		return nil, err
	}
	return &models.Highlight{ID: "h1", Color: models.DefaultHighlightColor}, nil
}

func (f *fakeTimelines) UpdateHighlight(_ context.Context, timelineID, highlightID, userID string, raw map[string]json.RawMessage) (*models.Highlight, error) {
	if err := f.record("UpdateHighlight", raw, timelineID, highlightID, userID); err != nil {
		return nil, err
	}
	return &models.Highlight{ID: highlightID}, nil
}

func (f *fakeTimelines) DeleteHighlight(_ context.Context, timelineID, highlightID, userID string) error {
	return f.record("DeleteHighlight", nil, timelineID, highlightID, userID)
}

type fakeImages struct {
	uploaded []byte
	mimeType string
}

func (f *fakeImages) Upload(_ context.Context, originalName, mimeType string, data []byte) (*services.UploadResult, error) {
	f.uploaded = data
	f.mimeType = mimeType
	return &services.UploadResult{Filename: "event-x.png", OriginalName: originalName, MimeType: mimeType, Size: int64(len(data))}, nil
}

func (f *fakeImages) Load(_ context.Context, filename string) ([]byte, string, error) {
	if filename != "event-x.png" {
		return nil, "", common.WithMessage(common.ErrorNotFound, "Image not found")
	}
	return []byte("png"), "image/png", nil
}

func (f *fakeImages) Info(_ context.Context, filename string) (*models.Image, error) {
	return &models.Image{Filename: filename, MimeType: "image/png", Size: 3}, nil
}

func (f *fakeImages) Delete(context.Context, string) error { return nil }

type fakeTransfer struct {
	imported *models.ImportDocument
}

func (f *fakeTransfer) Export(_ context.Context, id, _ string) (*models.ExportDocument, error) {
	return &models.ExportDocument{
		Timeline: models.ExportedTimeline{
			TimelineFull: models.TimelineFull{ID: id, Name: `My "Trip"`, Events: []models.Event{}, Highlights: []models.Highlight{}, Settings: models.EmptySettings},
			Version:      models.ExportVersion,
		},
		Images: map[string]string{},
	}, nil
}

func (f *fakeTransfer) Import(_ context.Context, _ string, doc *models.ImportDocument) (*models.TimelineFull, *models.ImportReport, error) {
	f.imported = doc
	return &models.TimelineFull{ID: "t2", Name: doc.Timeline.Name, Events: []models.Event{}, Highlights: []models.Highlight{}}, &models.ImportReport{}, nil
}
