package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/client/client"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dataurl"
	"github.com/railohail/timeline-rail/internal/logging"
)

// Remote keeps timelines on the server. A save is a series of per-child
// requests, so a failure part way leaves the server with some of the
// changes applied.
type Remote struct {
	api    *client.APIClient
	logger logging.Logger
}

func NewRemote(api *client.APIClient, logger logging.Logger) *Remote {
	return &Remote{api: api, logger: logger.With("module", "storage.remote")}
}

type eventPayload struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Color       *string `json:"color"`
	Image       *string `json:"image"`
	Link        *string `json:"link"`
	Track       int     `json:"track"`
}

type highlightPayload struct {
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	StartLabel *string `json:"startLabel"`
	EndLabel   *string `json:"endLabel"`
	Color      string  `json:"color"`
}

type timelinePayload struct {
	Name     string          `json:"name"`
	Settings models.Settings `json:"settings"`
}

type idResponse struct {
	ID string `json:"id"`
}

func isoDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func newEventPayload(e models.Event) eventPayload {
	p := eventPayload{
		Title:       e.Title,
		Description: e.Description,
		StartDate:   isoDate(e.StartDate),
		Color:       e.Color,
		Image:       e.Image,
		Link:        e.Link,
		Track:       e.Track,
	}
	if e.EndDate != nil {
		end := isoDate(*e.EndDate)
		p.EndDate = &end
	}
	return p
}

func newHighlightPayload(h models.Highlight) highlightPayload {
	return highlightPayload{
		StartDate:  isoDate(h.StartDate),
		EndDate:    isoDate(h.EndDate),
		StartLabel: h.StartLabel,
		EndLabel:   h.EndLabel,
		Color:      h.Color,
	}
}

func timelinePath(id string, rest ...string) string {
	p := "/timelines/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

// notFound turns the client's 404 into common.ErrorNotFound while keeping
// the server's message.
func notFound(err error) error {
	if errors.Is(err, client.ErrNotFound) {
		return common.WithMessage(common.ErrorNotFound, err.Error())
	}
	return err
}

func (r *Remote) Init(ctx context.Context) error {
	if err := r.api.Ping(ctx); err != nil {
		r.logger.Warn(ctx, "server health check failed", "error", err)
	}
	return nil
}

func (r *Remote) Close() error {
	return nil
}

func (r *Remote) TimelineExists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	var out idResponse
	err := r.api.Do(ctx, http.MethodGet, timelinePath(id), nil, &out)
	if errors.Is(err, client.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Remote) LoadTimeline(ctx context.Context, id string) (*models.TimelineData, error) {
	var raw []byte
	if err := r.api.Do(ctx, http.MethodGet, timelinePath(id), nil, &raw); err != nil {
		return nil, notFound(err)
	}
	t, err := models.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode timeline %s: %w", id, err)
	}
	return t, nil
}

func (r *Remote) ListTimelines(ctx context.Context) ([]string, error) {
	var list []idResponse
	if err := r.api.Do(ctx, http.MethodGet, "/timelines", nil, &list); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, t := range list {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (r *Remote) DeleteTimeline(ctx context.Context, id string) error {
	return notFound(r.api.Do(ctx, http.MethodDelete, timelinePath(id), nil, nil))
}

// SaveTimeline creates t through the import endpoint when the server does
// not have it yet, adopting every id the server assigns. Otherwise it
// updates the timeline row and replays PlanSync against the server's
// current state.
func (r *Remote) SaveTimeline(ctx context.Context, t *models.TimelineData) error {
	exists, err := r.TimelineExists(ctx, t.ID)
	if err != nil {
		return err
	}
	if !exists {
		return r.create(ctx, t)
	}

	if err := r.api.Do(ctx, http.MethodPut, timelinePath(t.ID), timelinePayload{Name: t.Name, Settings: t.Settings}, nil); err != nil {
		return notFound(err)
	}

	current, err := r.LoadTimeline(ctx, t.ID)
	if err != nil {
		return err
	}

	for _, op := range PlanSync(current, t) {
		if err := r.apply(ctx, t, op); err != nil {
			return fmt.Errorf("%s %s %s: %w", op.Kind, op.Child, op.ID, err)
		}
	}
	return nil
}

func (r *Remote) create(ctx context.Context, t *models.TimelineData) error {
	var raw []byte
	if err := r.api.Do(ctx, http.MethodPost, "/timelines/import", t, &raw); err != nil {
		return err
	}
	created, err := models.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode timeline: %w", err)
	}
	r.logger.Info(ctx, "timeline created on server", "local_id", t.ID, "id", created.ID)
	*t = *created
	return nil
}

func (r *Remote) apply(ctx context.Context, t *models.TimelineData, op Op) error {
	switch op.Child {
	case ChildEvent:
		switch op.Kind {
		case OpDelete:
			return r.api.Do(ctx, http.MethodDelete, timelinePath(t.ID, "events", op.ID), nil, nil)
		case OpUpdate:
			return r.api.Do(ctx, http.MethodPut, timelinePath(t.ID, "events", op.ID), newEventPayload(t.Events[op.Index]), nil)
		case OpCreate:
			var out idResponse
			if err := r.api.Do(ctx, http.MethodPost, timelinePath(t.ID, "events"), newEventPayload(t.Events[op.Index]), &out); err != nil {
				return err
			}
			t.Events[op.Index].ID = out.ID
		}

	case ChildHighlight:
		switch op.Kind {
		case OpDelete:
			return r.api.Do(ctx, http.MethodDelete, timelinePath(t.ID, "highlights", op.ID), nil, nil)
		case OpUpdate:
			return r.api.Do(ctx, http.MethodPut, timelinePath(t.ID, "highlights", op.ID), newHighlightPayload(t.Highlights[op.Index]), nil)
		case OpCreate:
			var out idResponse
			if err := r.api.Do(ctx, http.MethodPost, timelinePath(t.ID, "highlights"), newHighlightPayload(t.Highlights[op.Index]), &out); err != nil {
				return err
			}
			t.Highlights[op.Index].ID = out.ID
		}
	}
	return nil
}

func (r *Remote) SaveImage(ctx context.Context, filename, dataURL string) (string, error) {
	mimeType, data, err := dataurl.Decode(dataURL)
	if err != nil {
		return "", fmt.Errorf("image %s: %w", filename, err)
	}
	res, err := r.api.UploadImage(ctx, filename, mimeType, data)
	if err != nil {
		return "", err
	}
	return res.Filename, nil
}

func (r *Remote) LoadImage(ctx context.Context, filename string) (string, error) {
	data, contentType, err := r.api.Fetch(ctx, "/images/"+url.PathEscape(filename))
	if err != nil {
		return "", notFound(err)
	}
	mimeType, _, _ := strings.Cut(contentType, ";")
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = common.DefaultImageMimeType
	}
	return dataurl.Encode(mimeType, data), nil
}

// DeleteImage treats an image the server no longer has as deleted. Events
// may keep references to images removed through another event.
func (r *Remote) DeleteImage(ctx context.Context, filename string) error {
	err := r.api.Do(ctx, http.MethodDelete, "/images/"+url.PathEscape(filename), nil, nil)
	if errors.Is(err, client.ErrNotFound) {
		r.logger.Info(ctx, "image already gone", "filename", filename)
		return nil
	}
	return err
}

func (r *Remote) ExportTimeline(ctx context.Context, id string) ([]byte, error) {
	var raw []byte
	if err := r.api.Do(ctx, http.MethodGet, timelinePath(id, "export"), nil, &raw); err != nil {
		return nil, notFound(err)
	}
	return raw, nil
}

func (r *Remote) ImportTimeline(ctx context.Context, data []byte) (string, error) {
	var out idResponse
	if err := r.api.Do(ctx, http.MethodPost, "/timelines/import", json.RawMessage(bytes.TrimSpace(data)), &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Info counts timelines only; the server does not list images.
func (r *Remote) Info(ctx context.Context) (*models.StorageInfo, error) {
	ids, err := r.ListTimelines(ctx)
	if err != nil {
		return nil, err
	}
	return &models.StorageInfo{TotalTimelines: len(ids)}, nil
}
