package storage

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/railohail/timeline-rail/internal/client/models"
)

const exportVersion = "1.0"

type exportedTimeline struct {
	*models.TimelineData
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

type exportDocument struct {
	Timeline exportedTimeline  `json:"timeline"`
	Images   map[string]string `json:"images"`
}

// encodeExport builds the same envelope the server's export endpoint
// returns, so either side can import the other's files.
func encodeExport(t *models.TimelineData, images map[string]string) ([]byte, error) {
	if images == nil {
		images = map[string]string{}
	}
	doc := exportDocument{
		Timeline: exportedTimeline{TimelineData: t, ExportedAt: now().UTC(), Version: exportVersion},
		Images:   images,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// decodeImport accepts an export envelope or a bare timeline document.
func decodeImport(data []byte) (*models.TimelineData, map[string]string, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, nil, fmt.Errorf("invalid import document: %w", err)
	}

	body := data
	var images map[string]string
	if inner, ok := top["timeline"]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
		body = inner
		if raw, ok := top["images"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, &images); err != nil {
				return nil, nil, fmt.Errorf("images must map filenames to data URLs: %w", err)
			}
		}
	}

	t, err := models.Decode(body)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid import document: %w", err)
	}
	if t.Name == "" {
		return nil, nil, fmt.Errorf("timeline name is required")
	}
	return t, images, nil
}

// imageRefs lists the distinct image filenames referenced by t's events.
func imageRefs(t *models.TimelineData) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, e := range t.Events {
		if e.Image == nil || *e.Image == "" {
			continue
		}
		if _, ok := seen[*e.Image]; ok {
			continue
		}
		seen[*e.Image] = struct{}{}
		out = append(out, *e.Image)
	}
	return out
}

// renew gives an imported timeline and all its children fresh ids so it
// never collides with the timeline it was exported from.
func renew(t *models.TimelineData) {
	ts := now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = ts
	t.UpdatedAt = ts
	for i := range t.Events {
		t.Events[i].ID = uuid.NewString()
	}
	for i := range t.Highlights {
		t.Highlights[i].ID = uuid.NewString()
	}
}

// fillIDs assigns ids to a snapshot's new, id-less parts.
func fillIDs(t *models.TimelineData) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for i := range t.Events {
		if t.Events[i].ID == "" {
			t.Events[i].ID = uuid.NewString()
		}
	}
	for i := range t.Highlights {
		if t.Highlights[i].ID == "" {
			t.Highlights[i].ID = uuid.NewString()
		}
	}
}
