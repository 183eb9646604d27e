package models

import (
	"time"

	"github.com/goccy/go-json"
)

// EmptySettings is stored when a timeline is created without settings.
var EmptySettings = json.RawMessage(`{}`)

type Timeline struct {
	ID        string          `json:"id"`
	UserID    string          `json:"-"`
	Name      string          `json:"name"`
	Settings  json.RawMessage `json:"settings"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type TimelinePatch struct {
	Name     Optional[string]
	Settings Optional[json.RawMessage]
}

func (p TimelinePatch) Empty() bool {
	return !p.Name.Set && !p.Settings.Set
}

// TimelineFull is the aggregate served by GET /timelines/:id.
type TimelineFull struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Events     []Event         `json:"events"`
	Highlights []Highlight     `json:"highlights"`
	Settings   json.RawMessage `json:"settings"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// NewTimelineFull assembles the aggregate. Nil slices become empty so the
// JSON carries [] rather than null.
func NewTimelineFull(t *Timeline, events []Event, highlights []Highlight) *TimelineFull {
	if events == nil {
		events = []Event{}
	}
	if highlights == nil {
		highlights = []Highlight{}
	}
	settings := t.Settings
	if len(settings) == 0 {
		settings = EmptySettings
	}
	return &TimelineFull{
		ID:         t.ID,
		Name:       t.Name,
		Events:     events,
		Highlights: highlights,
		Settings:   settings,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
