// Package models holds the client-side mirror of the timeline aggregate.
// Dates are time.Time in UTC; JSON uses the same field names as the REST API.
package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/timex"
)

const (
	DefaultPixelsPerDay   = 50
	DefaultHighlightColor = "rgba(255, 235, 59, 0.3)"
)

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Color       *string    `json:"color,omitempty"`
	Image       *string    `json:"image,omitempty"`
	Link        *string    `json:"link,omitempty"`
	Track       int        `json:"track"`
}

type Highlight struct {
	ID         string    `json:"id"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	StartLabel *string   `json:"startLabel,omitempty"`
	EndLabel   *string   `json:"endLabel,omitempty"`
	Color      string    `json:"color"`
}

// Settings is the view state stored with a timeline.
type Settings struct {
	CenterDate   time.Time `json:"centerDate"`
	PixelsPerDay float64   `json:"pixelsPerDay"`
	Theme        string    `json:"theme,omitempty"`
}

// TimelineData is the unit of load and save between the client and a
// storage backend.
type TimelineData struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Events     []Event     `json:"events"`
	Highlights []Highlight `json:"highlights"`
	Settings   Settings    `json:"settings"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// NewTimelineData returns an empty timeline centred on now.
func NewTimelineData(id, name string, now time.Time) *TimelineData {
	now = now.UTC()
	return &TimelineData{
		ID:         id,
		Name:       name,
		Events:     []Event{},
		Highlights: []Highlight{},
		Settings:   Settings{CenterDate: now, PixelsPerDay: DefaultPixelsPerDay},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a copy whose slices can be edited independently.
func (t *TimelineData) Clone() *TimelineData {
	c := *t
	c.Events = append([]Event{}, t.Events...)
	c.Highlights = append([]Highlight{}, t.Highlights...)
	return &c
}

// Normalize puts every date in UTC and fills defaults that a sparse document
// may have left out.
func (t *TimelineData) Normalize() {
	if t.Events == nil {
		t.Events = []Event{}
	}
	if t.Highlights == nil {
		t.Highlights = []Highlight{}
	}
	for i := range t.Events {
		e := &t.Events[i]
		e.StartDate = e.StartDate.UTC()
		if e.EndDate != nil {
			end := e.EndDate.UTC()
			e.EndDate = &end
		}
	}
	for i := range t.Highlights {
		h := &t.Highlights[i]
		h.StartDate = h.StartDate.UTC()
		h.EndDate = h.EndDate.UTC()
		if h.Color == "" {
			h.Color = DefaultHighlightColor
		}
	}
	if t.Settings.PixelsPerDay == 0 {
		t.Settings.PixelsPerDay = DefaultPixelsPerDay
	}
	if t.Settings.CenterDate.IsZero() {
		t.Settings.CenterDate = time.Now()
	}
	t.Settings.CenterDate = t.Settings.CenterDate.UTC()
}

// ParseDate turns an ISO-8601 date or timestamp into a UTC time.
func ParseDate(s string) (time.Time, error) {
	return timex.ParseDate(s)
}

// Decode parses a timeline document. Dates may be in any form ParseDate
// accepts, not only RFC 3339.
func Decode(data []byte) (*TimelineData, error) {
	var w wireTimeline
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	t, err := w.model()
	if err != nil {
		return nil, err
	}
	t.Normalize()
	return t, nil
}
