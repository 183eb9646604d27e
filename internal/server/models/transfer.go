package models

import (
	"time"

	"github.com/goccy/go-json"
)

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

type ExportedTimeline struct {
	TimelineFull
	ExportedAt time.Time `json:"exportedAt"`
	Version    string    `json:"version"`
}

// ExportDocument is the portable form of a timeline: the aggregate plus the
// data URLs of every image its events reference.
type ExportDocument struct {
	Timeline ExportedTimeline  `json:"timeline"`
	Images   map[string]string `json:"images"`
}

// ImportTimeline is the timeline part of an import payload. Children stay raw
// so a single malformed item can be skipped without rejecting the document.
type ImportTimeline struct {
	Name       string            `json:"name"`
	Settings   json.RawMessage   `json:"settings"`
	Events     []json.RawMessage `json:"events"`
	Highlights []json.RawMessage `json:"highlights"`
}

// ImportDocument is what POST /timelines/import understands after the
// envelope has been unwrapped.
type ImportDocument struct {
	Timeline ImportTimeline
	Images   map[string]string
}

// ImportReport counts the children that could not be imported.
type ImportReport struct {
	SkippedImages     int
	SkippedEvents     int
	SkippedHighlights int
}
