package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrInvalidImport = errors.New("invalid timeline data format")

var csvHeader = []string{"Title", "Start Date", "End Date", "Description", "Link", "Category", "Priority", "Status"}

type exportData struct {
	Events     []Event    `json:"events"`
	Lanes      []Lane     `json:"lanes"`
	Categories []Category `json:"categories"`
	Settings   Settings   `json:"settings"`
	ExportedAt time.Time  `json:"exportedAt"`
}

// ExportJSON writes the filtered events together with lanes, categories
// and settings.
func (e *Editor) ExportJSON() ([]byte, error) {
	events := e.FilteredEvents()
	if events == nil {
		events = []Event{}
	}
	return json.MarshalIndent(exportData{
		Events:     events,
		Lanes:      e.lanes,
		Categories: e.categories,
		Settings:   e.settings,
		ExportedAt: e.now().UTC(),
	}, "", "  ")
}

func isoDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportCSV writes the filtered events with every cell quoted.
func (e *Editor) ExportCSV() string {
	var b strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(c))
		}
	}

	writeRow(csvHeader)
	for _, ev := range e.FilteredEvents() {
		end := ""
		if ev.EndDate != nil {
			end = isoDate(*ev.EndDate)
		}
		b.WriteByte('\n')
		writeRow([]string{
			ev.Title,
			isoDate(ev.StartDate),
			end,
			ev.Description,
			ev.Link,
			ev.Category,
			string(ev.Priority),
			string(ev.Status),
		})
	}
	return b.String()
}

type importData struct {
	Events     *[]Event    `json:"events"`
	Lanes      *[]Lane     `json:"lanes"`
	Categories *[]Category `json:"categories"`
}

// ImportJSON replaces events, lanes and categories with those present in
// data. An empty lane list is ignored so that one lane always remains.
// The undo history and selection are cleared.
func (e *Editor) ImportJSON(data []byte) error {
	var in importData
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	if in.Events != nil {
		events := make([]Event, 0, len(*in.Events))
		for _, ev := range *in.Events {
			events = append(events, ev.clone())
		}
		e.events = events
	}
	if in.Lanes != nil && len(*in.Lanes) > 0 {
		e.lanes = *in.Lanes
	}
	if in.Categories != nil {
		e.categories = *in.Categories
	}

	e.selected = nil
	e.history.Clear()
	return nil
}
