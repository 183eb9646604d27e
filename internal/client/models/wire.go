package models

import (
	"fmt"
	"time"

	"github.com/railohail/timeline-rail/internal/timex"
)

// wire* types accept loosely formatted dates on input.

type wireEvent struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Color       *string `json:"color"`
	Image       *string `json:"image"`
	Link        *string `json:"link"`
	Track       int     `json:"track"`
}

type wireHighlight struct {
	ID         string  `json:"id"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	StartLabel *string `json:"startLabel"`
	EndLabel   *string `json:"endLabel"`
	Color      string  `json:"color"`
}

type wireSettings struct {
	CenterDate   string  `json:"centerDate"`
	PixelsPerDay float64 `json:"pixelsPerDay"`
	Theme        string  `json:"theme"`
}

type wireTimeline struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Events     []wireEvent     `json:"events"`
	Highlights []wireHighlight `json:"highlights"`
	Settings   *wireSettings   `json:"settings"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
}

func looseTime(s string) time.Time {
	t, err := timex.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (w wireTimeline) model() (*TimelineData, error) {
	t := &TimelineData{
		ID:        w.ID,
		Name:      w.Name,
		CreatedAt: looseTime(w.CreatedAt),
		UpdatedAt: looseTime(w.UpdatedAt),
	}
	if w.Settings != nil {
		t.Settings = Settings{
			CenterDate:   looseTime(w.Settings.CenterDate),
			PixelsPerDay: w.Settings.PixelsPerDay,
			Theme:        w.Settings.Theme,
		}
	}

	t.Events = make([]Event, 0, len(w.Events))
	for i, e := range w.Events {
		start, err := timex.ParseDate(e.StartDate)
		if err != nil {
			return nil, fmt.Errorf("event %d: startDate: %w", i, err)
		}
		end, err := timex.ParseOptionalDate(e.EndDate)
		if err != nil {
			return nil, fmt.Errorf("event %d: endDate: %w", i, err)
		}
		t.Events = append(t.Events, Event{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			StartDate:   start,
			EndDate:     end,
			Color:       e.Color,
			Image:       e.Image,
			Link:        e.Link,
			Track:       e.Track,
		})
	}

	t.Highlights = make([]Highlight, 0, len(w.Highlights))
	for i, h := range w.Highlights {
		start, err := timex.ParseDate(h.StartDate)
		if err != nil {
			return nil, fmt.Errorf("highlight %d: startDate: %w", i, err)
		}
		end, err := timex.ParseDate(h.EndDate)
		if err != nil {
			return nil, fmt.Errorf("highlight %d: endDate: %w", i, err)
		}
		t.Highlights = append(t.Highlights, Highlight{
			ID:         h.ID,
			StartDate:  start,
			EndDate:    end,
			StartLabel: h.StartLabel,
			EndLabel:   h.EndLabel,
			Color:      h.Color,
		})
	}
	return t, nil
}
