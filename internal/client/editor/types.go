// Package editor is the in-memory editing model behind the timeline view:
// lanes, categories, filtering, the viewport, selection and undo/redo.
// Nothing here touches storage.
package editor

import (
	"time"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

const MainLaneID = "main"

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Description string     `json:"description,omitempty"`
	Link        string     `json:"link,omitempty"`
	Color       string     `json:"color,omitempty"`
	Image       string     `json:"image,omitempty"`
	Category    string     `json:"category,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Lane        string     `json:"lane,omitempty"`
	Status      Status     `json:"status,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (e Event) clone() Event {
	if e.EndDate != nil {
		end := *e.EndDate
		e.EndDate = &end
	}
	e.Tags = append([]string(nil), e.Tags...)
	return e
}

// end is the event's end date, or its start for point events.
func (e Event) end() time.Time {
	if e.EndDate != nil {
		return *e.EndDate
	}
	return e.StartDate
}

type Lane struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Height    int    `json:"height"`
	Collapsed bool   `json:"collapsed,omitempty"`
	Order     int    `json:"order"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DateRange is inclusive at both ends.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Filter narrows the event list. Empty criteria match everything; set
// criteria are ANDed.
type Filter struct {
	SearchText string     `json:"searchText,omitempty"`
	Categories []string   `json:"categories,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Priorities []Priority `json:"priorities,omitempty"`
	Lanes      []string   `json:"lanes,omitempty"`
	Statuses   []Status   `json:"status,omitempty"`
	DateRange  *DateRange `json:"dateRange,omitempty"`
}

type Viewport struct {
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	CenterDate    time.Time `json:"centerDate"`
	ZoomLevel     float64   `json:"zoomLevel"`
	PixelsPerUnit float64   `json:"pixelsPerUnit"`
}

type Settings struct {
	ShowGrid        bool   `json:"showGrid"`
	ShowCurrentTime bool   `json:"showCurrentTime"`
	SnapToGrid      bool   `json:"snapToGrid"`
	AutoSave        bool   `json:"autoSave"`
	DefaultView     string `json:"defaultView"`
	TimeFormat      string `json:"timeFormat"`
	DateFormat      string `json:"dateFormat"`
}

func DefaultLane() Lane {
	return Lane{ID: MainLaneID, Name: "Main Timeline", Color: "#3498db", Height: DefaultLaneHeight, Order: 0}
}

const DefaultLaneHeight = 120

func DefaultCategories() []Category {
	return []Category{
		{ID: "work", Name: "Work", Color: "#3498db"},
		{ID: "personal", Name: "Personal", Color: "#2ecc71"},
		{ID: "milestone", Name: "Milestone", Color: "#f39c12"},
		{ID: "deadline", Name: "Deadline", Color: "#e74c3c"},
		{ID: "meeting", Name: "Meeting", Color: "#9b59b6"},
		{ID: "travel", Name: "Travel", Color: "#1abc9c"},
		{ID: "education", Name: "Education", Color: "#34495e"},
		{ID: "health", Name: "Health", Color: "#e67e22"},
	}
}

func DefaultSettings() Settings {
	return Settings{
		ShowGrid:        true,
		ShowCurrentTime: true,
		AutoSave:        true,
		DefaultView:     "timeline",
		TimeFormat:      "24h",
		DateFormat:      "MM/dd/yyyy",
	}
}
