package models

import "time"

type Event struct {
	ID          string     `json:"id"`
	TimelineID  string     `json:"-"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Color       *string    `json:"color"`
	Image       *string    `json:"image"`
	Link        *string    `json:"link"`
	Track       int        `json:"track"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// ImageFilename returns the attached image or "" when there is none.
func (e *Event) ImageFilename() string {
	if e.Image == nil {
		return ""
	}
	return *e.Image
}

type EventPatch struct {
	Title       Optional[string]
	Description Optional[string]
	StartDate   Optional[time.Time]
	EndDate     Optional[time.Time]
	Color       Optional[string]
	Image       Optional[string]
	Link        Optional[string]
	Track       Optional[int]
}

func (p EventPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.StartDate.Set && !p.EndDate.Set &&
		!p.Color.Set && !p.Image.Set && !p.Link.Set && !p.Track.Set
}
