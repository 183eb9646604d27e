package models

import "time"

// DefaultHighlightColor is used when a highlight is created without a color.
const DefaultHighlightColor = "rgba(255, 235, 59, 0.25)"

type Highlight struct {
	ID         string    `json:"id"`
	TimelineID string    `json:"-"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	StartLabel *string   `json:"startLabel"`
	EndLabel   *string   `json:"endLabel"`
	Color      string    `json:"color"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

type HighlightPatch struct {
	StartDate  Optional[time.Time]
	EndDate    Optional[time.Time]
	StartLabel Optional[string]
	EndLabel   Optional[string]
	Color      Optional[string]
}

func (p HighlightPatch) Empty() bool {
	return !p.StartDate.Set && !p.EndDate.Set && !p.StartLabel.Set && !p.EndLabel.Set && !p.Color.Set
}
