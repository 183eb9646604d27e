package editor

import (
	"slices"
	"strings"
	"time"
)

func (e *Editor) SetFilter(f Filter) {
	e.filter = f
}

func (e *Editor) ClearFilter() {
	e.filter = Filter{}
}

// Matches reports whether ev passes every criterion of f. Events without a
// priority, lane or status count as medium, main and planned.
func (f Filter) Matches(ev Event) bool {
	if f.SearchText != "" && !matchesText(ev, strings.ToLower(f.SearchText)) {
		return false
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, ev.Category) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, orDefault(ev.Priority, PriorityMedium)) {
		return false
	}
	if len(f.Lanes) > 0 && !slices.Contains(f.Lanes, orDefault(ev.Lane, MainLaneID)) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, orDefault(ev.Status, StatusPlanned)) {
		return false
	}
	if r := f.DateRange; r != nil && (ev.StartDate.Before(r.Start) || ev.StartDate.After(r.End)) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(ev.Tags, func(t string) bool { return slices.Contains(f.Tags, t) }) {
		return false
	}
	return true
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

func matchesText(ev Event, needle string) bool {
	if strings.Contains(strings.ToLower(ev.Title), needle) ||
		strings.Contains(strings.ToLower(ev.Description), needle) {
		return true
	}
	return slices.ContainsFunc(ev.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), needle)
	})
}

// FilteredEvents returns the events that pass the current filter.
func (e *Editor) FilteredEvents() []Event {
	var out []Event
	for _, ev := range e.events {
		if e.filter.Matches(ev) {
			out = append(out, ev.clone())
		}
	}
	return out
}

// VisibleEvents returns filtered events that overlap the viewport.
func (e *Editor) VisibleEvents() []Event {
	var out []Event
	for _, ev := range e.FilteredEvents() {
		if !ev.StartDate.After(e.viewport.EndDate) && !ev.end().Before(e.viewport.StartDate) {
			out = append(out, ev)
		}
	}
	return out
}

// EventsByLane groups the visible events by lane id. Every lane has an
// entry, possibly empty.
func (e *Editor) EventsByLane() map[string][]Event {
	visible := e.VisibleEvents()
	out := make(map[string][]Event, len(e.lanes))
	for _, l := range e.lanes {
		out[l.ID] = []Event{}
	}
	for _, ev := range visible {
		if _, ok := out[ev.Lane]; ok {
			out[ev.Lane] = append(out[ev.Lane], ev)
		}
	}
	return out
}

// TotalTimespan is the distance between the earliest and the latest date
// of any event, counting end dates. It is 0 without events.
func (e *Editor) TotalTimespan() time.Duration {
	if len(e.events) == 0 {
		return 0
	}
	earliest, latest := e.events[0].StartDate, e.events[0].StartDate
	for _, ev := range e.events {
		for _, d := range []time.Time{ev.StartDate, ev.end()} {
			if d.Before(earliest) {
				earliest = d
			}
			if d.After(latest) {
				latest = d
			}
		}
	}
	return latest.Sub(earliest)
}
