package editor

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/railohail/timeline-rail/internal/client/models"
)

const (
	viewportSpan = 365 * 24 * time.Hour
	duplicateGap = 24 * time.Hour
)

// Editor is not safe for concurrent use.
type Editor struct {
	events     []Event
	lanes      []Lane
	categories []Category
	selected   []string
	filter     Filter
	viewport   Viewport
	settings   Settings
	history    *History

	now   func() time.Time
	newID func() string
}

type Option func(*Editor)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

// New returns an editor with one lane, the default categories and a
// viewport spanning a year either side of now.
func New(opts ...Option) *Editor {
	e := &Editor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}

	e.lanes = []Lane{DefaultLane()}
	e.categories = DefaultCategories()
	e.settings = DefaultSettings()
	e.history = NewHistory(DefaultHistoryCapacity)
	e.viewport = defaultViewport(e.now())
	return e
}

func defaultViewport(now time.Time) Viewport {
	return Viewport{
		StartDate:     now.Add(-viewportSpan),
		EndDate:       now.Add(viewportSpan),
		CenterDate:    now,
		ZoomLevel:     1,
		PixelsPerUnit: DefaultPixelsPerUnit,
	}
}

// FromTimeline fills an editor with the events of a stored timeline. Every
// event lands in the main lane with the default status and priority.
func FromTimeline(t *models.TimelineData, opts ...Option) *Editor {
	e := New(opts...)
	for _, m := range t.Events {
		ev := Event{
			ID:        m.ID,
			Title:     m.Title,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
			Lane:      MainLaneID,
			Priority:  PriorityMedium,
			Status:    StatusPlanned,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		}
		if m.Description != nil {
			ev.Description = *m.Description
		}
		if m.Link != nil {
			ev.Link = *m.Link
		}
		if m.Color != nil {
			ev.Color = *m.Color
		}
		if m.Image != nil {
			ev.Image = *m.Image
		}
		e.events = append(e.events, ev.clone())
	}
	return e
}

func (e *Editor) Events() []Event {
	out := make([]Event, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.clone()
	}
	return out
}

func (e *Editor) Event(id string) (Event, bool) {
	i := e.eventIndex(id)
	if i < 0 {
		return Event{}, false
	}
	return e.events[i].clone(), true
}

func (e *Editor) Lanes() []Lane          { return slices.Clone(e.lanes) }
func (e *Editor) Categories() []Category { return slices.Clone(e.categories) }
func (e *Editor) Selected() []string     { return slices.Clone(e.selected) }
func (e *Editor) Filter() Filter         { return e.filter }
func (e *Editor) Viewport() Viewport     { return e.viewport }
func (e *Editor) Settings() Settings     { return e.settings }
func (e *Editor) CanUndo() bool          { return e.history.CanUndo() }
func (e *Editor) CanRedo() bool          { return e.history.CanRedo() }
func (e *Editor) HistoryLen() int        { return e.history.Len() }
func (e *Editor) SetSettings(s Settings) { e.settings = s }

func (e *Editor) eventIndex(id string) int {
	return slices.IndexFunc(e.events, func(ev Event) bool { return ev.ID == id })
}

func (e *Editor) laneIndex(id string) int {
	return slices.IndexFunc(e.lanes, func(l Lane) bool { return l.ID == id })
}

// AddEvent assigns an id and timestamps, fills lane, status and priority
// defaults and returns the stored event.
func (e *Editor) AddEvent(ev Event) Event {
	now := e.now()
	ev = ev.clone()
	ev.ID = e.newID()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if ev.Lane == "" {
		ev.Lane = MainLaneID
	}
	if ev.Status == "" {
		ev.Status = StatusPlanned
	}
	if ev.Priority == "" {
		ev.Priority = PriorityMedium
	}

	e.events = append(e.events, ev)
	e.history.Push(Entry{Action: ActionAddEvent, Index: len(e.events) - 1, Event: ev.clone()})
	return ev.clone()
}

// UpdateEvent replaces the event with the same id as ev, keeping its
// creation time. It reports whether the event existed.
func (e *Editor) UpdateEvent(ev Event) bool {
	i := e.eventIndex(ev.ID)
	if i < 0 {
		return false
	}
	prev := e.events[i].clone()
	ev = ev.clone()
	ev.CreatedAt = prev.CreatedAt
	ev.UpdatedAt = e.now()
	e.events[i] = ev

	e.history.Push(Entry{Action: ActionUpdateEvent, Index: i, Event: ev.clone(), PrevEvent: prev})
	return true
}

// DeleteEvent removes an event and drops it from the selection.
func (e *Editor) DeleteEvent(id string) bool {
	i := e.eventIndex(id)
	if i < 0 {
		return false
	}
	ev := e.events[i]
	e.removeEvent(i)
	e.history.Push(Entry{Action: ActionDeleteEvent, Index: i, Event: ev})
	return true
}

func (e *Editor) removeEvent(i int) {
	id := e.events[i].ID
	e.events = slices.Delete(e.events, i, i+1)
	e.selected = slices.DeleteFunc(e.selected, func(s string) bool { return s == id })
}

// DuplicateEvent copies an event one day later with " (Copy)" appended to
// its title.
func (e *Editor) DuplicateEvent(id string) (Event, bool) {
	i := e.eventIndex(id)
	if i < 0 {
		return Event{}, false
	}
	dup := e.events[i].clone()
	dup.Title += " (Copy)"
	dup.StartDate = dup.StartDate.Add(duplicateGap)
	if dup.EndDate != nil {
		end := dup.EndDate.Add(duplicateGap)
		dup.EndDate = &end
	}
	return e.AddEvent(dup), true
}

// AddLane appends a lane after the existing ones.
func (e *Editor) AddLane(l Lane) Lane {
	l.ID = e.newID()
	l.Order = len(e.lanes)
	if l.Height == 0 {
		l.Height = DefaultLaneHeight
	}
	e.lanes = append(e.lanes, l)
	e.history.Push(Entry{Action: ActionAddLane, Index: len(e.lanes) - 1, Lane: l})
	return l
}

func (e *Editor) UpdateLane(l Lane) bool {
	i := e.laneIndex(l.ID)
	if i < 0 {
		return false
	}
	prev := e.lanes[i]
	e.lanes[i] = l
	e.history.Push(Entry{Action: ActionUpdateLane, Index: i, Lane: l, PrevLane: prev})
	return true
}

// DeleteLane removes a lane and moves its events to the main lane. The last
// remaining lane cannot be deleted.
func (e *Editor) DeleteLane(id string) bool {
	if len(e.lanes) <= 1 {
		return false
	}
	i := e.laneIndex(id)
	if i < 0 {
		return false
	}
	lane := e.lanes[i]
	e.lanes = slices.Delete(e.lanes, i, i+1)
	moved := e.moveLaneEvents(id, MainLaneID)

	e.history.Push(Entry{Action: ActionDeleteLane, Index: i, Lane: lane, Moved: moved})
	return true
}

func (e *Editor) moveLaneEvents(from, to string) []string {
	var moved []string
	for i := range e.events {
		if e.events[i].Lane == from {
			e.events[i].Lane = to
			moved = append(moved, e.events[i].ID)
		}
	}
	return moved
}

// SelectEvent replaces the selection with id, or toggles id in it when
// multi is set.
func (e *Editor) SelectEvent(id string, multi bool) {
	if !multi {
		e.selected = []string{id}
		return
	}
	if i := slices.Index(e.selected, id); i >= 0 {
		e.selected = slices.Delete(e.selected, i, i+1)
		return
	}
	e.selected = append(e.selected, id)
}

func (e *Editor) ClearSelection() {
	e.selected = nil
}
