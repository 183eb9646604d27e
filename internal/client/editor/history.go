package editor

import "slices"

const DefaultHistoryCapacity = 100

type Action string

const (
	ActionAddEvent    Action = "add_event"
	ActionUpdateEvent Action = "update_event"
	ActionDeleteEvent Action = "delete_event"
	ActionAddLane     Action = "add_lane"
	ActionUpdateLane  Action = "update_lane"
	ActionDeleteLane  Action = "delete_lane"
)

// Entry records one undoable change. Index is the position the event or
// lane had (or was given) in its list; Moved holds the events a deleted
// lane handed to the main lane.
type Entry struct {
	Action    Action
	Index     int
	Event     Event
	PrevEvent Event
	Lane      Lane
	PrevLane  Lane
	Moved     []string
}

// History is a bounded undo log. index points at the last applied entry
// and is -1 when there is nothing to undo.
type History struct {
	entries  []Entry
	index    int
	capacity int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{index: -1, capacity: capacity}
}

// Push drops any redo tail, appends e and evicts the oldest entry when the
// log is over capacity.
func (h *History) Push(e Entry) {
	h.entries = append(h.entries[:h.index+1], e)
	h.index = len(h.entries) - 1
	if len(h.entries) > h.capacity {
		h.entries = slices.Delete(h.entries, 0, 1)
		h.index--
	}
}

func (h *History) Len() int      { return len(h.entries) }
func (h *History) Index() int    { return h.index }
func (h *History) CanUndo() bool { return h.index >= 0 }
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }

// undo returns the entry to revert and steps back.
func (h *History) undo() (Entry, bool) {
	if !h.CanUndo() {
		return Entry{}, false
	}
	e := h.entries[h.index]
	h.index--
	return e, true
}

// redo steps forward and returns the entry to reapply.
func (h *History) redo() (Entry, bool) {
	if !h.CanRedo() {
		return Entry{}, false
	}
	h.index++
	return h.entries[h.index], true
}

func (h *History) Clear() {
	h.entries = nil
	h.index = -1
}

// Undo reverts the last applied change. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	entry, ok := e.history.undo()
	if !ok {
		return false
	}
	e.apply(entry, true)
	return true
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() bool {
	entry, ok := e.history.redo()
	if !ok {
		return false
	}
	e.apply(entry, false)
	return true
}

// apply replays entry forwards or backwards without recording history.
func (e *Editor) apply(entry Entry, undo bool) {
	switch entry.Action {
	case ActionAddEvent:
		if undo {
			e.dropEvent(entry.Event.ID)
		} else {
			e.insertEvent(entry.Index, entry.Event)
		}
	case ActionDeleteEvent:
		if undo {
			e.insertEvent(entry.Index, entry.Event)
		} else {
			e.dropEvent(entry.Event.ID)
		}
	case ActionUpdateEvent:
		ev := entry.Event
		if undo {
			ev = entry.PrevEvent
		}
		if i := e.eventIndex(ev.ID); i >= 0 {
			e.events[i] = ev.clone()
		}

	case ActionAddLane:
		if undo {
			e.dropLane(entry.Lane.ID)
		} else {
			e.insertLane(entry.Index, entry.Lane)
		}
	case ActionDeleteLane:
		if undo {
			e.insertLane(entry.Index, entry.Lane)
			for _, id := range entry.Moved {
				if i := e.eventIndex(id); i >= 0 {
					e.events[i].Lane = entry.Lane.ID
				}
			}
		} else {
			e.dropLane(entry.Lane.ID)
			e.moveLaneEvents(entry.Lane.ID, MainLaneID)
		}
	case ActionUpdateLane:
		l := entry.Lane
		if undo {
			l = entry.PrevLane
		}
		if i := e.laneIndex(l.ID); i >= 0 {
			e.lanes[i] = l
		}
	}
}

func (e *Editor) insertEvent(i int, ev Event) {
	i = min(max(i, 0), len(e.events))
	e.events = slices.Insert(e.events, i, ev.clone())
}

func (e *Editor) dropEvent(id string) {
	if i := e.eventIndex(id); i >= 0 {
		e.removeEvent(i)
	}
}

func (e *Editor) insertLane(i int, l Lane) {
	i = min(max(i, 0), len(e.lanes))
	e.lanes = slices.Insert(e.lanes, i, l)
}

func (e *Editor) dropLane(id string) {
	if i := e.laneIndex(id); i >= 0 {
		e.lanes = slices.Delete(e.lanes, i, i+1)
	}
}
