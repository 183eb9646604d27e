package storage

import "github.com/railohail/timeline-rail/internal/client/models"

type OpKind int

const (
	OpDelete OpKind = iota
	OpUpdate
	OpCreate
)

func (k OpKind) String() string {
	switch k {
	case OpDelete:
		return "delete"
	case OpUpdate:
		return "update"
	case OpCreate:
		return "create"
	}
	return "unknown"
}

type ChildKind int

const (
	ChildEvent ChildKind = iota
	ChildHighlight
)

func (k ChildKind) String() string {
	if k == ChildHighlight {
		return "highlight"
	}
	return "event"
}

// Op is one step of a sync. Index points into the new snapshot's Events or
// Highlights for updates and creates, and is -1 for deletes.
type Op struct {
	Kind  OpKind
	Child ChildKind
	ID    string
	Index int
}

// PlanSync diffs two snapshots of the same timeline by child id. Children
// only in prev are deleted, children in both are updated and children only
// in next (or without an id) are created. Events come before highlights,
// and within each kind deletes come before updates before creates.
// A nil prev plans a create for every child of next.
func PlanSync(prev, next *models.TimelineData) []Op {
	var prevEvents, prevHighlights []string
	if prev != nil {
		for _, e := range prev.Events {
			prevEvents = append(prevEvents, e.ID)
		}
		for _, h := range prev.Highlights {
			prevHighlights = append(prevHighlights, h.ID)
		}
	}

	nextEvents := make([]string, 0, len(next.Events))
	for _, e := range next.Events {
		nextEvents = append(nextEvents, e.ID)
	}
	nextHighlights := make([]string, 0, len(next.Highlights))
	for _, h := range next.Highlights {
		nextHighlights = append(nextHighlights, h.ID)
	}

	ops := planChildren(ChildEvent, prevEvents, nextEvents)
	return append(ops, planChildren(ChildHighlight, prevHighlights, nextHighlights)...)
}

func planChildren(child ChildKind, prev, next []string) []Op {
	inNext := make(map[string]struct{}, len(next))
	for _, id := range next {
		if id != "" {
			inNext[id] = struct{}{}
		}
	}
	inPrev := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		inPrev[id] = struct{}{}
	}

	var deletes, updates, creates []Op
	for _, id := range prev {
		if _, ok := inNext[id]; !ok {
			deletes = append(deletes, Op{Kind: OpDelete, Child: child, ID: id, Index: -1})
		}
	}
	for i, id := range next {
		if _, ok := inPrev[id]; ok && id != "" {
			updates = append(updates, Op{Kind: OpUpdate, Child: child, ID: id, Index: i})
			continue
		}
		creates = append(creates, Op{Kind: OpCreate, Child: child, ID: id, Index: i})
	}

	ops := append(deletes, updates...)
	return append(ops, creates...)
}
