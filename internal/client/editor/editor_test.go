package editor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newEditor() *Editor {
	e := New(WithClock(func() time.Time { return fixedNow }))
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return e
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestNew_Defaults(t *testing.T) {
	e := newEditor()

	assert.Equal(t, []Lane{{ID: "main", Name: "Main Timeline", Color: "#3498db", Height: 120, Order: 0}}, e.Lanes())
	assert.Len(t, e.Categories(), 8)
	assert.Equal(t, Category{ID: "deadline", Name: "Deadline", Color: "#e74c3c"}, e.Categories()[3])

	v := e.Viewport()
	assert.Equal(t, fixedNow, v.CenterDate)
	assert.Equal(t, fixedNow.Add(-365*24*time.Hour), v.StartDate)
	assert.Equal(t, fixedNow.Add(365*24*time.Hour), v.EndDate)
	assert.Equal(t, 1.0, v.ZoomLevel)
	assert.Equal(t, 15.0, v.PixelsPerUnit)
	assert.False(t, e.CanUndo())
	assert.False(t, e.CanRedo())
}

func TestAddEvent_Defaults(t *testing.T) {
	e := newEditor()

	ev := e.AddEvent(Event{Title: "Kickoff", StartDate: day(1)})
	assert.Equal(t, "id-1", ev.ID)
	assert.Equal(t, "main", ev.Lane)
	assert.Equal(t, StatusPlanned, ev.Status)
	assert.Equal(t, PriorityMedium, ev.Priority)
	assert.Equal(t, fixedNow, ev.CreatedAt)

	kept := e.AddEvent(Event{Title: "Review", StartDate: day(2), Lane: "qa", Status: StatusCompleted, Priority: PriorityHigh})
	assert.Equal(t, "qa", kept.Lane)
	assert.Equal(t, StatusCompleted, kept.Status)
	assert.Equal(t, PriorityHigh, kept.Priority)
	assert.Len(t, e.Events(), 2)
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	e := newEditor()
	ev := e.AddEvent(Event{Title: "A", StartDate: day(1)})
	e.SelectEvent(ev.ID, false)

	ev.Title = "B"
	require.True(t, e.UpdateEvent(ev))
	got, ok := e.Event(ev.ID)
	require.True(t, ok)
	assert.Equal(t, "B", got.Title)
	assert.False(t, e.UpdateEvent(Event{ID: "missing"}))

	require.True(t, e.DeleteEvent(ev.ID))
	assert.Empty(t, e.Events())
	assert.Empty(t, e.Selected())
	assert.False(t, e.DeleteEvent(ev.ID))
}

func TestDuplicateEvent(t *testing.T) {
	e := newEditor()
	end := day(3)
	ev := e.AddEvent(Event{Title: "Trip", StartDate: day(1), EndDate: &end, Tags: []string{"x"}})

	dup, ok := e.DuplicateEvent(ev.ID)
	require.True(t, ok)
	assert.Equal(t, "Trip (Copy)", dup.Title)
	assert.NotEqual(t, ev.ID, dup.ID)
	assert.Equal(t, day(2), dup.StartDate)
	assert.Equal(t, day(4), *dup.EndDate)

	orig, _ := e.Event(ev.ID)
	assert.Equal(t, day(3), *orig.EndDate)

	_, ok = e.DuplicateEvent("missing")
	assert.False(t, ok)
}

func TestLanes(t *testing.T) {
	e := newEditor()

	lane := e.AddLane(Lane{Name: "QA"})
	assert.Equal(t, 1, lane.Order)
	assert.Equal(t, 120, lane.Height)

	tall := e.AddLane(Lane{Name: "Ops", Height: 200})
	assert.Equal(t, 2, tall.Order)
	assert.Equal(t, 200, tall.Height)

	ev := e.AddEvent(Event{Title: "Test", StartDate: day(1), Lane: lane.ID})

	lane.Name = "Quality"
	require.True(t, e.UpdateLane(lane))
	assert.Equal(t, "Quality", e.Lanes()[1].Name)

	require.True(t, e.DeleteLane(lane.ID))
	got, _ := e.Event(ev.ID)
	assert.Equal(t, "main", got.Lane)
	assert.Len(t, e.Lanes(), 2)

	require.True(t, e.DeleteLane(tall.ID))
	assert.False(t, e.DeleteLane("main"), "the last lane stays")
	assert.Len(t, e.Lanes(), 1)
}

func TestSelection(t *testing.T) {
	e := newEditor()

	e.SelectEvent("a", false)
	e.SelectEvent("b", true)
	assert.Equal(t, []string{"a", "b"}, e.Selected())

	e.SelectEvent("a", true)
	assert.Equal(t, []string{"b"}, e.Selected())

	e.SelectEvent("c", false)
	assert.Equal(t, []string{"c"}, e.Selected())

	e.ClearSelection()
	assert.Empty(t, e.Selected())
}

func TestSetViewport_ClampsZoom(t *testing.T) {
	e := newEditor()

	e.SetViewport(Viewport{ZoomLevel: 64, PixelsPerUnit: 500})
	assert.Equal(t, 16.0, e.Viewport().ZoomLevel)
	assert.Equal(t, 100.0, e.Viewport().PixelsPerUnit)

	e.SetViewport(Viewport{ZoomLevel: 0.01, PixelsPerUnit: 0})
	assert.Equal(t, 0.125, e.Viewport().ZoomLevel)
	assert.Equal(t, 2.0, e.Viewport().PixelsPerUnit)

	e.SetViewport(Viewport{ZoomLevel: 3, PixelsPerUnit: 40})
	assert.Equal(t, 3.0, e.Viewport().ZoomLevel)
	assert.Equal(t, 40.0, e.Viewport().PixelsPerUnit)
}

func TestViewportZoom(t *testing.T) {
	e := newEditor()

	e.ZoomIn()
	assert.Equal(t, 2.0, e.Viewport().ZoomLevel)
	assert.Equal(t, 22.5, e.Viewport().PixelsPerUnit)

	for range 10 {
		e.ZoomIn()
	}
	assert.Equal(t, 16.0, e.Viewport().ZoomLevel)
	assert.Equal(t, 100.0, e.Viewport().PixelsPerUnit)

	for range 20 {
		e.ZoomOut()
	}
	assert.Equal(t, 0.125, e.Viewport().ZoomLevel)
	assert.Equal(t, 2.0, e.Viewport().PixelsPerUnit)

	e.ResetZoom()
	assert.Equal(t, 1.0, e.Viewport().ZoomLevel)
	assert.Equal(t, 15.0, e.Viewport().PixelsPerUnit)
}

func TestCenterOn(t *testing.T) {
	e := newEditor()
	ev := e.AddEvent(Event{Title: "A", StartDate: day(5)})

	require.True(t, e.CenterOnEvent(ev.ID))
	assert.Equal(t, day(5), e.Viewport().CenterDate)
	assert.False(t, e.CenterOnEvent("missing"))

	e.CenterOnDate(day(9))
	assert.Equal(t, day(9), e.Viewport().CenterDate)
}

func TestFromTimeline(t *testing.T) {
	tl := models.NewTimelineData("t1", "Trip", fixedNow)
	desc := "leave early"
	tl.Events = []models.Event{{ID: "e1", Title: "Departure", StartDate: day(1), Description: &desc}}

	e := FromTimeline(tl)
	evs := e.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, "e1", evs[0].ID)
	assert.Equal(t, "leave early", evs[0].Description)
	assert.Equal(t, "main", evs[0].Lane)
	assert.False(t, e.CanUndo())
}

func TestExportCSV(t *testing.T) {
	e := newEditor()
	end := time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)
	e.AddEvent(Event{Title: `Say "hi"`, StartDate: day(1), EndDate: &end, Category: "work", Link: "https://x"})
	e.AddEvent(Event{Title: "Other", StartDate: day(3), Category: "personal"})
	e.SetFilter(Filter{Categories: []string{"work"}})

	lines := strings.Split(e.ExportCSV(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"Title","Start Date","End Date","Description","Link","Category","Priority","Status"`, lines[0])
	assert.Equal(t, `"Say ""hi""","2024-01-01T00:00:00.000Z","2024-01-02T10:30:00.000Z","","https://x","work","medium","planned"`, lines[1])
}

func TestExportImportJSON(t *testing.T) {
	e := newEditor()
	e.AddEvent(Event{Title: "A", StartDate: day(1), Tags: []string{"t"}})
	e.AddLane(Lane{Name: "QA"})

	data, err := e.ExportJSON()
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "exportedAt")
	assert.Contains(t, doc, "settings")

	other := newEditor()
	other.SelectEvent("x", false)
	require.NoError(t, other.ImportJSON(data))
	require.Len(t, other.Events(), 1)
	assert.Equal(t, "A", other.Events()[0].Title)
	assert.Equal(t, []string{"t"}, other.Events()[0].Tags)
	assert.Len(t, other.Lanes(), 2)
	assert.Empty(t, other.Selected())
	assert.False(t, other.CanUndo())

	require.NoError(t, other.ImportJSON([]byte(`{"lanes": []}`)))
	assert.Len(t, other.Lanes(), 2)
	assert.Len(t, other.Events(), 1)

	assert.ErrorIs(t, other.ImportJSON([]byte(`nope`)), ErrInvalidImport)
}
