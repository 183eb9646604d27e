package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/client/store"
	"github.com/railohail/timeline-rail/internal/dataurl"
)

// dateFmt is shown to the user and accepted back by timex.ParseDate.
const dateFmt = "2006-01-02T15:04"

// askRange prompts for a start date and an end date. Highlights need both,
// events only the start.
func (a *App) askRange(endRequired bool) (start, end string, err error) {
	if start, err = GetDate(a.reader, "Start date (YYYY-MM-DD or ISO-8601)", false, a.out); err != nil {
		return "", "", err
	}
	label := "End date (optional)"
	if endRequired {
		label = "End date"
	}
	end, err = GetDate(a.reader, label, !endRequired, a.out)
	return start, end, err
}

func eventIDs(t *models.TimelineData) []string {
	ids := make([]string, len(t.Events))
	for i, ev := range t.Events {
		ids[i] = ev.ID
	}
	return ids
}

func highlightIDs(t *models.TimelineData) []string {
	ids := make([]string, len(t.Highlights))
	for i, h := range t.Highlights {
		ids[i] = h.ID
	}
	return ids
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatEnd(t *models.TimelineData, i int) string {
	if end := t.Events[i].EndDate; end != nil {
		return " - " + end.Format(dateFmt)
	}
	return ""
}

func (a *App) Events(ctx context.Context) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	if len(t.Events) == 0 {
		printlnFn("No events")
		return nil
	}
	for i, ev := range t.Events {
		line := fmt.Sprintf("%d. %s%s  %s", i+1, ev.StartDate.Format(dateFmt), formatEnd(t, i), ev.Title)
		if ev.Image != nil {
			line += "  [image]"
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) AddEvent(ctx context.Context) error {
	if _, err := a.current(ctx); err != nil {
		return err
	}

	var in store.EventInput
	var err error
	if in.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if in.StartDate, in.EndDate, err = a.askRange(false); err != nil {
		return err
	}
	if in.Link, err = getSimpleText(a.reader, "Link (optional)", a.out); err != nil {
		return err
	}
	if in.Color, err = getSimpleText(a.reader, "Color (optional)", a.out); err != nil {
		return err
	}
	if in.Description, err = GetMultiline(a.reader, "Description (optional)", a.out); err != nil {
		return err
	}

	if err := a.store.AddEvent(ctx, in); err != nil {
		return err
	}
	printlnFn("Event added")
	return nil
}

func (a *App) EditEvent(ctx context.Context, ref string) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	id, err := pick(eventIDs(t), ref)
	if err != nil {
		return err
	}
	var ev *models.Event
	for i := range t.Events {
		if t.Events[i].ID == id {
			ev = &t.Events[i]
		}
	}
	if ev == nil {
		return fmt.Errorf("no event %s", id)
	}

	end := ""
	if ev.EndDate != nil {
		end = ev.EndDate.Format(dateFmt)
	}

	var p store.EventPatch
	fields := []struct {
		label   string
		current string
		dst     **string
	}{
		{"Title", ev.Title, &p.Title},
		{"Start date", ev.StartDate.Format(dateFmt), &p.StartDate},
		{"End date", end, &p.EndDate},
		{"Description", deref(ev.Description), &p.Description},
		{"Link", deref(ev.Link), &p.Link},
		{"Color", deref(ev.Color), &p.Color},
	}
	for _, f := range fields {
		v, err := GetEdit(a.reader, f.label, f.current, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	if err := a.store.UpdateEvent(ctx, id, p); err != nil {
		return err
	}
	printlnFn("Event updated")
	return nil
}

func (a *App) RemoveEvent(ctx context.Context, ref string) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	id, err := pick(eventIDs(t), ref)
	if err != nil {
		return err
	}
	if err := a.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	printlnFn("Event deleted")
	return nil
}

// Upload stores the image at path and points the event at it.
func (a *App) Upload(ctx context.Context, ref, path string) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	id, err := pick(eventIDs(t), ref)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	mime := mimetype.Detect(data).String()
	if !strings.HasPrefix(mime, "image/") {
		return fmt.Errorf("%s is %s, not an image", path, mime)
	}

	filename, err := a.store.SaveImage(ctx, id, dataurl.Encode(mime, data))
	if err != nil {
		return err
	}
	if err := a.store.UpdateEvent(ctx, id, store.EventPatch{Image: &filename}); err != nil {
		return err
	}
	printlnFn("Image stored as", filename)
	return nil
}

func (a *App) Highlights(ctx context.Context) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	if len(t.Highlights) == 0 {
		printlnFn("No highlights")
		return nil
	}
	for i, h := range t.Highlights {
		label := deref(h.StartLabel)
		if l := deref(h.EndLabel); l != "" {
			label += " / " + l
		}
		printlnFn(fmt.Sprintf("%d. %s - %s  %s  %s", i+1,
			h.StartDate.Format(dateFmt), h.EndDate.Format(dateFmt), h.Color, label))
	}
	return nil
}

func (a *App) AddHighlight(ctx context.Context) error {
	if _, err := a.current(ctx); err != nil {
		return err
	}

	var in store.HighlightInput
	var err error
	if in.StartDate, in.EndDate, err = a.askRange(true); err != nil {
		return err
	}
	prompts := []struct {
		label string
		dst   *string
	}{
		{"Start label (optional)", &in.StartLabel},
		{"End label (optional)", &in.EndLabel},
		{"Color (optional)", &in.Color},
	}
	for _, p := range prompts {
		if *p.dst, err = getSimpleText(a.reader, p.label, a.out); err != nil {
			return err
		}
	}

	if err := a.store.AddHighlight(ctx, in); err != nil {
		return err
	}
	printlnFn("Highlight added")
	return nil
}

func (a *App) RemoveHighlight(ctx context.Context, ref string) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	id, err := pick(highlightIDs(t), ref)
	if err != nil {
		return err
	}
	if err := a.store.DeleteHighlight(ctx, id); err != nil {
		return err
	}
	printlnFn("Highlight deleted")
	return nil
}
