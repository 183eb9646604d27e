package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/railohail/timeline-rail/internal/client/editor"
	"github.com/railohail/timeline-rail/internal/client/models"
)

var errNoTimeline = errors.New("no timeline open")

// pick resolves ref as a 1-based position in ids, falling back to a literal
// id.
func pick(ids []string, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ids) {
			return "", fmt.Errorf("no item #%d", n)
		}
		return ids[n-1], nil
	}
	return ref, nil
}

func (a *App) current(ctx context.Context) (*models.TimelineData, error) {
	if err := a.ensureReady(ctx); err != nil {
		return nil, err
	}
	t := a.store.Current()
	if t == nil {
		return nil, errNoTimeline
	}
	return t, nil
}

// Timelines lists the user's timeline ids, marking the open one.
func (a *App) Timelines(ctx context.Context) error {
	if err := a.ensureReady(ctx); err != nil {
		return err
	}
	if err := a.store.LoadAvailableTimelines(ctx); err != nil {
		return err
	}

	var openID, openName string
	if t := a.store.Current(); t != nil {
		openID, openName = t.ID, t.Name
	}
	for i, id := range a.store.Available() {
		if id == openID {
			printlnFn(fmt.Sprintf("* %d. %s  %s", i+1, id, openName))
			continue
		}
		printlnFn(fmt.Sprintf("  %d. %s", i+1, id))
	}
	return nil
}

func (a *App) NewTimeline(ctx context.Context, name string) error {
	if err := a.ensureReady(ctx); err != nil {
		return err
	}
	t, err := a.store.CreateTimeline(ctx, name)
	if err != nil {
		return err
	}
	printlnFn("Created", t.Name, t.ID)
	return nil
}

func (a *App) OpenTimeline(ctx context.Context, ref string) error {
	if err := a.ensureReady(ctx); err != nil {
		return err
	}
	id, err := pick(a.store.Available(), ref)
	if err != nil {
		return err
	}
	if err := a.store.LoadTimeline(ctx, id); err != nil {
		return err
	}
	printlnFn("Opened", a.store.Current().Name)
	return nil
}

func (a *App) RemoveTimeline(ctx context.Context, ref string) error {
	if err := a.ensureReady(ctx); err != nil {
		return err
	}
	id, err := pick(a.store.Available(), ref)
	if err != nil {
		return err
	}
	if err := a.store.DeleteTimeline(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted", id)
	return nil
}

func (a *App) Info(ctx context.Context) error {
	if err := a.ensureReady(ctx); err != nil {
		return err
	}
	info, err := a.store.Info(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("backend: %s, timelines: %d, images: %d, size: %d bytes",
		a.config.StorageBackend, info.TotalTimelines, info.TotalImages, info.StorageSize))
	return nil
}

// Export writes the open timeline's export document to path, or prints it
// when path is empty.
func (a *App) Export(ctx context.Context, path string) error {
	if _, err := a.current(ctx); err != nil {
		return err
	}
	data, err := a.store.ExportTimeline(ctx)
	if err != nil {
		return err
	}
	return a.emit(path, data)
}

func (a *App) Import(ctx context.Context, path string) error {
	if err := a.ensureReady(ctx); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := a.store.ImportTimeline(ctx, data); err != nil {
		return err
	}
	t := a.store.Current()
	printlnFn(fmt.Sprintf("Imported %s with %d events", t.Name, len(t.Events)))
	return nil
}

// ExportCSV writes the open timeline's events as CSV.
func (a *App) ExportCSV(ctx context.Context, path string) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	return a.emit(path, []byte(editor.FromTimeline(t).ExportCSV()))
}

// Search prints the events whose text fields contain text.
func (a *App) Search(ctx context.Context, text string) error {
	t, err := a.current(ctx)
	if err != nil {
		return err
	}
	ed := editor.FromTimeline(t)
	ed.SetFilter(editor.Filter{SearchText: text})

	found := ed.FilteredEvents()
	for _, ev := range found {
		printlnFn(fmt.Sprintf("%s  %s  %s", ev.StartDate.Format("2006-01-02"), ev.ID, ev.Title))
	}
	printlnFn(fmt.Sprintf("%d of %d events match", len(found), len(t.Events)))
	return nil
}

func (a *App) emit(path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(a.out, string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	printlnFn("Written to", path)
	return nil
}
