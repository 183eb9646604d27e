package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dataurl"
)

// EventInput describes a new event. Dates are ISO-8601 strings as typed by
// a user; see models.ParseDate.
type EventInput struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	Color       string
	Image       string
	Link        string
	Track       int
}

// EventPatch changes the non-nil fields of an event. An empty string
// clears an optional field.
type EventPatch struct {
	Title       *string
	Description *string
	StartDate   *string
	EndDate     *string
	Color       *string
	Image       *string
	Link        *string
	Track       *int
}

type HighlightInput struct {
	StartDate  string
	EndDate    string
	StartLabel string
	EndLabel   string
	Color      string
}

type HighlightPatch struct {
	StartDate  *string
	EndDate    *string
	StartLabel *string
	EndLabel   *string
	Color      *string
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func validation(msg string) error {
	return common.WithMessage(common.ErrorValidation, msg)
}

func parseEnd(start time.Time, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	end, err := models.ParseDate(s)
	if err != nil {
		return nil, validation(fmt.Sprintf("invalid end date: %v", err))
	}
	if end.Before(start) {
		return nil, validation("End date must not be before start date")
	}
	return &end, nil
}

func findEvent(t *models.TimelineData, id string) (int, error) {
	i := slices.IndexFunc(t.Events, func(e models.Event) bool { return e.ID == id })
	if i < 0 {
		return -1, common.WithMessage(common.ErrorNotFound, "Event not found")
	}
	return i, nil
}

func findHighlight(t *models.TimelineData, id string) (int, error) {
	i := slices.IndexFunc(t.Highlights, func(h models.Highlight) bool { return h.ID == id })
	if i < 0 {
		return -1, common.WithMessage(common.ErrorNotFound, "Highlight not found")
	}
	return i, nil
}

// AddEvent appends an event to the open timeline and saves it.
func (s *Store) AddEvent(ctx context.Context, in EventInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "add event", func(t *models.TimelineData) error {
		if strings.TrimSpace(in.Title) == "" {
			return validation("Title is required")
		}
		start, err := models.ParseDate(in.StartDate)
		if err != nil {
			return validation(fmt.Sprintf("invalid start date: %v", err))
		}
		end, err := parseEnd(start, in.EndDate)
		if err != nil {
			return err
		}
		t.Events = append(t.Events, models.Event{
			ID:          uuid.NewString(),
			Title:       in.Title,
			Description: optional(in.Description),
			StartDate:   start,
			EndDate:     end,
			Color:       optional(in.Color),
			Image:       optional(in.Image),
			Link:        optional(in.Link),
			Track:       in.Track,
		})
		return nil
	})
}

func (s *Store) UpdateEvent(ctx context.Context, id string, p EventPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "update event", func(t *models.TimelineData) error {
		i, err := findEvent(t, id)
		if err != nil {
			return err
		}
		e := t.Events[i]

		if p.Title != nil {
			if strings.TrimSpace(*p.Title) == "" {
				return validation("Title is required")
			}
			e.Title = *p.Title
		}
		if p.StartDate != nil {
			if e.StartDate, err = models.ParseDate(*p.StartDate); err != nil {
				return validation(fmt.Sprintf("invalid start date: %v", err))
			}
		}
		if p.EndDate != nil {
			if e.EndDate, err = parseEnd(e.StartDate, *p.EndDate); err != nil {
				return err
			}
		} else if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
			return validation("End date must not be before start date")
		}
		if p.Description != nil {
			e.Description = optional(*p.Description)
		}
		if p.Color != nil {
			e.Color = optional(*p.Color)
		}
		if p.Image != nil {
			e.Image = optional(*p.Image)
		}
		if p.Link != nil {
			e.Link = optional(*p.Link)
		}
		if p.Track != nil {
			e.Track = *p.Track
		}

		t.Events[i] = e
		return nil
	})
}

// DeleteEvent removes an event, deleting its image first when it has one.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "delete event", func(t *models.TimelineData) error {
		i, err := findEvent(t, id)
		if err != nil {
			return err
		}
		if img := t.Events[i].Image; img != nil && *img != "" {
			if err := s.storage.DeleteImage(ctx, *img); err != nil {
				return fmt.Errorf("delete image %s: %w", *img, err)
			}
		}
		t.Events = slices.Delete(t.Events, i, i+1)
		return nil
	})
}

func (s *Store) AddHighlight(ctx context.Context, in HighlightInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "add highlight", func(t *models.TimelineData) error {
		start, err := models.ParseDate(in.StartDate)
		if err != nil {
			return validation(fmt.Sprintf("invalid start date: %v", err))
		}
		end, err := models.ParseDate(in.EndDate)
		if err != nil {
			return validation(fmt.Sprintf("invalid end date: %v", err))
		}
		if end.Before(start) {
			return validation("End date must not be before start date")
		}
		color := in.Color
		if color == "" {
			color = models.DefaultHighlightColor
		}
		t.Highlights = append(t.Highlights, models.Highlight{
			ID:         uuid.NewString(),
			StartDate:  start,
			EndDate:    end,
			StartLabel: optional(in.StartLabel),
			EndLabel:   optional(in.EndLabel),
			Color:      color,
		})
		return nil
	})
}

func (s *Store) UpdateHighlight(ctx context.Context, id string, p HighlightPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "update highlight", func(t *models.TimelineData) error {
		i, err := findHighlight(t, id)
		if err != nil {
			return err
		}
		h := t.Highlights[i]

		if p.StartDate != nil {
			if h.StartDate, err = models.ParseDate(*p.StartDate); err != nil {
				return validation(fmt.Sprintf("invalid start date: %v", err))
			}
		}
		if p.EndDate != nil {
			if h.EndDate, err = models.ParseDate(*p.EndDate); err != nil {
				return validation(fmt.Sprintf("invalid end date: %v", err))
			}
		}
		if h.EndDate.Before(h.StartDate) {
			return validation("End date must not be before start date")
		}
		if p.StartLabel != nil {
			h.StartLabel = optional(*p.StartLabel)
		}
		if p.EndLabel != nil {
			h.EndLabel = optional(*p.EndLabel)
		}
		if p.Color != nil && *p.Color != "" {
			h.Color = *p.Color
		}

		t.Highlights[i] = h
		return nil
	})
}

func (s *Store) DeleteHighlight(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "delete highlight", func(t *models.TimelineData) error {
		i, err := findHighlight(t, id)
		if err != nil {
			return err
		}
		t.Highlights = slices.Delete(t.Highlights, i, i+1)
		return nil
	})
}

// imageExt maps a MIME type to a file extension, "jpg" when unknown.
func imageExt(mimeType string) string {
	sub, ok := strings.CutPrefix(mimeType, "image/")
	if !ok || sub == "" {
		return "jpg"
	}
	sub, _, _ = strings.Cut(sub, "+")
	if sub == "jpeg" {
		return "jpg"
	}
	return sub
}

// SaveImage stores a data URL as event-<id>.<ext> and returns the filename
// the backend kept it under. An empty eventID gets a random one.
func (s *Store) SaveImage(ctx context.Context, eventID, dataURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""

	if eventID == "" {
		eventID = uuid.NewString()
	}
	name := fmt.Sprintf("event-%s.%s", eventID, imageExt(dataurl.MimeType(dataURL, "")))

	stored, err := s.storage.SaveImage(ctx, name, dataURL)
	if err != nil {
		return "", s.fail(ctx, "save image", err)
	}
	return stored, nil
}

func (s *Store) LoadImage(ctx context.Context, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""

	data, err := s.storage.LoadImage(ctx, filename)
	if err != nil {
		return "", s.fail(ctx, "load image", err)
	}
	return data, nil
}
