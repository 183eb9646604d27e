package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/dbx"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/repositories/repomanager"
	"github.com/railohail/timeline-rail/internal/timex"
)

const maxTitleLength = 500

var (
	errTimelineNotFound  = common.WithMessage(common.ErrorNotFound, "Timeline not found")
	errEventNotFound     = common.WithMessage(common.ErrorNotFound, "Event not found")
	errHighlightNotFound = common.WithMessage(common.ErrorNotFound, "Highlight not found")
	errEndBeforeStart    = common.WithMessage(common.ErrorValidation, "End date must not be before start date")
)

type TimelineInput struct {
	Name     string          `json:"name" validate:"required"`
	Settings json.RawMessage `json:"settings"`
}

type EventInput struct {
	Title       string  `json:"title" validate:"required,max=500"`
	Description *string `json:"description"`
	StartDate   string  `json:"startDate" validate:"required"`
	EndDate     *string `json:"endDate"`
	Color       *string `json:"color"`
	Image       *string `json:"image"`
	Link        *string `json:"link"`
	Track       int     `json:"track"`
}

// Event validates the input and converts it into a model owned by timelineID.
func (in EventInput) Event(timelineID string) (*models.Event, error) {
	if err := checkStruct(in, "Title and start date are required"); err != nil {
		return nil, err
	}
	start, err := timex.ParseDate(in.StartDate)
	if err != nil {
		return nil, validationError("startDate is not a valid date")
	}
	end, err := timex.ParseOptionalDate(in.EndDate)
	if err != nil {
		return nil, validationError("endDate is not a valid date")
	}
	if end != nil && end.Before(start) {
		return nil, errEndBeforeStart
	}
	return &models.Event{
		TimelineID:  timelineID,
		Title:       in.Title,
		Description: in.Description,
		StartDate:   start,
		EndDate:     end,
		Color:       in.Color,
		Image:       in.Image,
		Link:        in.Link,
		Track:       in.Track,
	}, nil
}

type HighlightInput struct {
	StartDate  string  `json:"startDate" validate:"required"`
	EndDate    string  `json:"endDate" validate:"required"`
	StartLabel *string `json:"startLabel"`
	EndLabel   *string `json:"endLabel"`
	Color      string  `json:"color"`
}

func (in HighlightInput) Highlight(timelineID string) (*models.Highlight, error) {
	if err := checkStruct(in, "Start date and end date are required"); err != nil {
		return nil, err
	}
	start, err := timex.ParseDate(in.StartDate)
	if err != nil {
		return nil, validationError("startDate is not a valid date")
	}
	end, err := timex.ParseDate(in.EndDate)
	if err != nil {
		return nil, validationError("endDate is not a valid date")
	}
	if end.Before(start) {
		return nil, errEndBeforeStart
	}
	return &models.Highlight{
		TimelineID: timelineID,
		StartDate:  start,
		EndDate:    end,
		StartLabel: in.StartLabel,
		EndLabel:   in.EndLabel,
		Color:      in.Color,
	}, nil
}

// ImageDeleter removes an image by filename. Event deletion uses it to drop
// the attached picture.
type ImageDeleter interface {
	Delete(ctx context.Context, filename string) error
}

// TimelineService owns timelines and their events and highlights. Every
// method first resolves the timeline scoped to the caller, so a foreign or
// malformed id is reported as "Timeline not found".
type TimelineService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      ImageDeleter
	logger      logging.Logger
}

func NewTimelineService(db *sql.DB, m repomanager.RepositoryManager, images ImageDeleter, logger logging.Logger) *TimelineService {
	return &TimelineService{
		db:          db,
		repomanager: m,
		images:      images,
		logger:      logger.With("module", "timelines"),
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func internalErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrorInternal, op, err)
}

func (s *TimelineService) List(ctx context.Context, userID string) ([]models.Timeline, error) {
	list, err := s.repomanager.Timelines(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, internalErr("list timelines", err)
	}
	return list, nil
}

func (s *TimelineService) Create(ctx context.Context, userID string, in TimelineInput) (*models.Timeline, error) {
	if err := checkStruct(in, "Timeline name is required"); err != nil {
		return nil, err
	}
	t, err := s.repomanager.Timelines(s.db).Create(ctx, &models.Timeline{UserID: userID, Name: in.Name, Settings: in.Settings})
	if err != nil {
		return nil, internalErr("create timeline", err)
	}
	return t, nil
}

// owned loads the timeline if it belongs to userID.
func (s *TimelineService) owned(ctx context.Context, db dbx.DBTX, id, userID string) (*models.Timeline, error) {
	if !validID(id) {
		return nil, errTimelineNotFound
	}
	t, err := s.repomanager.Timelines(db).Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errTimelineNotFound
		}
		return nil, internalErr("get timeline", err)
	}
	return t, nil
}

// GetFull reads the timeline with its events and highlights from a single
// read-only snapshot.
func (s *TimelineService) GetFull(ctx context.Context, id, userID string) (*models.TimelineFull, error) {
	if !validID(id) {
		return nil, errTimelineNotFound
	}

	var full *models.TimelineFull
	err := dbx.WithTx(ctx, s.db, dbx.ReadOnly, func(ctx context.Context, tx dbx.DBTX) error {
		t, err := s.owned(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		events, err := s.repomanager.Events(tx).ListByTimeline(ctx, t.ID)
		if err != nil {
			return internalErr("list events", err)
		}
		highlights, err := s.repomanager.Highlights(tx).ListByTimeline(ctx, t.ID)
		if err != nil {
			return internalErr("list highlights", err)
		}
		full = models.NewTimelineFull(t, events, highlights)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return full, nil
}

func (s *TimelineService) Update(ctx context.Context, id, userID string, raw map[string]json.RawMessage) (*models.Timeline, error) {
	patch, err := ParseTimelinePatch(raw)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, validationError("No valid updates provided")
	}
	if !validID(id) {
		return nil, errTimelineNotFound
	}

	t, err := s.repomanager.Timelines(s.db).Update(ctx, id, userID, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errTimelineNotFound
		}
		return nil, internalErr("update timeline", err)
	}
	return t, nil
}

// Delete removes the timeline; events and highlights go with it through the
// foreign key cascade.
func (s *TimelineService) Delete(ctx context.Context, id, userID string) error {
	if !validID(id) {
		return errTimelineNotFound
	}
	if _, err := s.repomanager.Timelines(s.db).Delete(ctx, id, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errTimelineNotFound
		}
		return internalErr("delete timeline", err)
	}
	return nil
}

func (s *TimelineService) CreateEvent(ctx context.Context, timelineID, userID string, in EventInput) (*models.Event, error) {
	e, err := in.Event(timelineID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, s.db, timelineID, userID); err != nil {
		return nil, err
	}
	created, err := s.repomanager.Events(s.db).Create(ctx, e)
	if err != nil {
		return nil, internalErr("create event", err)
	}
	return created, nil
}

// UpdateEvent applies the fields present in raw. An empty payload changes
// nothing and returns the stored event as is.
func (s *TimelineService) UpdateEvent(ctx context.Context, timelineID, eventID, userID string, raw map[string]json.RawMessage) (*models.Event, error) {
	patch, err := ParseEventPatch(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, s.db, timelineID, userID); err != nil {
		return nil, err
	}
	if !validID(eventID) {
		return nil, errEventNotFound
	}

	repo := s.repomanager.Events(s.db)

	if patch.Empty() || patch.StartDate.Set || patch.EndDate.Set {
		current, err := repo.Get(ctx, eventID, timelineID)
		if err != nil {
			return nil, s.eventErr("get event", err)
		}
		if patch.Empty() {
			return current, nil
		}
		start, end := current.StartDate, current.EndDate
		if patch.StartDate.Set {
			start = patch.StartDate.Value
		}
		if patch.EndDate.Set {
			end = nil
			if !patch.EndDate.Null {
				end = &patch.EndDate.Value
			}
		}
		if end != nil && end.Before(start) {
			return nil, errEndBeforeStart
		}
	}

	updated, err := repo.Update(ctx, eventID, timelineID, patch)
	if err != nil {
		return nil, s.eventErr("update event", err)
	}
	return updated, nil
}

// DeleteEvent removes the event and then, best effort, the image it
// referenced.
func (s *TimelineService) DeleteEvent(ctx context.Context, timelineID, eventID, userID string) error {
	if _, err := s.owned(ctx, s.db, timelineID, userID); err != nil {
		return err
	}
	if !validID(eventID) {
		return errEventNotFound
	}

	e, err := s.repomanager.Events(s.db).Delete(ctx, eventID, timelineID)
	if err != nil {
		return s.eventErr("delete event", err)
	}

	if name := e.ImageFilename(); name != "" && s.images != nil {
		if err := s.images.Delete(ctx, name); err != nil {
			s.logger.Warn(ctx, "failed to delete event image", "event_id", e.ID, "image", name, "error", err)
		}
	}
	return nil
}

func (s *TimelineService) eventErr(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return errEventNotFound
	}
	return internalErr(op, err)
}

func (s *TimelineService) CreateHighlight(ctx context.Context, timelineID, userID string, in HighlightInput) (*models.Highlight, error) {
	h, err := in.Highlight(timelineID)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, s.db, timelineID, userID); err != nil {
		return nil, err
	}
	created, err := s.repomanager.Highlights(s.db).Create(ctx, h)
	if err != nil {
		return nil, internalErr("create highlight", err)
	}
	return created, nil
}

func (s *TimelineService) UpdateHighlight(ctx context.Context, timelineID, highlightID, userID string, raw map[string]json.RawMessage) (*models.Highlight, error) {
	patch, err := ParseHighlightPatch(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, s.db, timelineID, userID); err != nil {
		return nil, err
	}
	if !validID(highlightID) {
		return nil, errHighlightNotFound
	}

	repo := s.repomanager.Highlights(s.db)

	if patch.Empty() || patch.StartDate.Set || patch.EndDate.Set {
		current, err := repo.Get(ctx, highlightID, timelineID)
		if err != nil {
			return nil, s.highlightErr("get highlight", err)
		}
		if patch.Empty() {
			return current, nil
		}
		start, end := current.StartDate, current.EndDate
		if patch.StartDate.Set {
			start = patch.StartDate.Value
		}
		if patch.EndDate.Set {
			end = patch.EndDate.Value
		}
		if end.Before(start) {
			return nil, errEndBeforeStart
		}
	}

	updated, err := repo.Update(ctx, highlightID, timelineID, patch)
	if err != nil {
		return nil, s.highlightErr("update highlight", err)
	}
	return updated, nil
}

func (s *TimelineService) DeleteHighlight(ctx context.Context, timelineID, highlightID, userID string) error {
	if _, err := s.owned(ctx, s.db, timelineID, userID); err != nil {
		return err
	}
	if !validID(highlightID) {
		return errHighlightNotFound
	}
	if _, err := s.repomanager.Highlights(s.db).Delete(ctx, highlightID, timelineID); err != nil {
		return s.highlightErr("delete highlight", err)
	}
	return nil
}

func (s *TimelineService) highlightErr(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return errHighlightNotFound
	}
	return internalErr(op, err)
}
