package services

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/metrics"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/repositories/repomanager"
)

// now is swapped in tests.
var now = func() time.Time { return time.Now().UTC() }

// TransferService exports timelines as portable JSON documents and imports
// them back as new timelines.
type TransferService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	timelines   *TimelineService
	images      *ImageService
	logger      logging.Logger
}

func NewTransferService(db *sql.DB, m repomanager.RepositoryManager, timelines *TimelineService, images *ImageService, logger logging.Logger) *TransferService {
	return &TransferService{
		db:          db,
		repomanager: m,
		timelines:   timelines,
		images:      images,
		logger:      logger.With("module", "transfer"),
	}
}

// Export returns the timeline aggregate together with the data URLs of the
// images its events reference. Images that cannot be read are left out.
func (s *TransferService) Export(ctx context.Context, id, userID string) (*models.ExportDocument, error) {
	full, err := s.timelines.GetFull(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	images := make(map[string]string)
	for _, e := range full.Events {
		name := e.ImageFilename()
		if name == "" {
			continue
		}
		if _, ok := images[name]; ok {
			continue
		}
		url, err := s.images.DataURL(ctx, name)
		if err != nil {
			s.logger.Warn(ctx, "failed to load image for export", "timeline_id", id, "image", name, "error", err)
			continue
		}
		images[name] = url
	}

	return &models.ExportDocument{
		Timeline: models.ExportedTimeline{
			TimelineFull: *full,
			ExportedAt:   now(),
			Version:      models.ExportVersion,
		},
		Images: images,
	}, nil
}

// DecodeImport accepts either a bare timeline object or the export
// envelope {"timeline": {...}, "images": {...}}.
func DecodeImport(body []byte) (*models.ImportDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, validationError("Invalid import document")
	}

	doc := &models.ImportDocument{}
	timeline := json.RawMessage(body)

	if inner, ok := top["timeline"]; ok && bytes.HasPrefix(bytes.TrimSpace(inner), []byte("{")) {
		timeline = inner
		if imgs, ok := top["images"]; ok && !isNull(imgs) {
			if err := json.Unmarshal(imgs, &doc.Images); err != nil {
				return nil, validationError("images must map filenames to data URLs")
			}
		}
	}

	if err := json.Unmarshal(timeline, &doc.Timeline); err != nil {
		return nil, validationError("Invalid import document")
	}
	return doc, nil
}

// Import creates a new timeline owned by userID from doc. Images are stored
// first, then events, then highlights; a child that fails is logged, counted
// in the report and skipped.
func (s *TransferService) Import(ctx context.Context, userID string, doc *models.ImportDocument) (*models.TimelineFull, *models.ImportReport, error) {
	if strings.TrimSpace(doc.Timeline.Name) == "" {
		return nil, nil, validationError("Timeline name is required")
	}

	settings := doc.Timeline.Settings
	if isNull(settings) {
		settings = nil
	}

	t, err := s.repomanager.Timelines(s.db).Create(ctx, &models.Timeline{
		UserID:   userID,
		Name:     doc.Timeline.Name,
		Settings: settings,
	})
	if err != nil {
		return nil, nil, internalErr("create timeline", err)
	}

	report := &models.ImportReport{}

	for filename, url := range doc.Images {
		if _, err := s.images.SaveDataURL(ctx, filename, url); err != nil {
			s.skip(ctx, "image", err, "image", filename)
			report.SkippedImages++
		}
	}

	events := s.repomanager.Events(s.db)
	for i, raw := range doc.Timeline.Events {
		if err := s.importEvent(ctx, events.Create, t.ID, raw); err != nil {
			s.skip(ctx, "event", err, "index", i)
			report.SkippedEvents++
		}
	}

	highlights := s.repomanager.Highlights(s.db)
	for i, raw := range doc.Timeline.Highlights {
		var in HighlightInput
		err := json.Unmarshal(raw, &in)
		if err == nil {
			var h *models.Highlight
			if h, err = in.Highlight(t.ID); err == nil {
				_, err = highlights.Create(ctx, h)
			}
		}
		if err != nil {
			s.skip(ctx, "highlight", err, "index", i)
			report.SkippedHighlights++
		}
	}

	full, err := s.timelines.GetFull(ctx, t.ID, userID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "timeline imported",
		"timeline_id", t.ID,
		"events", len(full.Events),
		"highlights", len(full.Highlights),
		"skipped_images", report.SkippedImages,
		"skipped_events", report.SkippedEvents,
		"skipped_highlights", report.SkippedHighlights,
	)
	return full, report, nil
}

func (s *TransferService) importEvent(ctx context.Context,
	create func(context.Context, *models.Event) (*models.Event, error), timelineID string, raw json.RawMessage) error {

	var in EventInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}
	e, err := in.Event(timelineID)
	if err != nil {
		return err
	}
	_, err = create(ctx, e)
	return err
}

func (s *TransferService) skip(ctx context.Context, kind string, err error, args ...any) {
	metrics.RecordImportSkip(kind)
	s.logger.Warn(ctx, "failed to import "+kind, append(args, "error", err)...)
}
