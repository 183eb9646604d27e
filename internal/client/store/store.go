// Package store holds the client's view of the user's timelines: which ones
// exist, which one is open, and the last error. Every mutation of the open
// timeline is persisted through a storage.Storage right away.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/railohail/timeline-rail/internal/client/models"
	"github.com/railohail/timeline-rail/internal/client/storage"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/logging"
)

const (
	DefaultDeleteTimeout = 10 * time.Second

	firstTimelineName    = "My Timeline"
	fallbackTimelineName = "Default Timeline"
)

type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	}
	return "uninitialized"
}

var ErrDeleteTimeout = common.WithMessage(common.ErrorTimeout, "Timeline deletion timed out")

type Option func(*Store)

// WithDeleteTimeout bounds DeleteTimeline. Zero or negative keeps the
// default.
func WithDeleteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.deleteTimeout = d
		}
	}
}

// Store is safe for concurrent use; operations run one at a time.
type Store struct {
	storage       storage.Storage
	logger        logging.Logger
	deleteTimeout time.Duration
	now           func() time.Time

	mu        sync.Mutex
	state     State
	userID    string
	current   *models.TimelineData
	available []string
	lastErr   string
}

func New(st storage.Storage, logger logging.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.Nop{}
	}
	s := &Store{
		storage:       st,
		logger:        logger.With("module", "store"),
		deleteTimeout: DefaultDeleteTimeout,
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Current returns a copy of the open timeline, or nil.
func (s *Store) Current() *models.TimelineData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	return s.current.Clone()
}

// Available returns the ids of the user's timelines as of the last listing.
func (s *Store) Available() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.available...)
}

// Error is the message of the last failed operation, "" when the last
// operation succeeded.
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

func (s *Store) fail(ctx context.Context, op string, err error) error {
	s.lastErr = fmt.Sprintf("Failed to %s: %v", op, err)
	s.logger.Error(ctx, "store operation failed", "op", op, "error", err)
	return fmt.Errorf("failed to %s: %w", op, err)
}

// Initialize loads the user's timelines the first time it is called with a
// non-empty userID. A user without timelines gets a new one. Later calls
// are no-ops until Reset.
func (s *Store) Initialize(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == "" || s.state != Uninitialized {
		return nil
	}
	s.state = Initializing
	s.userID = userID
	s.lastErr = ""

	if err := s.initialize(ctx); err != nil {
		s.state = Uninitialized
		s.userID = ""
		return s.fail(ctx, "initialize", err)
	}
	s.state = Ready
	s.logger.Info(ctx, "store ready", "user_id", userID, "timelines", len(s.available))
	return nil
}

func (s *Store) initialize(ctx context.Context) error {
	if err := s.loadAvailable(ctx); err != nil {
		return err
	}
	if len(s.available) == 0 {
		return s.createTimeline(ctx, firstTimelineName)
	}
	return s.loadTimeline(ctx, s.available[0])
}

// Reset forgets the user and every loaded timeline.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Uninitialized
	s.userID = ""
	s.current = nil
	s.available = nil
	s.lastErr = ""
}

func (s *Store) loadAvailable(ctx context.Context) error {
	ids, err := s.storage.ListTimelines(ctx)
	if err != nil {
		return err
	}
	s.available = ids
	return nil
}

func (s *Store) LoadAvailableTimelines(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	if err := s.loadAvailable(ctx); err != nil {
		return s.fail(ctx, "load available timelines", err)
	}
	return nil
}

func (s *Store) createTimeline(ctx context.Context, name string) error {
	t := models.NewTimelineData(uuid.NewString(), name, s.now())
	if err := s.storage.SaveTimeline(ctx, t); err != nil {
		return err
	}
	s.current = t
	return s.loadAvailable(ctx)
}

// CreateTimeline creates an empty timeline, opens it and returns a copy.
func (s *Store) CreateTimeline(ctx context.Context, name string) (*models.TimelineData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	if err := s.createTimeline(ctx, name); err != nil {
		return nil, s.fail(ctx, "create timeline", err)
	}
	return s.current.Clone(), nil
}

func (s *Store) loadTimeline(ctx context.Context, id string) error {
	t, err := s.storage.LoadTimeline(ctx, id)
	if err != nil {
		return err
	}
	s.current = t
	return nil
}

func (s *Store) LoadTimeline(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	if err := s.loadTimeline(ctx, id); err != nil {
		return s.fail(ctx, "load timeline", err)
	}
	return nil
}

func (s *Store) SaveCurrentTimeline(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	if s.current == nil {
		return nil
	}
	t := s.current.Clone()
	if err := s.storage.SaveTimeline(ctx, t); err != nil {
		return s.fail(ctx, "save timeline", err)
	}
	s.current = t
	return nil
}

// DeleteTimeline removes a timeline, giving up after the delete timeout.
// When the open timeline is deleted the store opens the first remaining
// one, or creates a fresh timeline when none remain.
func (s *Store) DeleteTimeline(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""

	if err := s.deleteWithTimeout(ctx, id); err != nil {
		if errors.Is(err, ErrDeleteTimeout) {
			s.lastErr = "Timeline deletion timed out"
			s.logger.Error(ctx, "timeline deletion timed out", "timeline_id", id, "timeout", s.deleteTimeout)
			return err
		}
		return s.fail(ctx, "delete timeline", err)
	}

	if err := s.loadAvailable(ctx); err != nil {
		return s.fail(ctx, "delete timeline", err)
	}

	if s.current == nil || s.current.ID != id {
		return nil
	}
	s.current = nil

	var err error
	if len(s.available) > 0 {
		err = s.loadTimeline(ctx, s.available[0])
	} else {
		err = s.createTimeline(ctx, fallbackTimelineName)
	}
	if err != nil {
		return s.fail(ctx, "delete timeline", err)
	}
	return nil
}

// deleteWithTimeout does not trust the backend to honour ctx: it stops
// waiting once the deadline passes even if the call is still running.
func (s *Store) deleteWithTimeout(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.deleteTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.storage.DeleteTimeline(ctx, id)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrDeleteTimeout
		}
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrDeleteTimeout
		}
		return ctx.Err()
	}
}

// mutate applies fn to a copy of the open timeline and persists it; the
// copy replaces the open timeline only when the save succeeds. Without an
// open timeline it does nothing.
func (s *Store) mutate(ctx context.Context, op string, fn func(t *models.TimelineData) error) error {
	s.lastErr = ""
	if s.current == nil {
		return nil
	}
	t := s.current.Clone()
	if err := fn(t); err != nil {
		return s.fail(ctx, op, err)
	}
	t.UpdatedAt = s.now().UTC()
	if err := s.storage.SaveTimeline(ctx, t); err != nil {
		return s.fail(ctx, op, err)
	}
	s.current = t
	return nil
}

// ExportTimeline returns the open timeline as an export document.
func (s *Store) ExportTimeline(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	if s.current == nil {
		return nil, s.fail(ctx, "export timeline", errors.New("no timeline loaded"))
	}
	data, err := s.storage.ExportTimeline(ctx, s.current.ID)
	if err != nil {
		return nil, s.fail(ctx, "export timeline", err)
	}
	return data, nil
}

// ImportTimeline stores data as a new timeline and opens it.
func (s *Store) ImportTimeline(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""

	id, err := s.storage.ImportTimeline(ctx, data)
	if err != nil {
		return s.fail(ctx, "import timeline", err)
	}
	if err := s.loadAvailable(ctx); err != nil {
		return s.fail(ctx, "import timeline", err)
	}
	if err := s.loadTimeline(ctx, id); err != nil {
		return s.fail(ctx, "import timeline", err)
	}
	return nil
}

func (s *Store) Info(ctx context.Context) (*models.StorageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	info, err := s.storage.Info(ctx)
	if err != nil {
		return nil, s.fail(ctx, "get storage info", err)
	}
	return info, nil
}
