// Package httpapi exposes the services as the JSON REST API under /api.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/auth"
	"github.com/railohail/timeline-rail/internal/server/config"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
	Me(ctx context.Context, userID string) (*models.User, error)
	Refresh(ctx context.Context, id auth.Identity) (string, error)
	Verify(token string) (*auth.Identity, error)
}

type TimelineService interface {
	List(ctx context.Context, userID string) ([]models.Timeline, error)
	Create(ctx context.Context, userID string, in services.TimelineInput) (*models.Timeline, error)
	GetFull(ctx context.Context, id, userID string) (*models.TimelineFull, error)
	Update(ctx context.Context, id, userID string, raw map[string]json.RawMessage) (*models.Timeline, error)
	Delete(ctx context.Context, id, userID string) error

	CreateEvent(ctx context.Context, timelineID, userID string, in services.EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, timelineID, eventID, userID string, raw map[string]json.RawMessage) (*models.Event, error)
	DeleteEvent(ctx context.Context, timelineID, eventID, userID string) error

	CreateHighlight(ctx context.Context, timelineID, userID string, in services.HighlightInput) (*models.Highlight, error)
	UpdateHighlight(ctx context.Context, timelineID, highlightID, userID string, raw map[string]json.RawMessage) (*models.Highlight, error)
	DeleteHighlight(ctx context.Context, timelineID, highlightID, userID string) error
}

type ImageService interface {
	Upload(ctx context.Context, originalName, mimeType string, data []byte) (*services.UploadResult, error)
	Load(ctx context.Context, filename string) ([]byte, string, error)
	Info(ctx context.Context, filename string) (*models.Image, error)
	Delete(ctx context.Context, filename string) error
}

type TransferService interface {
	Export(ctx context.Context, id, userID string) (*models.ExportDocument, error)
	Import(ctx context.Context, userID string, doc *models.ImportDocument) (*models.TimelineFull, *models.ImportReport, error)
}

// Services bundles everything the handlers call into.
type Services struct {
	Users     UserService
	Timelines TimelineService
	Images    ImageService
	Transfer  TransferService
}

type HTTPServer struct {
	address string
	cfg     *config.Config
	svc     Services
	logger  logging.Logger
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, svc Services) *HTTPServer {
	return &HTTPServer{
		address: cfg.HTTPAddr,
		cfg:     cfg,
		svc:     svc,
		logger:  l.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
