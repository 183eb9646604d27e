package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/railohail/timeline-rail/internal/server/auth"
	"github.com/railohail/timeline-rail/internal/server/metrics"
)

type ctxKey string

const identityKey ctxKey = "identity"

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, common.BearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate rejects requests without a valid bearer token and stores the
// caller identity in the request context.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Access token required"})
			return
		}

		id, err := s.svc.Users.Verify(token)
		if err != nil {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "Invalid or expired token"})
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, *id)
		ctx = logging.ContextWith(ctx, "user_id", id.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(identityKey).(auth.Identity)
	return id
}

func userID(r *http.Request) string {
	return identityFrom(r.Context()).ID
}

// observe records request metrics and writes one log line per request.
func (s *HTTPServer) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		r = r.WithContext(logging.ContextWith(r.Context(), "request_id", chimiddleware.GetReqID(r.Context())))

		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		metrics.RecordAPIRequest(r.Method, route, status, elapsed)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
