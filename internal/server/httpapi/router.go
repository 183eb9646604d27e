package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/railohail/timeline-rail/internal/server/metrics"
)

// Handler builds the router. Everything except /api/health, /api/auth/register,
// /api/auth/login and /metrics requires a bearer token.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.observe)
		r.Use(chimiddleware.RequestSize(s.cfg.MaxBodyBytes))

		r.Get("/health", s.health)

		r.Route("/auth", func(r chi.Router) {
			r.Use(s.rateLimit())
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.With(s.authenticate).Get("/me", s.me)
			r.With(s.authenticate).Post("/refresh", s.refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/timelines", func(r chi.Router) {
				r.Get("/", s.listTimelines)
				r.Post("/", s.createTimeline)
				r.Post("/import", s.importTimeline)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.getTimeline)
					r.Put("/", s.updateTimeline)
					r.Delete("/", s.deleteTimeline)
					r.Get("/export", s.exportTimeline)

					r.Post("/events", s.createEvent)
					r.Put("/events/{eventId}", s.updateEvent)
					r.Delete("/events/{eventId}", s.deleteEvent)

					r.Post("/highlights", s.createHighlight)
					r.Put("/highlights/{highlightId}", s.updateHighlight)
					r.Delete("/highlights/{highlightId}", s.deleteHighlight)
				})
			})

			r.Route("/images", func(r chi.Router) {
				r.Post("/upload", s.uploadImage)
				r.Get("/{filename}", s.getImage)
				r.Delete("/{filename}", s.deleteImage)
				r.Get("/{filename}/info", s.imageInfo)
			})
		})
	})

	return r
}

// rateLimit throttles the auth endpoints per client IP.
func (s *HTTPServer) rateLimit() func(http.Handler) http.Handler {
	if s.cfg.AuthRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.cfg.AuthRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.RecordRateLimitHit(r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests, please try again later"})
		}),
	)
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
