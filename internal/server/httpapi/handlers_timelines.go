package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/railohail/timeline-rail/internal/server/services"
)

func (s *HTTPServer) listTimelines(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Timelines.List(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Timeline{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) createTimeline(w http.ResponseWriter, r *http.Request) {
	var in services.TimelineInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.svc.Timelines.Create(r.Context(), userID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *HTTPServer) getTimeline(w http.ResponseWriter, r *http.Request) {
	full, err := s.svc.Timelines.GetFull(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, full)
}

func (s *HTTPServer) updateTimeline(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		s.writeError(w, r, err)
		return
	}

	t, err := s.svc.Timelines.Update(r.Context(), chi.URLParam(r, "id"), userID(r), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *HTTPServer) deleteTimeline(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Timelines.Delete(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Timeline deleted successfully"})
}

func (s *HTTPServer) exportTimeline(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Transfer.Export(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	name := strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(doc.Timeline.Name)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, name))
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) importTimeline(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := services.DecodeImport(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	full, _, err := s.svc.Transfer.Import(r.Context(), userID(r), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, full)
}

func (s *HTTPServer) createEvent(w http.ResponseWriter, r *http.Request) {
	var in services.EventInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.svc.Timelines.CreateEvent(r.Context(), chi.URLParam(r, "id"), userID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *HTTPServer) updateEvent(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.svc.Timelines.UpdateEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eventId"), userID(r), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *HTTPServer) deleteEvent(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Timelines.DeleteEvent(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "eventId"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Event deleted successfully"})
}

func (s *HTTPServer) createHighlight(w http.ResponseWriter, r *http.Request) {
	var in services.HighlightInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	h, err := s.svc.Timelines.CreateHighlight(r.Context(), chi.URLParam(r, "id"), userID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *HTTPServer) updateHighlight(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		s.writeError(w, r, err)
		return
	}

	h, err := s.svc.Timelines.UpdateHighlight(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "highlightId"), userID(r), raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *HTTPServer) deleteHighlight(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Timelines.DeleteHighlight(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "highlightId"), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Highlight deleted successfully"})
}
