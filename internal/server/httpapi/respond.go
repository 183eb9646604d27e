package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/railohail/timeline-rail/internal/common"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

var (
	errInvalidJSON  = common.WithMessage(common.ErrorValidation, "Invalid JSON body")
	errBodyTooLarge = common.WithMessage(common.ErrorValidation, "Request body too large")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorConflict):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status and a caller-facing body. Details of
// internal errors are only exposed in development.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp := errorResponse{Error: "Internal server error", Message: "Something went wrong"}
		if msg, ok := common.MessageOf(err); ok {
			resp.Error = msg
		}
		if s.cfg.IsDevelopment() {
			resp.Message = err.Error()
		}
		writeJSON(w, status, resp)
		return
	}

	msg, ok := common.MessageOf(err)
	if !ok {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errBodyTooLarge
		}
		return nil, errInvalidJSON
	}
	return body, nil
}

func decodeJSON(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errInvalidJSON
	}
	return nil
}
