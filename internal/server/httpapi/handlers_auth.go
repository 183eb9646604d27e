package httpapi

import (
	"net/http"

	"github.com/railohail/timeline-rail/internal/server/services"
)

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Users.Register(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", res.User.Username)
	writeJSON(w, http.StatusCreated, res)
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Users.Login(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Users.Me(r.Context(), userID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	token, err := s.svc.Users.Refresh(r.Context(), identityFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
