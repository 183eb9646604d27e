package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/railohail/timeline-rail/internal/common"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the image itself.
const multipartOverhead = 1 << 20

func (s *HTTPServer) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxImageBytes+multipartOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.writeError(w, r, errBodyTooLarge)
			return
		}
		s.writeError(w, r, common.WithMessage(common.ErrorValidation, "No image file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxImageBytes+1))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	res, err := s.svc.Images.Upload(r.Context(), header.Filename, mimeType, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) getImage(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := s.svc.Images.Load(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=31536000")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) deleteImage(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Images.Delete(r.Context(), chi.URLParam(r, "filename")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Image deleted successfully"})
}

func (s *HTTPServer) imageInfo(w http.ResponseWriter, r *http.Request) {
	img, err := s.svc.Images.Info(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}
