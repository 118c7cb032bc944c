package registrytest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/onkernel/imgreg/lib/images"
	"github.com/onkernel/imgreg/lib/logger"
	"github.com/onkernel/imgreg/lib/registryapi"
	"github.com/samber/lo"
)

func (s *Server) listImages(w http.ResponseWriter, r *http.Request) {
	recs := s.store.list()
	writeJSON(w, http.StatusOK, registryapi.SummaryList{
		Images: lo.Map(recs, func(rec *images.Image, _ int) registryapi.Summary {
			return registryapi.FromSummary(rec.Summarize())
		}),
	})
}

func (s *Server) listImagesDetailed(w http.ResponseWriter, r *http.Request) {
	recs := s.store.list()
	writeJSON(w, http.StatusOK, registryapi.ImageList{
		Images: lo.Map(recs, func(rec *images.Image, _ int) registryapi.Image {
			return *registryapi.FromImage(rec)
		}),
	})
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registryapi.ImageEnvelope{Image: registryapi.FromImage(rec)})
}

func (s *Server) addImage(w http.ResponseWriter, r *http.Request) {
	img, ok := decodeEnvelope(w, r)
	if !ok {
		return
	}
	rec, err := s.store.create(img)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registryapi.ImageEnvelope{Image: registryapi.FromImage(rec)})
}

func (s *Server) updateImage(w http.ResponseWriter, r *http.Request) {
	var body registryapi.ImageUpdateEnvelope
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Image == nil {
		writeError(w, http.StatusBadRequest, registryapi.CodeInvalid, "request body must be {\"image\": {...}}")
		return
	}
	rec, err := s.store.update(chi.URLParam(r, "id"), body.Image.ToUpdate())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, registryapi.ImageEnvelope{Image: registryapi.FromImage(rec)})
}

func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	if err := s.store.delete(chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeEnvelope(w http.ResponseWriter, r *http.Request) (*images.Image, bool) {
	var body registryapi.ImageEnvelope
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Image == nil {
		writeError(w, http.StatusBadRequest, registryapi.CodeInvalid, "request body must be {\"image\": {...}}")
		return nil, false
	}
	return body.Image.ToImage(), true
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, registryapi.CodeNotFound, err.Error())
	case errors.Is(err, errAlreadyExists):
		writeError(w, http.StatusConflict, registryapi.CodeAlreadyExists, err.Error())
	case errors.Is(err, errInvalid):
		writeError(w, http.StatusBadRequest, registryapi.CodeInvalid, err.Error())
	default:
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "registry operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, registryapi.CodeInternal, "internal error")
	}
}
