package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jogardn/hoodie-store/internal/storage"
)

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// respondStoreError maps the core's typed failures onto status codes:
// absence is 404, an illegal status transition is 409, everything else
// surfaces as a 500 and is logged.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondWithError(w, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, storage.ErrInvalidTransition):
		s.respondWithError(w, http.StatusConflict, err.Error())
	default:
		s.logger.WithError(err).Error("Store operation failed")
		s.respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
