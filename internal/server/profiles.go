package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jogardn/hoodie-store/pkg/models"
)

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		s.respondWithError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	profile, err := s.profiles.Create(r.Context(), req)
	if err != nil {
		s.respondStoreError(w, err, "Profile not found")
		return
	}

	s.respondWithJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	profile, err := s.profiles.GetByUserID(r.Context(), userID)
	if err != nil {
		s.respondStoreError(w, err, "Profile not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := s.profiles.Update(r.Context(), userID, req)
	if err != nil {
		s.respondStoreError(w, err, "Profile not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, profile)
}
