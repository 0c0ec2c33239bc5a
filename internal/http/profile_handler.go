package http

import (
	"encoding/json"
	"net/http"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
)

type ProfileHandler struct {
	profiles repository.ProfileRepository
}

func NewProfileHandler(profiles repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var profile domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	profile.UserID = userID

	if err := h.profiles.CreateProfile(r.Context(), &profile); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var profile domain.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	profile.UserID = userID

	if err := h.profiles.UpdateProfile(r.Context(), &profile); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
