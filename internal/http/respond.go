package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jasminetntu/bunny-boutique/internal/repository"
	"github.com/jasminetntu/bunny-boutique/internal/service"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the typed failures of the service and repository
// layers onto HTTP statuses: user errors become 4xx, anything else is a
// storage failure and surfaces as 500.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotInCart):
		respondError(w, http.StatusBadRequest, "not_in_cart", err.Error())
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, service.ErrProfileMissing):
		respondError(w, http.StatusBadRequest, "profile_missing", err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, repository.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, "category_not_found", err.Error())
	case errors.Is(err, repository.ErrProfileNotFound):
		respondError(w, http.StatusNotFound, "profile_not_found", err.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, repository.ErrProfileExists):
		respondError(w, http.StatusConflict, "profile_exists", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
