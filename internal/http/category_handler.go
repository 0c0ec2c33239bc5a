package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
)

type CategoryHandler struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
}

func NewCategoryHandler(categories repository.CategoryRepository, products repository.ProductRepository) *CategoryHandler {
	return &CategoryHandler{categories: categories, products: products}
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListCategories(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be a positive integer")
		return
	}

	category, err := h.categories.GetCategory(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) ListProductsInCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be a positive integer")
		return
	}

	if _, err := h.categories.GetCategory(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	products, err := h.products.ListByCategory(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if category.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	if err := h.categories.CreateCategory(r.Context(), &category); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be a positive integer")
		return
	}

	var category domain.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	category.ID = id

	if err := h.categories.UpdateCategory(r.Context(), &category); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseCategoryID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be a positive integer")
		return
	}

	if err := h.categories.DeleteCategory(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseCategoryID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "categoryID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
