package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
	"github.com/jasminetntu/bunny-boutique/internal/repository"
)

type ProductHandler struct {
	products repository.ProductRepository
}

func NewProductHandler(products repository.ProductRepository) *ProductHandler {
	return &ProductHandler{products: products}
}

// Search reads the optional query filters. An absent parameter leaves the
// corresponding predicate nil; there are no sentinel values on this path.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	var filter domain.ProductFilter

	q := r.URL.Query()
	if v := q.Get("cat"); v != "" {
		categoryID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_filter", "cat must be an integer")
			return
		}
		filter.CategoryID = &categoryID
	}
	if v := q.Get("minPrice"); v != "" {
		minPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_filter", "minPrice must be a number")
			return
		}
		filter.MinPrice = &minPrice
	}
	if v := q.Get("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_filter", "maxPrice must be a number")
			return
		}
		filter.MaxPrice = &maxPrice
	}
	if v := q.Get("subcategory"); v != "" {
		filter.SubCategory = &v
	}

	products, err := h.products.Search(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListFeatured(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if product.Name == "" || product.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "name is required and price must not be negative")
		return
	}

	if err := h.products.CreateProduct(r.Context(), &product); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	product.ID = id

	if err := h.products.UpdateProduct(r.Context(), &product); err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
