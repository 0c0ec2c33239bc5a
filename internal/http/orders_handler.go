package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jasminetntu/bunny-boutique/internal/domain"
)

type CheckoutService interface {
	Checkout(ctx context.Context, userID int64) (*domain.Order, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]*domain.Order, error)
}

type OrdersHandler struct {
	checkout CheckoutService
	orders   OrderReader
}

func NewOrdersHandler(checkout CheckoutService, orders OrderReader) *OrdersHandler {
	return &OrdersHandler{checkout: checkout, orders: orders}
}

// CreateOrder triggers the full checkout sequence for the authenticated user.
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	order, err := h.checkout.Checkout(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a positive integer")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if order.UserID != userID {
		respondError(w, http.StatusNotFound, "order_not_found", "order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r.Context())
	if userID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.orders.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}
