package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"streetbite/internal/httputil"
	"streetbite/internal/model"
	"streetbite/internal/transport/http/middleware"
)

// OrderService is the order lifecycle as the HTTP layer sees it.
type OrderService interface {
	CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]model.Order, error)
}

type OrderHandler struct {
	orderService OrderService
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /orders
// The customer defaults to the authenticated user when user_id is omitted.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.UserID == 0 {
		if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
			req.UserID = userID
		}
	}

	order := &model.Order{
		UserID:      req.UserID,
		VendorID:    req.VendorID,
		Items:       req.Items,
		TotalAmount: req.TotalAmount,
	}

	created, err := h.orderService.CreateOrder(r.Context(), order)
	if err != nil {
		httputil.WriteServiceError(w, "create order", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, created)
}

// GetByID handles GET /orders/{id}
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		httputil.WriteServiceError(w, "get order", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PUT /orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id", "order")
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	order, err := h.orderService.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		httputil.WriteServiceError(w, "update order status", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, order)
}

// ListByUser handles GET /orders/user/{userId}
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", "user")
	if !ok {
		return
	}

	orders, err := h.orderService.ListByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, "list orders", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orders)
}

// ListByVendor handles GET /orders/vendor/{vendorId}
func (h *OrderHandler) ListByVendor(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathID(w, r, "vendorId", "vendor")
	if !ok {
		return
	}

	orders, err := h.orderService.ListByVendor(r.Context(), vendorID)
	if err != nil {
		httputil.WriteServiceError(w, "list orders", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orders)
}

// pathID parses a positive int64 URL parameter, writing a 400 if it isn't one.
func pathID(w http.ResponseWriter, r *http.Request, param, resource string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteBadRequest(w, "Invalid "+resource+" ID")
		return 0, false
	}
	return id, true
}
