package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/domain"
	"github.com/UkemeSkywalker/sunset-digital-marketplace/internal/service"
)

// OrderHandler handles order requests.
type OrderHandler struct {
	orders *service.OrderService
	logger zerolog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger.With().Str("handler", "order").Logger(),
	}
}

// RegisterRoutes registers order routes.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.handleListOrders)
	r.Post("/orders", h.handleCreateOrder)
}

// createOrderRequest is the body of POST /orders.
type createOrderRequest struct {
	UserID      string             `json:"userId"`
	Products    []domain.OrderItem `json:"products"`
	TotalAmount float64            `json:"totalAmount"`
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID := CallerID(r.Context())
	if userID == "" {
		userID = req.UserID
	}

	order, err := h.orders.Create(r.Context(), service.CreateOrderInput{
		UserID:      userID,
		Products:    req.Products,
		TotalAmount: req.TotalAmount,
	})
	if err != nil {
		writeServiceError(w, "Could not create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	userID := CallerID(r.Context())
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}

	orders, err := h.orders.ListByBuyer(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "Could not fetch orders", err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}
