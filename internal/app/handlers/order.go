package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/security/jwtmiddleware"
	"github.com/hapibara/hapibara-api/internal/service"
)

// CreateOrderRequest places an order from the caller's cart.
type CreateOrderRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" validate:"required"`
}

// CreateOrderHandler handles POST /api/orders.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "shipping address is required")
			return
		}

		order, err := orderService.Place(r.Context(), userID, req.ShippingAddress)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}

		respondData(logger, w, http.StatusOK, map[string]interface{}{
			"orderId":     order.ID,
			"orderNumber": order.OrderNumber,
			"subtotal":    order.Subtotal,
			"total":       order.Total,
			"status":      order.Status,
		})
	}
}

// ListOrdersHandler handles GET /api/orders.
func ListOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		page, limit, offset := parsePagination(r, 10, 100)
		status := r.URL.Query().Get("status")
		if status != "" && !models.IsValidOrderStatus(status) {
			respondError(w, http.StatusBadRequest, "invalid order status")
			return
		}

		orders, err := orderService.List(r.Context(), userID, status, limit, offset)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}

		respondData(logger, w, http.StatusOK, map[string]interface{}{
			"orders":     orders,
			"pagination": pagination{Page: page, Limit: limit, HasMore: len(orders) == limit},
		})
	}
}
