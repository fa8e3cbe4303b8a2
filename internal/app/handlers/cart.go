package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hapibara/hapibara-api/internal/security/jwtmiddleware"
	"github.com/hapibara/hapibara-api/internal/service"
)

// AddToCartRequest adds a product to the caller's cart. Quantity defaults
// to 1.
type AddToCartRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=0"`
}

// UpdateCartRequest changes a line's quantity; zero removes the line.
// Quantity is a pointer so that an omitted field is rejected rather than
// treated as a removal.
type UpdateCartRequest struct {
	CartItemID int64 `json:"cartItemId" validate:"required,gt=0"`
	Quantity   *int  `json:"quantity" validate:"required,gte=0"`
}

// GetCartHandler handles GET /api/cart.
func GetCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		summary, err := cartService.Summary(r.Context(), userID)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, summary)
	}
}

// AddToCartHandler handles POST /api/cart.
func AddToCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddToCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req AddToCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid product ID or quantity")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		item, err := cartService.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, map[string]interface{}{"cartItemId": item.ID, "quantity": item.Quantity})
	}
}

// UpdateCartHandler handles PUT /api/cart.
func UpdateCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req UpdateCartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid cart item ID or quantity")
			return
		}

		if err := cartService.UpdateQuantity(r.Context(), userID, req.CartItemID, *req.Quantity); err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, map[string]interface{}{"quantity": *req.Quantity})
	}
}

// ClearCartHandler handles DELETE /api/cart.
func ClearCartHandler(log *slog.Logger, cartService service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ClearCartHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if err := cartService.Clear(r.Context(), userID); err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, map[string]interface{}{"cleared": true})
	}
}
