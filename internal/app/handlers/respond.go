package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/hapibara/hapibara-api/internal/service"
	"github.com/hapibara/hapibara-api/internal/storage"
)

var validate = validator.New()

// response is the envelope every endpoint returns. The HTTP status code is
// the single source of truth for success; the body never carries an error
// together with a 2xx.
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondData(log *slog.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: false, Error: msg})
}

// respondServiceError maps workflow errors to statuses. Anything unknown is a
// storage-layer fault: full detail is logged, the client gets a generic 500.
func respondServiceError(log *slog.Logger, w http.ResponseWriter, err error) {
	var invErr *service.InsufficientInventoryError
	switch {
	case errors.As(err, &invErr):
		respondError(w, http.StatusBadRequest, invErr.Error())
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrMissingShippingAddress):
		respondError(w, http.StatusBadRequest, "shipping address is required")
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "quantity must be positive")
	case errors.Is(err, service.ErrInvalidActivityType):
		respondError(w, http.StatusBadRequest, "invalid activity type")
	case errors.Is(err, storage.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, storage.ErrCartItemNotFound):
		respondError(w, http.StatusNotFound, "cart item not found")
	case errors.Is(err, storage.ErrEventNotFound):
		respondError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, storage.ErrAlreadyAttending):
		respondError(w, http.StatusConflict, "already attending this event")
	case errors.Is(err, storage.ErrEventFull):
		respondError(w, http.StatusBadRequest, "event is full")
	default:
		log.Error("request failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pagination describes the page actually returned; hasMore is inferred from a
// full page.
type pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

func parsePagination(r *http.Request, defaultLimit, maxLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, (page - 1) * limit
}
