package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hapibara/hapibara-api/internal/service"
)

// AuthRequest carries login-or-register credentials.
type AuthRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// AuthHandler handles POST /api/auth.
func AuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AuthHandler"
		logger := log.With(slog.String("op", op))

		var req AuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			respondError(w, http.StatusBadRequest, "validation error")
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			logger.Error("login failed", slog.Any("error", err))
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		respondData(logger, w, http.StatusOK, AuthResponse{Token: token})
	}
}
