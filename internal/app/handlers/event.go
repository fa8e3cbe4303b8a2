package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hapibara/hapibara-api/internal/security/jwtmiddleware"
	"github.com/hapibara/hapibara-api/internal/service"
)

// ListEventsHandler handles GET /api/events.
func ListEventsHandler(log *slog.Logger, eventService service.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListEventsHandler"
		logger := log.With(slog.String("op", op))

		page, limit, offset := parsePagination(r, 10, 100)
		city := r.URL.Query().Get("city")
		upcomingOnly := r.URL.Query().Get("upcoming") == "true"

		events, err := eventService.List(r.Context(), city, upcomingOnly, limit, offset)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}

		respondData(logger, w, http.StatusOK, map[string]interface{}{
			"events":     events,
			"pagination": pagination{Page: page, Limit: limit, HasMore: len(events) == limit},
		})
	}
}

// GetEventHandler handles GET /api/events/{id}.
func GetEventHandler(log *slog.Logger, eventService service.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetEventHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid event id")
			return
		}

		event, err := eventService.Get(r.Context(), id)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, event)
	}
}

// AttendEventHandler handles POST /api/events/{id}/attend.
func AttendEventHandler(log *slog.Logger, eventService service.EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AttendEventHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid event id")
			return
		}

		activity, err := eventService.Attend(r.Context(), id, userID)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, activity)
	}
}
