package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hapibara/hapibara-api/internal/security/jwtmiddleware"
	"github.com/hapibara/hapibara-api/internal/service"
)

// LogActivityRequest records a qualifying kindness action. Points are never
// accepted from the client.
type LogActivityRequest struct {
	ActivityType  string  `json:"activityType" validate:"required"`
	WaterSaved    float64 `json:"waterSaved" validate:"gte=0"`
	CO2Reduced    float64 `json:"co2Reduced" validate:"gte=0"`
	AnimalsSpared float64 `json:"animalsSpared" validate:"gte=0"`
	RelatedID     *int64  `json:"relatedId"`
	Description   string  `json:"description" validate:"max=500"`
}

// LogActivityHandler handles POST /api/impact.
func LogActivityHandler(log *slog.Logger, impactService service.ImpactService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LogActivityHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req LogActivityRequest
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

		activity, err := impactService.LogActivity(r.Context(), userID, service.ActivityInput{
			ActivityType:  req.ActivityType,
			WaterSaved:    req.WaterSaved,
			CO2Reduced:    req.CO2Reduced,
			AnimalsSpared: req.AnimalsSpared,
			RelatedID:     req.RelatedID,
			Description:   req.Description,
		})
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}
		respondData(logger, w, http.StatusOK, activity)
	}
}

// GetImpactHandler handles GET /api/impact.
func GetImpactHandler(log *slog.Logger, impactService service.ImpactService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetImpactHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		timeframe := r.URL.Query().Get("timeframe")
		switch timeframe {
		case "", "all", "week", "month":
		default:
			respondError(w, http.StatusBadRequest, "invalid timeframe")
			return
		}
		page, limit, offset := parsePagination(r, 20, 100)

		report, err := impactService.GetImpact(r.Context(), userID, timeframe, limit, offset)
		if err != nil {
			respondServiceError(logger, w, err)
			return
		}

		respondData(logger, w, http.StatusOK, map[string]interface{}{
			"activities":    report.Activities,
			"stats":         report.Stats,
			"kindnessScore": report.KindnessScore,
			"pagination":    pagination{Page: page, Limit: limit, HasMore: len(report.Activities) == limit},
		})
	}
}
