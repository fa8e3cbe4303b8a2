package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/storage"
)

// ImpactService is the kindness ledger: an append-only activity log plus a
// denormalized per-user score.
type ImpactService interface {
	LogActivity(ctx context.Context, userID int64, input ActivityInput) (*models.KindnessActivity, error)
	GetImpact(ctx context.Context, userID int64, timeframe string, limit, offset int) (*ImpactReport, error)
}

// ActivityInput is a qualifying action to record. Points are never supplied
// by the caller; they come from the fixed per-type table.
type ActivityInput struct {
	ActivityType  string
	WaterSaved    float64
	CO2Reduced    float64
	AnimalsSpared float64
	RelatedID     *int64
	Description   string
}

// ImpactReport is the paginated activity log together with lifetime
// aggregates and the current denormalized score.
type ImpactReport struct {
	Activities    []*models.KindnessActivity `json:"activities"`
	Stats         *storage.ImpactStats       `json:"stats"`
	KindnessScore int                        `json:"kindnessScore"`
}

type impactService struct {
	log          *slog.Logger
	db           *sql.DB
	kindnessRepo storage.KindnessStorage
	userRepo     storage.UserStorage
}

func NewImpactService(log *slog.Logger, db *sql.DB, kindnessRepo storage.KindnessStorage, userRepo storage.UserStorage) ImpactService {
	return &impactService{
		log:          log,
		db:           db,
		kindnessRepo: kindnessRepo,
		userRepo:     userRepo,
	}
}

// LogActivity appends one immutable ledger row and bumps the user's score by
// the type's fixed point value, both in one transaction. The score update is
// a relative increment on the DB side, so concurrent logs for the same user
// cannot lose points.
func (s *impactService) LogActivity(ctx context.Context, userID int64, input ActivityInput) (*models.KindnessActivity, error) {
	const op = "service.ImpactService.LogActivity"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("activityType", input.ActivityType))

	points, ok := models.ActivityPoints[input.ActivityType]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidActivityType)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	activity := &models.KindnessActivity{
		UserID:        userID,
		ActivityType:  input.ActivityType,
		Points:        points,
		WaterSaved:    input.WaterSaved,
		CO2Reduced:    input.CO2Reduced,
		AnimalsSpared: input.AnimalsSpared,
		RelatedID:     input.RelatedID,
		Description:   input.Description,
	}
	if _, err := s.kindnessRepo.CreateActivity(ctx, tx, activity); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create activity", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create activity: %w", op, err)
	}

	if err := s.kindnessRepo.AddKindnessScore(ctx, tx, userID, points); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to add kindness score", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to add kindness score: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("activity logged", slog.Int("points", points))
	return activity, nil
}

// GetImpact returns activities within the timeframe (all, month or week)
// plus lifetime stats and the current score.
func (s *impactService) GetImpact(ctx context.Context, userID int64, timeframe string, limit, offset int) (*ImpactReport, error) {
	const op = "service.ImpactService.GetImpact"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	var since *time.Time
	switch timeframe {
	case "week":
		t := time.Now().AddDate(0, 0, -7)
		since = &t
	case "month":
		t := time.Now().AddDate(0, 0, -30)
		since = &t
	}

	activities, err := s.kindnessRepo.GetActivitiesByUserID(ctx, userID, since, limit, offset)
	if err != nil {
		logger.Error("failed to get activities", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get activities: %w", op, err)
	}

	stats, err := s.kindnessRepo.GetImpactStats(ctx, userID)
	if err != nil {
		logger.Error("failed to get impact stats", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get impact stats: %w", op, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	return &ImpactReport{
		Activities:    activities,
		Stats:         stats,
		KindnessScore: user.KindnessScore,
	}, nil
}
