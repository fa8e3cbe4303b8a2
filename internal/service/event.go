package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/storage"
)

// EventService lists community events and records attendance. Attending an
// event also earns kindness points, in the same transaction as the attendee
// row and the counter bump.
type EventService interface {
	List(ctx context.Context, city string, upcomingOnly bool, limit, offset int) ([]*models.CommunityEvent, error)
	Get(ctx context.Context, id int64) (*models.CommunityEvent, error)
	Attend(ctx context.Context, eventID, userID int64) (*models.KindnessActivity, error)
}

type eventService struct {
	log          *slog.Logger
	db           *sql.DB
	eventRepo    storage.EventStorage
	kindnessRepo storage.KindnessStorage
}

func NewEventService(log *slog.Logger, db *sql.DB, eventRepo storage.EventStorage, kindnessRepo storage.KindnessStorage) EventService {
	return &eventService{
		log:          log,
		db:           db,
		eventRepo:    eventRepo,
		kindnessRepo: kindnessRepo,
	}
}

func (s *eventService) List(ctx context.Context, city string, upcomingOnly bool, limit, offset int) ([]*models.CommunityEvent, error) {
	const op = "service.EventService.List"
	events, err := s.eventRepo.ListEvents(ctx, city, upcomingOnly, limit, offset)
	if err != nil {
		s.log.Error("failed to list events", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list events: %w", op, err)
	}
	return events, nil
}

func (s *eventService) Get(ctx context.Context, id int64) (*models.CommunityEvent, error) {
	const op = "service.EventService.Get"
	event, err := s.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		s.log.Error("failed to get event", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get event: %w", op, err)
	}
	return event, nil
}

// Attend registers the user for the event. One transaction: unique attendee
// row, guarded attendee-count increment (refuses a full event), kindness
// ledger entry plus score increment.
func (s *eventService) Attend(ctx context.Context, eventID, userID int64) (*models.KindnessActivity, error) {
	const op = "service.EventService.Attend"
	logger := s.log.With(slog.String("op", op), slog.Int64("eventID", eventID), slog.Int64("userID", userID))
	logger.Info("starting attend transaction")

	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		logger.Error("failed to get event", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get event: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if err := s.eventRepo.AddAttendee(ctx, tx, eventID, userID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("failed to add attendee", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to add attendee: %w", op, err)
	}

	if err := s.eventRepo.IncrementAttendeeCount(ctx, tx, eventID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Warn("failed to increment attendee count", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to increment attendee count: %w", op, err)
	}

	activity := &models.KindnessActivity{
		UserID:       userID,
		ActivityType: models.ActivityEventAttended,
		Points:       models.ActivityPoints[models.ActivityEventAttended],
		RelatedID:    &event.ID,
		Description:  "Attended " + event.Title,
	}
	if _, err := s.kindnessRepo.CreateActivity(ctx, tx, activity); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create activity", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create activity: %w", op, err)
	}
	if err := s.kindnessRepo.AddKindnessScore(ctx, tx, userID, activity.Points); err != nil {
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

	logger.Info("attendance recorded")
	return activity, nil
}
