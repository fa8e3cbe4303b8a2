package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hapibara/hapibara-api/internal/domain/models"
)

// ImpactStats are the lifetime aggregates over a user's activity log.
type ImpactStats struct {
	TotalActivities int     `json:"total_activities"`
	TotalPoints     int     `json:"total_points"`
	WaterSaved      float64 `json:"water_saved"`
	CO2Reduced      float64 `json:"co2_reduced"`
	AnimalsSpared   float64 `json:"animals_spared"`
}

// KindnessStorage describes the append-only activity ledger and the
// denormalized score on the user row. The score is only ever changed through
// AddKindnessScore, a relative increment, so concurrent logs never lose
// updates.
type KindnessStorage interface {
	CreateActivity(ctx context.Context, tx *sql.Tx, activity *models.KindnessActivity) (*models.KindnessActivity, error)
	AddKindnessScore(ctx context.Context, tx *sql.Tx, userID int64, points int) error
	GetActivitiesByUserID(ctx context.Context, userID int64, since *time.Time, limit, offset int) ([]*models.KindnessActivity, error)
	GetImpactStats(ctx context.Context, userID int64) (*ImpactStats, error)
}

type kindnessRepository struct {
	db *sql.DB
}

func NewKindnessRepository(db *sql.DB) KindnessStorage {
	return &kindnessRepository{db: db}
}

func (r *kindnessRepository) CreateActivity(ctx context.Context, tx *sql.Tx, activity *models.KindnessActivity) (*models.KindnessActivity, error) {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO kindness_activities (user_id, activity_type, points, water_saved, co2_reduced, animals_spared, related_id, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id, created_at`,
		activity.UserID, activity.ActivityType, activity.Points,
		activity.WaterSaved, activity.CO2Reduced, activity.AnimalsSpared,
		activity.RelatedID, activity.Description,
	).Scan(&activity.ID, &activity.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create kindness activity: %w", err)
	}
	return activity, nil
}

// AddKindnessScore applies a relative increment on the DB side. Never read the
// score first and write the sum back.
func (r *kindnessRepository) AddKindnessScore(ctx context.Context, tx *sql.Tx, userID int64, points int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET kindness_score = kindness_score + $2 WHERE id = $1", userID, points)
	if err != nil {
		return fmt.Errorf("failed to update kindness score: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *kindnessRepository) GetActivitiesByUserID(ctx context.Context, userID int64, since *time.Time, limit, offset int) ([]*models.KindnessActivity, error) {
	query := `
		SELECT id, user_id, activity_type, points, water_saved, co2_reduced, animals_spared, related_id, description, created_at
		FROM kindness_activities
		WHERE user_id = $1`
	args := []interface{}{userID}
	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query kindness activities: %w", err)
	}
	defer rows.Close()

	var activities []*models.KindnessActivity
	for rows.Next() {
		a := &models.KindnessActivity{}
		var description sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.Points,
			&a.WaterSaved, &a.CO2Reduced, &a.AnimalsSpared, &a.RelatedID, &description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan kindness activity: %w", err)
		}
		a.Description = description.String
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *kindnessRepository) GetImpactStats(ctx context.Context, userID int64) (*ImpactStats, error) {
	stats := &ImpactStats{}
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(id), COALESCE(SUM(points), 0),
		       COALESCE(SUM(water_saved), 0), COALESCE(SUM(co2_reduced), 0), COALESCE(SUM(animals_spared), 0)
		FROM kindness_activities
		WHERE user_id = $1`, userID)
	if err := row.Scan(&stats.TotalActivities, &stats.TotalPoints,
		&stats.WaterSaved, &stats.CO2Reduced, &stats.AnimalsSpared); err != nil {
		return nil, fmt.Errorf("failed to query impact stats: %w", err)
	}
	return stats, nil
}
