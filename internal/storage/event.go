package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrAlreadyAttending = errors.New("already attending event")
	ErrEventFull        = errors.New("event is full")
)

// EventStorage describes community event reads plus the two writes performed
// by the attend transaction.
type EventStorage interface {
	ListEvents(ctx context.Context, city string, upcomingOnly bool, limit, offset int) ([]*models.CommunityEvent, error)
	GetEventByID(ctx context.Context, id int64) (*models.CommunityEvent, error)
	AddAttendee(ctx context.Context, tx *sql.Tx, eventID, userID int64) error
	IncrementAttendeeCount(ctx context.Context, tx *sql.Tx, eventID int64) error
}

type eventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) EventStorage {
	return &eventRepository{db: db}
}

const eventColumns = "id, title, description, event_type, city, location, is_online, start_date, end_date, max_attendees, attendee_count, created_at"

func (r *eventRepository) ListEvents(ctx context.Context, city string, upcomingOnly bool, limit, offset int) ([]*models.CommunityEvent, error) {
	query := "SELECT " + eventColumns + " FROM community_events WHERE 1=1"
	var args []interface{}
	if city != "" {
		args = append(args, city)
		query += fmt.Sprintf(" AND city = $%d", len(args))
	}
	if upcomingOnly {
		query += " AND start_date > NOW()"
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY start_date ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.CommunityEvent
	for rows.Next() {
		e := &models.CommunityEvent{}
		var location sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.EventType, &e.City, &location,
			&e.IsOnline, &e.StartDate, &e.EndDate, &e.MaxAttendees, &e.AttendeeCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Location = location.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) GetEventByID(ctx context.Context, id int64) (*models.CommunityEvent, error) {
	e := &models.CommunityEvent{}
	var location sql.NullString
	row := r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM community_events WHERE id = $1", id)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.EventType, &e.City, &location,
		&e.IsOnline, &e.StartDate, &e.EndDate, &e.MaxAttendees, &e.AttendeeCount, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	e.Location = location.String
	return e, nil
}

// AddAttendee relies on the (event_id, user_id) unique constraint to reject a
// double attend.
func (r *eventRepository) AddAttendee(ctx context.Context, tx *sql.Tx, eventID, userID int64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO event_attendees (event_id, user_id, created_at) VALUES ($1, $2, NOW())",
		eventID, userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrAlreadyAttending
		}
		return fmt.Errorf("failed to add attendee: %w", err)
	}
	return nil
}

// IncrementAttendeeCount bumps the counter only while the event has room, the
// same guarded-update shape used for product inventory.
func (r *eventRepository) IncrementAttendeeCount(ctx context.Context, tx *sql.Tx, eventID int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE community_events SET attendee_count = attendee_count + 1
		 WHERE id = $1 AND (max_attendees IS NULL OR attendee_count < max_attendees)`,
		eventID)
	if err != nil {
		return fmt.Errorf("failed to increment attendee count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrEventFull
	}
	return nil
}
