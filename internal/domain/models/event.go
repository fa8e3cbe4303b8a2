package models

import "time"

// CommunityEvent is a HapiHive gathering. AttendeeCount is denormalized and
// incremented together with the attendee row.
type CommunityEvent struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	EventType     string    `json:"event_type"`
	City          string    `json:"city"`
	Location      string    `json:"location,omitempty"`
	IsOnline      bool      `json:"is_online"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	MaxAttendees  *int      `json:"max_attendees,omitempty"`
	AttendeeCount int       `json:"attendee_count"`
	CreatedAt     time.Time `json:"created_at"`
}
