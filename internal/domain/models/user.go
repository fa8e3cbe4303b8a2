package models

// User represents an account. KindnessScore is the denormalized running total
// over the kindness_activities log.
type User struct {
	ID            int64
	Email         string
	Name          string
	PassHash      []byte
	KindnessScore int
}
