package model

import "time"

// ActivityLog is an append-only record of something a user did that earned
// rewards. Rows are written once and never updated or read back by the API.
type ActivityLog struct {
	ID           string
	UserID       string
	CourseID     string // empty when the event is not tied to a course
	EventType    string
	XPAwarded    int
	CoinsAwarded int
	Metadata     []byte // raw JSON, nil when absent
	CreatedAt    time.Time
}
