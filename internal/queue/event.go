// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityRecordedEvent is published when an activity log row is written.
// It carries enough for downstream consumers to log or feed analytics
// without querying the primary database.
type ActivityRecordedEvent struct {
	ActivityID   string `json:"activity_id"`
	UserID       string `json:"user_id"`
	CourseID     string `json:"course_id,omitempty"`
	EventType    string `json:"event_type"`
	XPAwarded    int    `json:"xp_awarded"`
	CoinsAwarded int    `json:"coins_awarded"`
	RecordedAt   string `json:"recorded_at"`
}
