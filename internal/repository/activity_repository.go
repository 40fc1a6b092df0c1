package repository

import (
	"context"
	"database/sql"

	"github.com/skillforge/quest-backend/internal/model"
)

// ActivityRepo appends rows to the activity_logs table. The table is
// write-only from the API's point of view.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// Insert writes one activity log row.
func (r *ActivityRepo) Insert(ctx context.Context, a *model.ActivityLog) error {
	var courseID any
	if a.CourseID != "" {
		courseID = a.CourseID
	}
	var metadata any
	if a.Metadata != nil {
		metadata = []byte(a.Metadata)
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, course_id, event_type, xp_awarded, coins_awarded, metadata)
		 VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.UserID, courseID, a.EventType, a.XPAwarded, a.CoinsAwarded, metadata)
	return err
}
