package syncx

import (
	"context"
	"database/sql"
	"time"
)

// Audit event types appended by the handlers and the quiz store.
const (
	EventQuizSubmitted = "QuizSubmitted"
	EventCourseDeleted = "CourseDeleted"
	EventQuizDeleted   = "QuizDeleted"
	EventUserDeleted   = "UserDeleted"
)

type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: resultID, courseID, userID, ...
	DataJSON  string
	CreatedAt int64
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, typ, key, dataJSON string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, dataJSON, time.Now().Unix())
	return err
}
