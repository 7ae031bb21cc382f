package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jantom38/eduplatform/internal/quiz"
)

// Ownership walks the chain Question -> Quiz -> Course -> teacher; the
// course's teacher username is the authoritative owner for everything
// under it.

func courseOwner(ctx context.Context, db *sql.DB, courseID string) (string, error) {
	var owner string
	err := db.QueryRowContext(ctx,
		`SELECT u.username FROM courses c JOIN users u ON u.id=c.teacher_id WHERE c.id=$1`,
		courseID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("course %s: %w", courseID, quiz.ErrNotFound)
	}
	return owner, err
}

func quizCourse(ctx context.Context, db *sql.DB, quizID string) (string, error) {
	var courseID string
	err := db.QueryRowContext(ctx,
		`SELECT course_id FROM quizzes WHERE id=$1`, quizID).Scan(&courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("quiz %s: %w", quizID, quiz.ErrNotFound)
	}
	return courseID, err
}

func questionQuiz(ctx context.Context, db *sql.DB, questionID string) (string, error) {
	var quizID string
	err := db.QueryRowContext(ctx,
		`SELECT quiz_id FROM quiz_questions WHERE id=$1`, questionID).Scan(&quizID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("question %s: %w", questionID, quiz.ErrNotFound)
	}
	return quizID, err
}

func isEnrolled(ctx context.Context, db *sql.DB, username, courseID string) bool {
	var ok bool
	_ = db.QueryRowContext(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM user_courses uc
		      JOIN users u ON u.id=uc.user_id
		     WHERE uc.course_id=$1 AND u.username=$2 AND uc.active)`,
		courseID, username).Scan(&ok)
	return ok
}
