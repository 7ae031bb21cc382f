package quiz

import "context"

// Store is the persistence boundary for quizzes, questions and results.
// Course and user rows are managed by their handlers directly; everything
// that participates in the scoring pipeline goes through here.
type Store interface {
	CreateQuiz(ctx context.Context, q Quiz) (Quiz, error)
	ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error)
	// GetQuiz returns the quiz with its full question pool, correct answers
	// included. Callers decide what to strip before responding.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	UpdateQuiz(ctx context.Context, q Quiz) error
	DeleteQuiz(ctx context.Context, id string) error

	AddQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) error
	DeleteQuestion(ctx context.Context, id string) error

	// SubmitQuiz scores a submission in a single transaction: result row,
	// per-answer rows and the correct count either all land or none do.
	SubmitQuiz(ctx context.Context, quizID, username string, answers []SubmittedAnswer) (Score, error)

	ListQuizResults(ctx context.Context, quizID string) ([]ResultRow, error)
	ListCourseResults(ctx context.Context, courseID string) ([]ResultRow, error)
	// ListLatestResultsForUser returns the most recent result per quiz for
	// one user.
	ListLatestResultsForUser(ctx context.Context, username string) ([]ResultRow, error)
}
