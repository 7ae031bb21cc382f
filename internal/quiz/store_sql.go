package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jantom38/eduplatform/internal/grading"
	syncx "github.com/jantom38/eduplatform/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	grader grading.Grader
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB, grader grading.Grader, events *syncx.EventRepo) *SQLStore {
	return &SQLStore{db: db, grader: grader, events: events}
}

// ---- quizzes ----

func (s *SQLStore) CreateQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Quiz{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quizzes (id, course_id, title, description, number_to_display, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		q.ID, q.CourseID, q.Title, q.Description, q.NumberToDisplay, q.CreatedAt); err != nil {
		return Quiz{}, err
	}
	for i := range q.Questions {
		q.Questions[i].QuizID = q.ID
		q.Questions[i].Position = i
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = uuid.NewString()
		}
		if err := insertQuestion(ctx, tx, q.Questions[i]); err != nil {
			return Quiz{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, courseID string) ([]Quiz, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, title, description, number_to_display, created_at
		   FROM quizzes WHERE course_id=$1 ORDER BY created_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Quiz{}
	for rows.Next() {
		var q Quiz
		if err := rows.Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.NumberToDisplay, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	var q Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, description, number_to_display, created_at
		   FROM quizzes WHERE id=$1`, id).
		Scan(&q.ID, &q.CourseID, &q.Title, &q.Description, &q.NumberToDisplay, &q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Quiz{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, quiz_id, question_text, question_type, options_json, correct_answer, position
		   FROM quiz_questions WHERE quiz_id=$1 ORDER BY position, id`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()

	for rows.Next() {
		qq, err := scanQuestion(rows)
		if err != nil {
			return Quiz{}, err
		}
		q.Questions = append(q.Questions, qq)
	}
	return q, rows.Err()
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, q Quiz) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET title=$1, description=$2, number_to_display=$3 WHERE id=$4`,
		q.Title, q.Description, q.NumberToDisplay, q.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "quiz "+q.ID)
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	// questions, results and answers go with it via FK cascade
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if err := requireRow(res, "quiz "+id); err != nil {
		return err
	}
	s.appendEvent(ctx, syncx.EventQuizDeleted, id, "{}")
	return nil
}

// ---- questions ----

func (s *SQLStore) AddQuestion(ctx context.Context, q Question) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1`, q.QuizID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("quiz %s: %w", q.QuizID, ErrNotFound)
	}
	if err != nil {
		return Question{}, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position)+1, 0) FROM quiz_questions WHERE quiz_id=$1`, q.QuizID).
		Scan(&q.Position); err != nil {
		return Question{}, err
	}
	if err := insertQuestionDB(ctx, s.db, q); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, quiz_id, question_text, question_type, options_json, correct_answer, position
		   FROM quiz_questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q, err
}

func (s *SQLStore) UpdateQuestion(ctx context.Context, q Question) error {
	oj, err := json.Marshal(optionsOrEmpty(q.Options))
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE quiz_questions SET question_text=$1, question_type=$2, options_json=$3, correct_answer=$4
		  WHERE id=$5`,
		q.QuestionText, q.QuestionType, string(oj), q.CorrectAnswer, q.ID)
	if err != nil {
		return err
	}
	return requireRow(res, "question "+q.ID)
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quiz_questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, "question "+id)
}

// ---- scoring ----

func (s *SQLStore) SubmitQuiz(ctx context.Context, quizID, username string, answers []SubmittedAnswer) (Score, error) {
	if len(answers) == 0 {
		return Score{}, fmt.Errorf("%w: empty submission", ErrInvalid)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Score{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var userID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username=$1`, username).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return Score{}, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	if err != nil {
		return Score{}, err
	}
	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1`, quizID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Score{}, fmt.Errorf("quiz %s: %w", quizID, ErrNotFound)
	}
	if err != nil {
		return Score{}, err
	}

	resultID := uuid.NewString()
	now := time.Now().Unix()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quiz_results (id, quiz_id, user_id, correct_answers, total_questions, completed_at)
		 VALUES ($1,$2,$3,0,$4,$5)`,
		resultID, quizID, userID, len(answers), now); err != nil {
		return Score{}, err
	}

	correct := 0
	for _, a := range answers {
		var qtype, key string
		err := tx.QueryRowContext(ctx,
			`SELECT question_type, correct_answer FROM quiz_questions WHERE id=$1 AND quiz_id=$2`,
			a.QuestionID, quizID).Scan(&qtype, &key)
		if errors.Is(err, sql.ErrNoRows) {
			// referenced question vanished or belongs to another quiz: the
			// whole submission fails, nothing is persisted
			return Score{}, fmt.Errorf("question %s not part of quiz %s", a.QuestionID, quizID)
		}
		if err != nil {
			return Score{}, err
		}

		res, err := s.grader.Grade(grading.Q{Type: qtype, CorrectAnswer: key}, a.Answer)
		if err != nil {
			return Score{}, err
		}
		if res.Correct {
			correct++
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO quiz_answers (id, result_id, question_id, answer_text, is_correct)
			 VALUES ($1,$2,$3,$4,$5)`,
			uuid.NewString(), resultID, a.QuestionID, a.Answer, res.Correct); err != nil {
			return Score{}, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE quiz_results SET correct_answers=$1 WHERE id=$2`, correct, resultID); err != nil {
		return Score{}, err
	}
	if err := tx.Commit(); err != nil {
		return Score{}, err
	}

	sc := Score{
		ResultID:   resultID,
		Correct:    correct,
		Total:      len(answers),
		Percentage: float64(correct) * 100 / float64(len(answers)),
	}
	data, _ := json.Marshal(map[string]any{"quiz_id": quizID, "user": username, "correct": correct, "total": len(answers)})
	s.appendEvent(ctx, syncx.EventQuizSubmitted, resultID, string(data))
	return sc, nil
}

// ---- results ----

const resultColumns = `r.id, r.quiz_id, z.title, u.username, r.correct_answers, r.total_questions, r.completed_at`

func (s *SQLStore) ListQuizResults(ctx context.Context, quizID string) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+`
		   FROM quiz_results r
		   JOIN quizzes z ON z.id=r.quiz_id
		   JOIN users u ON u.id=r.user_id
		  WHERE r.quiz_id=$1
		  ORDER BY r.completed_at DESC, r.id DESC`, quizID)
	if err != nil {
		return nil, err
	}
	return collectResults(rows)
}

func (s *SQLStore) ListCourseResults(ctx context.Context, courseID string) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+`
		   FROM quiz_results r
		   JOIN quizzes z ON z.id=r.quiz_id
		   JOIN users u ON u.id=r.user_id
		  WHERE z.course_id=$1
		  ORDER BY z.title, u.username, r.completed_at DESC`, courseID)
	if err != nil {
		return nil, err
	}
	return collectResults(rows)
}

// Latest = newest completed_at for the (user, quiz) pair, result id as the
// tiebreak when two submissions land in the same second.
func (s *SQLStore) ListLatestResultsForUser(ctx context.Context, username string) ([]ResultRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+resultColumns+`
		   FROM quiz_results r
		   JOIN quizzes z ON z.id=r.quiz_id
		   JOIN users u ON u.id=r.user_id
		  WHERE u.username=$1
		    AND NOT EXISTS (
		        SELECT 1 FROM quiz_results r2
		         WHERE r2.quiz_id=r.quiz_id AND r2.user_id=r.user_id
		           AND (r2.completed_at > r.completed_at
		                OR (r2.completed_at = r.completed_at AND r2.id > r.id)))
		  ORDER BY r.completed_at DESC`, username)
	if err != nil {
		return nil, err
	}
	return collectResults(rows)
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	var oj string
	if err := r.Scan(&q.ID, &q.QuizID, &q.QuestionText, &q.QuestionType, &oj, &q.CorrectAnswer, &q.Position); err != nil {
		return Question{}, err
	}
	if oj != "" && oj != "{}" {
		if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
			return Question{}, fmt.Errorf("question %s options: %v", q.ID, err)
		}
	}
	return q, nil
}

func insertQuestion(ctx context.Context, tx *sql.Tx, q Question) error {
	oj, err := json.Marshal(optionsOrEmpty(q.Options))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO quiz_questions (id, quiz_id, question_text, question_type, options_json, correct_answer, position)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.QuizID, q.QuestionText, q.QuestionType, string(oj), q.CorrectAnswer, q.Position)
	return err
}

func insertQuestionDB(ctx context.Context, db *sql.DB, q Question) error {
	oj, err := json.Marshal(optionsOrEmpty(q.Options))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO quiz_questions (id, quiz_id, question_text, question_type, options_json, correct_answer, position)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.QuizID, q.QuestionText, q.QuestionType, string(oj), q.CorrectAnswer, q.Position)
	return err
}

func optionsOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func collectResults(rows *sql.Rows) ([]ResultRow, error) {
	defer rows.Close()
	out := []ResultRow{}
	for rows.Next() {
		var rr ResultRow
		if err := rows.Scan(&rr.ID, &rr.QuizID, &rr.QuizTitle, &rr.Username, &rr.Correct, &rr.Total, &rr.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) appendEvent(ctx context.Context, typ, key, data string) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, typ, key, data); err != nil {
		log.Printf("event log append %s %s: %v", typ, key, err)
	}
}
