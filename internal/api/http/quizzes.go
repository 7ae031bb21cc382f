package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jantom38/eduplatform/internal/quiz"
	"github.com/jantom38/eduplatform/internal/rbac"
)

// requireQuizOwner walks Quiz -> Course -> teacher and applies the
// ownership rule. Returns the course id for handlers that need it.
func requireQuizOwner(w http.ResponseWriter, r *http.Request, db *sql.DB, quizID string) (string, bool) {
	courseID, err := quizCourse(r.Context(), db, quizID)
	if err != nil {
		writeErr(w, err)
		return "", false
	}
	if !requireCourseOwner(w, r, db, courseID) {
		return "", false
	}
	return courseID, true
}

// POST /courses/{courseID}/quizzes
func CreateQuizHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, db, courseID) {
			return
		}
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.CourseID = courseID
		if strings.TrimSpace(q.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		if q.NumberToDisplay <= 0 {
			http.Error(w, "number_to_display must be positive", http.StatusBadRequest)
			return
		}
		for i := range q.Questions {
			if err := quiz.ValidateQuestion(q.Questions[i]); err != nil {
				writeErr(w, err)
				return
			}
		}
		created, err := store.CreateQuiz(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// GET /courses/{courseID}/quizzes
func ListQuizzesHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := principal(r)

		owner, err := courseOwner(r.Context(), db, courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !rbac.CanManageCourse(role, sub, owner) &&
			!(role == "student" && isEnrolled(r.Context(), db, sub, courseID)) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		out, err := store.ListQuizzes(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /quizzes/{quizID} — the take view: a fresh random subset of the
// pool with correctness metadata stripped. Fetching does not start an
// attempt; only a submit does.
func GetQuizHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		sub, role := principal(r)

		q, err := store.GetQuiz(r.Context(), quizID)
		if err != nil {
			writeErr(w, err)
			return
		}
		owner, err := courseOwner(r.Context(), db, q.CourseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !rbac.CanManageCourse(role, sub, owner) &&
			!(role == "student" && isEnrolled(r.Context(), db, sub, q.CourseID)) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		q.Questions = quiz.StripAnswers(quiz.SampleQuestions(q.Questions, q.NumberToDisplay))
		writeJSON(w, http.StatusOK, q)
	}
}

// GET /quizzes/{quizID}/edit — owner view, correct answers included.
func GetQuizEditHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		if _, ok := requireQuizOwner(w, r, db, quizID); !ok {
			return
		}
		q, err := store.GetQuiz(r.Context(), quizID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func UpdateQuizHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		if _, ok := requireQuizOwner(w, r, db, quizID); !ok {
			return
		}
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = quizID
		if strings.TrimSpace(q.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		if q.NumberToDisplay <= 0 {
			http.Error(w, "number_to_display must be positive", http.StatusBadRequest)
			return
		}
		if err := store.UpdateQuiz(r.Context(), q); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteQuizHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		if _, ok := requireQuizOwner(w, r, db, quizID); !ok {
			return
		}
		if err := store.DeleteQuiz(r.Context(), quizID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /quizzes/{quizID}/questions
func AddQuestionHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		if _, ok := requireQuizOwner(w, r, db, quizID); !ok {
			return
		}
		var q quiz.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.QuizID = quizID
		if err := quiz.ValidateQuestion(q); err != nil {
			writeErr(w, err)
			return
		}
		created, err := store.AddQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// PUT /questions/{questionID}
func UpdateQuestionHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := chi.URLParam(r, "questionID")
		quizID, err := questionQuiz(r.Context(), db, questionID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if _, ok := requireQuizOwner(w, r, db, quizID); !ok {
			return
		}
		var q quiz.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = questionID
		q.QuizID = quizID
		if err := quiz.ValidateQuestion(q); err != nil {
			writeErr(w, err)
			return
		}
		if err := store.UpdateQuestion(r.Context(), q); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /questions/{questionID}
func DeleteQuestionHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID := chi.URLParam(r, "questionID")
		quizID, err := questionQuiz(r.Context(), db, questionID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if _, ok := requireQuizOwner(w, r, db, quizID); !ok {
			return
		}
		if err := store.DeleteQuestion(r.Context(), questionID); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
