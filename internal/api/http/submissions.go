package http

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jantom38/eduplatform/internal/quiz"
)

// POST /quizzes/{quizID}/submit {"answers":[{"question_id":"...","answer":"..."}]}
func SubmitQuizHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		sub, _ := principal(r)

		courseID, err := quizCourse(r.Context(), db, quizID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !isEnrolled(r.Context(), db, sub, courseID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req struct {
			Answers []quiz.SubmittedAnswer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		score, err := store.SubmitQuiz(r.Context(), quizID, sub, req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"score":           fmt.Sprintf("%d/%d", score.Correct, score.Total),
			"correct_answers": score.Correct,
			"total_questions": score.Total,
			"percentage":      score.Percentage,
		})
	}
}

// GET /quizzes/{quizID}/results — owner/admin listing of every attempt.
func ListQuizResultsHandler(db *sql.DB, store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		if _, ok := requireQuizOwner(w, r, db, quizID); !ok {
			return
		}
		out, err := store.ListQuizResults(r.Context(), quizID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /me/results — the caller's latest result per quiz.
func MyResultsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := principal(r)
		out, err := store.ListLatestResultsForUser(r.Context(), sub)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
