package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	authmw "github.com/jantom38/eduplatform/internal/auth/middleware"
	"github.com/jantom38/eduplatform/internal/db"
	"github.com/jantom38/eduplatform/internal/grading"
	"github.com/jantom38/eduplatform/internal/quiz"
	"github.com/jantom38/eduplatform/internal/rbac"
)

// stubStore overrides just the methods a test needs; the rest panic via the
// embedded nil interface.
type stubStore struct {
	quiz.Store
	latest func(ctx context.Context, username string) ([]quiz.ResultRow, error)
}

func (s stubStore) ListLatestResultsForUser(ctx context.Context, username string) ([]quiz.ResultRow, error) {
	return s.latest(ctx, username)
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func mustExec(t *testing.T, dbh *sql.DB, q string, args ...any) {
	t.Helper()
	if _, err := dbh.Exec(q, args...); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}

// seedWorld inserts a teacher with one course, an enrolled student "bob" and
// an unenrolled student "eve".
func seedWorld(t *testing.T, dbh *sql.DB) {
	t.Helper()
	mustExec(t, dbh, `INSERT INTO users (id, username, password_hash, role, created_at) VALUES
		('t-1','alice','x','teacher',0),
		('s-1','bob','x','student',0),
		('s-2','eve','x','student',0)`)
	mustExec(t, dbh, `INSERT INTO courses (id, name, description, access_key, teacher_id, created_at)
		VALUES ('c-1','Go 101','','key-1','t-1',0)`)
	mustExec(t, dbh, `INSERT INTO user_courses (course_id, user_id, joined_at, active)
		VALUES ('c-1','s-1',0,1)`)
}

func asUser(r *http.Request, username, role string) *http.Request {
	ctx := authmw.WithSubject(r.Context(), username)
	ctx = rbac.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func TestSubmitQuizHandler(t *testing.T) {
	dbh := openTestDB(t)
	seedWorld(t, dbh)
	store := quiz.NewSQLStore(dbh, grading.NewDefaultGrader(), nil)

	created, err := store.CreateQuiz(context.Background(), quiz.Quiz{
		CourseID:        "c-1",
		Title:           "Week 1",
		NumberToDisplay: 1,
		Questions: []quiz.Question{{
			QuestionText:  "Capital of France",
			QuestionType:  quiz.TypeOpenEnded,
			CorrectAnswer: "Paris",
		}},
	})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	router := chi.NewRouter()
	router.Post("/quizzes/{quizID}/submit", SubmitQuizHandler(dbh, store))

	body := `{"answers":[{"question_id":"` + created.Questions[0].ID + `","answer":" paris "}]}`
	req := httptest.NewRequest(http.MethodPost, "/quizzes/"+created.ID+"/submit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "bob", "student"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success    bool    `json:"success"`
		Score      string  `json:"score"`
		Percentage float64 `json:"percentage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Score != "1/1" || resp.Percentage != 100 {
		t.Fatalf("resp = %+v, want success 1/1 at 100%%", resp)
	}
}

func TestSubmitQuizHandlerNotEnrolled(t *testing.T) {
	dbh := openTestDB(t)
	seedWorld(t, dbh)
	store := quiz.NewSQLStore(dbh, grading.NewDefaultGrader(), nil)

	created, err := store.CreateQuiz(context.Background(), quiz.Quiz{
		CourseID: "c-1", Title: "Week 1", NumberToDisplay: 1,
		Questions: []quiz.Question{{
			QuestionText: "q", QuestionType: quiz.TypeOpenEnded, CorrectAnswer: "x",
		}},
	})
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	router := chi.NewRouter()
	router.Post("/quizzes/{quizID}/submit", SubmitQuizHandler(dbh, store))

	body := `{"answers":[{"question_id":"` + created.Questions[0].ID + `","answer":"x"}]}`
	req := httptest.NewRequest(http.MethodPost, "/quizzes/"+created.ID+"/submit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "eve", "student"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestSubmitQuizHandlerUnknownQuiz(t *testing.T) {
	dbh := openTestDB(t)
	seedWorld(t, dbh)
	store := quiz.NewSQLStore(dbh, grading.NewDefaultGrader(), nil)

	router := chi.NewRouter()
	router.Post("/quizzes/{quizID}/submit", SubmitQuizHandler(dbh, store))

	req := httptest.NewRequest(http.MethodPost, "/quizzes/nope/submit", strings.NewReader(`{"answers":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "bob", "student"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestMyResultsHandler(t *testing.T) {
	store := stubStore{latest: func(_ context.Context, username string) ([]quiz.ResultRow, error) {
		if username != "bob" {
			t.Fatalf("queried for %q, want bob", username)
		}
		return []quiz.ResultRow{{ID: "r-1", QuizID: "q-1", QuizTitle: "Week 1", Username: "bob", Correct: 2, Total: 3}}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/me/results", nil)
	rec := httptest.NewRecorder()
	MyResultsHandler(store)(rec, asUser(req, "bob", "student"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rows []quiz.ResultRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].QuizTitle != "Week 1" {
		t.Fatalf("rows = %+v", rows)
	}
}
