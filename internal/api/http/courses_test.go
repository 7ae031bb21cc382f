package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/jantom38/eduplatform/internal/quiz"
)

func TestEnrollHandler(t *testing.T) {
	dbh := openTestDB(t)
	seedWorld(t, dbh)

	router := chi.NewRouter()
	router.Post("/courses/{courseID}/enroll", EnrollHandler(dbh))

	// wrong key is rejected without enrolling
	req := httptest.NewRequest(http.MethodPost, "/courses/c-1/enroll", strings.NewReader(`{"access_key":"wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "eve", "student"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong key status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/courses/c-1/enroll", strings.NewReader(`{"access_key":"key-1"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "eve", "student"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var active bool
	if err := dbh.QueryRow(
		`SELECT active FROM user_courses WHERE course_id='c-1' AND user_id='s-2'`).Scan(&active); err != nil {
		t.Fatalf("enrollment row: %v", err)
	}
	if !active {
		t.Fatal("enrollment not active")
	}

	// enrolling again is idempotent
	req = httptest.NewRequest(http.MethodPost, "/courses/c-1/enroll", strings.NewReader(`{"access_key":"key-1"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "eve", "student"))
	if rec.Code != http.StatusOK {
		t.Fatalf("re-enroll status = %d", rec.Code)
	}
}

func TestGetCourseHandlerStripsAccessKey(t *testing.T) {
	dbh := openTestDB(t)
	seedWorld(t, dbh)

	router := chi.NewRouter()
	router.Get("/courses/{courseID}", GetCourseHandler(dbh))

	fetch := func(username, role string) (*httptest.ResponseRecorder, quiz.Course) {
		req := httptest.NewRequest(http.MethodGet, "/courses/c-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, asUser(req, username, role))
		var c quiz.Course
		if rec.Code == http.StatusOK {
			if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
				t.Fatalf("decode: %v", err)
			}
		}
		return rec, c
	}

	// owner sees the access key
	rec, c := fetch("alice", "teacher")
	if rec.Code != http.StatusOK || c.AccessKey != "key-1" {
		t.Fatalf("owner: status %d, key %q", rec.Code, c.AccessKey)
	}

	// enrolled student sees the course but not the key
	rec, c = fetch("bob", "student")
	if rec.Code != http.StatusOK {
		t.Fatalf("enrolled student: status %d", rec.Code)
	}
	if c.AccessKey != "" {
		t.Fatalf("access key leaked to student: %q", c.AccessKey)
	}

	// unenrolled student is refused outright
	rec, _ = fetch("eve", "student")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unenrolled student: status %d, want 403", rec.Code)
	}
}

func TestUpdateCourseHandlerOwnership(t *testing.T) {
	dbh := openTestDB(t)
	seedWorld(t, dbh)
	mustExec(t, dbh, `INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ('t-2','carol','x','teacher',0)`)

	router := chi.NewRouter()
	router.Put("/courses/{courseID}", UpdateCourseHandler(dbh))

	body := `{"name":"Go 102","description":"","access_key":"key-1"}`

	// a teacher who does not own the course is refused
	req := httptest.NewRequest(http.MethodPut, "/courses/c-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "carol", "teacher"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-owner status = %d, want 403", rec.Code)
	}

	// the owner may rename
	req = httptest.NewRequest(http.MethodPut, "/courses/c-1", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "alice", "teacher"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// blanking the access key is rejected
	req = httptest.NewRequest(http.MethodPut, "/courses/c-1",
		strings.NewReader(`{"name":"Go 102","access_key":"  "}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "alice", "teacher"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank key status = %d, want 400", rec.Code)
	}

	// admin may manage any course
	req = httptest.NewRequest(http.MethodPut, "/courses/c-1",
		strings.NewReader(`{"name":"Go 103","access_key":"key-1"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "root", "admin"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin status = %d", rec.Code)
	}
}

func TestCreateCourseHandlerDuplicateName(t *testing.T) {
	dbh := openTestDB(t)
	seedWorld(t, dbh)

	router := chi.NewRouter()
	router.Post("/courses", CreateCourseHandler(dbh))

	req := httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(`{"name":"Go 101"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "alice", "teacher"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	// a fresh name gets a generated access key
	req = httptest.NewRequest(http.MethodPost, "/courses", strings.NewReader(`{"name":"Go 201"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, "alice", "teacher"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var c quiz.Course
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.AccessKey == "" || c.TeacherName != "alice" {
		t.Fatalf("created course = %+v", c)
	}
}
