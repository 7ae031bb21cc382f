package http

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/jantom38/eduplatform/internal/auth/middleware"
	"github.com/jantom38/eduplatform/internal/quiz"
	"github.com/jantom38/eduplatform/internal/rbac"
	syncx "github.com/jantom38/eduplatform/internal/sync"
)

func principal(r *http.Request) (username, role string) {
	return authmw.SubjectFromContext(r.Context()), rbac.RoleFromContext(r.Context())
}

// requireCourseOwner resolves the owning teacher and applies the ownership
// rule. Returns false after writing the error response.
func requireCourseOwner(w http.ResponseWriter, r *http.Request, db *sql.DB, courseID string) bool {
	sub, role := principal(r)
	owner, err := courseOwner(r.Context(), db, courseID)
	if err != nil {
		writeErr(w, err)
		return false
	}
	if !rbac.CanManageCourse(role, sub, owner) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func CreateCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := principal(r)
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			AccessKey   string `json:"access_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		key := strings.TrimSpace(req.AccessKey)
		if key == "" {
			key = uuid.NewString()[:8]
		}

		var teacherID string
		if err := db.QueryRowContext(r.Context(),
			`SELECT id FROM users WHERE username=$1`, sub).Scan(&teacherID); err != nil {
			http.Error(w, "unknown principal", http.StatusUnauthorized)
			return
		}

		var taken int
		err := db.QueryRowContext(r.Context(), `SELECT 1 FROM courses WHERE name=$1`, req.Name).Scan(&taken)
		if err == nil {
			http.Error(w, "course name already taken", http.StatusConflict)
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		c := quiz.Course{
			ID:          uuid.NewString(),
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			AccessKey:   key,
			TeacherID:   teacherID,
			TeacherName: sub,
			CreatedAt:   time.Now().Unix(),
		}
		if _, err := db.ExecContext(r.Context(),
			`INSERT INTO courses (id, name, description, access_key, teacher_id, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, c.Name, c.Description, c.AccessKey, c.TeacherID, c.CreatedAt); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func ListCoursesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := principal(r)

		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		if limit > 200 {
			limit = 200
		}
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		var (
			sqlStr string
			args   []any
		)
		switch role {
		case "admin":
			sqlStr = `
				SELECT c.id, c.name, c.description, u.username, c.created_at
				  FROM courses c JOIN users u ON u.id=c.teacher_id
				 WHERE ($1='' OR c.name LIKE '%' || $1 || '%')
				 ORDER BY c.created_at DESC LIMIT $2 OFFSET $3`
			args = []any{q, limit, offset}
		case "teacher":
			sqlStr = `
				SELECT c.id, c.name, c.description, u.username, c.created_at
				  FROM courses c JOIN users u ON u.id=c.teacher_id
				 WHERE u.username=$1 AND ($2='' OR c.name LIKE '%' || $2 || '%')
				 ORDER BY c.created_at DESC LIMIT $3 OFFSET $4`
			args = []any{sub, q, limit, offset}
		default: // student: active enrollments only
			sqlStr = `
				SELECT c.id, c.name, c.description, u.username, c.created_at
				  FROM courses c
				  JOIN users u ON u.id=c.teacher_id
				  JOIN user_courses uc ON uc.course_id=c.id
				  JOIN users s ON s.id=uc.user_id
				 WHERE s.username=$1 AND uc.active AND ($2='' OR c.name LIKE '%' || $2 || '%')
				 ORDER BY c.created_at DESC LIMIT $3 OFFSET $4`
			args = []any{sub, q, limit, offset}
		}

		rows, err := db.QueryContext(r.Context(), sqlStr, args...)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []quiz.Course{}
		for rows.Next() {
			var c quiz.Course
			if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.TeacherName, &c.CreatedAt); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			out = append(out, c)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := principal(r)

		var c quiz.Course
		err := db.QueryRowContext(r.Context(),
			`SELECT c.id, c.name, c.description, c.access_key, c.teacher_id, u.username, c.created_at
			   FROM courses c JOIN users u ON u.id=c.teacher_id WHERE c.id=$1`,
			courseID).
			Scan(&c.ID, &c.Name, &c.Description, &c.AccessKey, &c.TeacherID, &c.TeacherName, &c.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		if !rbac.CanManageCourse(role, sub, c.TeacherName) {
			if role != "student" || !isEnrolled(r.Context(), db, sub, courseID) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			c.AccessKey = "" // shared secret stays with the owner
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func UpdateCourseHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, db, courseID) {
			return
		}
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			AccessKey   string `json:"access_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.AccessKey) == "" {
			http.Error(w, "access key must not be blank", http.StatusBadRequest)
			return
		}

		var clash int
		err := db.QueryRowContext(r.Context(),
			`SELECT 1 FROM courses WHERE name=$1 AND id<>$2`, req.Name, courseID).Scan(&clash)
		if err == nil {
			http.Error(w, "course name already taken", http.StatusConflict)
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		if _, err := db.ExecContext(r.Context(),
			`UPDATE courses SET name=$1, description=$2, access_key=$3 WHERE id=$4`,
			strings.TrimSpace(req.Name), req.Description, strings.TrimSpace(req.AccessKey), courseID); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteCourseHandler(db *sql.DB, events *syncx.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, db, courseID) {
			return
		}
		// enrollments, quizzes, questions, results and answers cascade
		if _, err := db.ExecContext(r.Context(), `DELETE FROM courses WHERE id=$1`, courseID); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		_ = events.Append(r.Context(), syncx.EventCourseDeleted, courseID, "{}")
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /courses/{courseID}/enroll {"access_key": "..."}
func EnrollHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, _ := principal(r)

		var req struct {
			AccessKey string `json:"access_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.AccessKey) == "" {
			http.Error(w, "access_key required", http.StatusBadRequest)
			return
		}

		var key string
		err := db.QueryRowContext(r.Context(),
			`SELECT access_key FROM courses WHERE id=$1`, courseID).Scan(&key)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(strings.TrimSpace(req.AccessKey))) != 1 {
			http.Error(w, "wrong access key", http.StatusForbidden)
			return
		}

		var userID string
		if err := db.QueryRowContext(r.Context(),
			`SELECT id FROM users WHERE username=$1`, sub).Scan(&userID); err != nil {
			http.Error(w, "unknown principal", http.StatusUnauthorized)
			return
		}
		// idempotent: re-enrolling reactivates a dropped enrollment
		if _, err := db.ExecContext(r.Context(),
			`INSERT INTO user_courses (course_id, user_id, joined_at, active) VALUES ($1,$2,$3,TRUE)
			 ON CONFLICT (course_id, user_id) DO UPDATE SET active=TRUE`,
			courseID, userID, time.Now().Unix()); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"enrolled": true, "course_id": courseID})
	}
}

func ListCourseStudentsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, db, courseID) {
			return
		}
		rows, err := db.QueryContext(r.Context(),
			`SELECT uc.user_id, u.username, uc.joined_at, uc.active
			   FROM user_courses uc JOIN users u ON u.id=uc.user_id
			  WHERE uc.course_id=$1 ORDER BY u.username`, courseID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []quiz.Enrollment{}
		for rows.Next() {
			e := quiz.Enrollment{CourseID: courseID}
			if err := rows.Scan(&e.UserID, &e.Username, &e.JoinedAt, &e.Active); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			out = append(out, e)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func RemoveStudentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		userID := chi.URLParam(r, "userID")
		if !requireCourseOwner(w, r, db, courseID) {
			return
		}
		if _, err := db.ExecContext(r.Context(),
			`DELETE FROM user_courses WHERE course_id=$1 AND user_id=$2`, courseID, userID); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
