package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/jantom38/eduplatform/internal/auth/middleware"
	"github.com/jantom38/eduplatform/internal/quiz"
)

// POST /role-codes {"role":"teacher","ttl_hours":24} — admin mints a
// single-use code that grants the role at registration.
func CreateRoleCodeHandler(db *sql.DB, defaultTTLHrs int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())

		var req struct {
			Role     string `json:"role"`
			TTLHours int    `json:"ttl_hours,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		role := strings.ToLower(strings.TrimSpace(req.Role))
		if role != "student" && role != "teacher" && role != "admin" {
			http.Error(w, "invalid role", http.StatusBadRequest)
			return
		}
		ttl := req.TTLHours
		if ttl <= 0 {
			ttl = defaultTTLHrs
		}

		var creatorID string
		if err := db.QueryRowContext(r.Context(),
			`SELECT id FROM users WHERE username=$1`, sub).Scan(&creatorID); err != nil {
			http.Error(w, "unknown principal", http.StatusUnauthorized)
			return
		}

		now := time.Now()
		rc := quiz.RoleCode{
			ID:        uuid.NewString(),
			Code:      uuid.NewString(),
			Role:      role,
			CreatedBy: creatorID,
			CreatedAt: now.Unix(),
			ExpiresAt: now.Add(time.Duration(ttl) * time.Hour).Unix(),
			Active:    true,
		}
		if _, err := db.ExecContext(r.Context(),
			`INSERT INTO role_codes (id, code, role, created_by, created_at, expires_at, active)
			 VALUES ($1,$2,$3,$4,$5,$6,TRUE)`,
			rc.ID, rc.Code, rc.Role, rc.CreatedBy, rc.CreatedAt, rc.ExpiresAt); err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, rc)
	}
}

// GET /role-codes
func ListRoleCodesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, code, role, created_by, created_at, expires_at, active
			   FROM role_codes ORDER BY created_at DESC`)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []quiz.RoleCode{}
		for rows.Next() {
			var rc quiz.RoleCode
			if err := rows.Scan(&rc.ID, &rc.Code, &rc.Role, &rc.CreatedBy, &rc.CreatedAt, &rc.ExpiresAt, &rc.Active); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			out = append(out, rc)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// DELETE /role-codes/{codeID} — deactivate, keep the audit row.
func DeactivateRoleCodeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codeID := chi.URLParam(r, "codeID")
		res, err := db.ExecContext(r.Context(),
			`UPDATE role_codes SET active=FALSE WHERE id=$1`, codeID)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
