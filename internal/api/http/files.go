package http

import (
	"database/sql"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jantom38/eduplatform/internal/rbac"
	"github.com/jantom38/eduplatform/internal/storage"
)

// Course materials live in the blob store under courses/<courseID>/.

// POST /courses/{courseID}/files (multipart, field "file")
func UploadCourseFileHandler(db *sql.DB, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID := chi.URLParam(r, "courseID")
		if !requireCourseOwner(w, r, db, courseID) {
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		name := path.Base(strings.ReplaceAll(hdr.Filename, "\\", "/"))
		if name == "" || name == "." || name == "/" {
			http.Error(w, "bad filename", http.StatusBadRequest)
			return
		}
		key := "courses/" + courseID + "/" + name
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"key": key})
	}
}

// GET /courses/{courseID}/files
func ListCourseFilesHandler(db *sql.DB, bs storage.BlobStore) http.HandlerFunc {
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

		keys, err := bs.List("courses/" + courseID)
		if err != nil {
			http.Error(w, "store error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, keys)
	}
}

// GET /files/* — download by key; enrollment or ownership of the owning
// course is required.
func GetFileHandler(db *sql.DB, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		parts := strings.SplitN(key, "/", 3)
		if len(parts) != 3 || parts[0] != "courses" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		courseID := parts[1]
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

		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()

		ctype := mime.TypeByExtension(path.Ext(key))
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		w.Header().Set("Content-Type", ctype)
		_, _ = io.Copy(w, rc)
	}
}

// DELETE /files/* — owner/admin only.
func DeleteFileHandler(db *sql.DB, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		parts := strings.SplitN(key, "/", 3)
		if len(parts) != 3 || parts[0] != "courses" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if !requireCourseOwner(w, r, db, parts[1]) {
			return
		}
		if err := bs.Delete(key); err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
