package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jantom38/eduplatform/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)

	tok, err := a.IssueJWT("bob", "student")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	claims, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != "bob" || claims.Role != "student" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := NewAuthService("secret-a", time.Hour)
	b := NewAuthService("secret-b", time.Hour)

	tok, err := a.IssueJWT("bob", "student")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	if _, err := b.Parse(tok); err == nil {
		t.Fatal("token signed with another secret should not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	a := &AuthService{hmac: []byte("test-secret"), ttl: -time.Minute}

	tok, err := a.IssueJWT("bob", "student")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	if _, err := a.Parse(tok); err == nil {
		t.Fatal("expired token should not parse")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)

	var gotSub, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	})
	handler := JWTMiddleware(a)(next)

	// no header
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d, want 401", rec.Code)
	}

	// garbage token
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}

	// valid token threads the principal through
	tok, err := a.IssueJWT("alice", "teacher")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d", rec.Code)
	}
	if gotSub != "alice" || gotRole != "teacher" {
		t.Fatalf("principal = %q/%q, want alice/teacher", gotSub, gotRole)
	}
}
