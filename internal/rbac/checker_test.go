package rbac

import (
	"context"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(map[string][]string{
		"student": {"quiz:take", "course:list"},
		"teacher": {"quiz:*", "course:manage-own"},
		"admin":   {"*"},
	})

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "quiz:take", true},
		{"student", "quiz:manage-own", false},
		{"teacher", "quiz:manage-own", true},
		{"teacher", "quiz:take", true},
		{"teacher", "users:delete", false},
		{"admin", "anything:at-all", true},
		{"ghost", "quiz:take", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Fatalf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil) // default policy
	if !c.Any("teacher", "users:delete", "course:create") {
		t.Fatal("teacher should match at least course:create")
	}
	if c.Any("student", "course:create", "users:delete") {
		t.Fatal("student should match none of these")
	}
}

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "quiz:submit", true},
		{"student", "course:enroll", true},
		{"student", "quiz:manage-own", false},
		{"student", "result:view-course", false},
		{"teacher", "course:create", true},
		{"teacher", "result:export", true},
		{"teacher", "course:enroll", false},
		{"admin", "users:delete", true},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Fatalf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCanManageCourse(t *testing.T) {
	cases := []struct {
		name              string
		role, user, owner string
		want              bool
	}{
		{"admin always", "admin", "root", "alice", true},
		{"owning teacher", "teacher", "alice", "alice", true},
		{"other teacher", "teacher", "bob", "alice", false},
		{"teacher blank username", "teacher", "", "", false},
		{"student never", "student", "alice", "alice", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanManageCourse(tc.role, tc.user, tc.owner); got != tc.want {
				t.Fatalf("CanManageCourse(%q, %q, %q) = %v, want %v",
					tc.role, tc.user, tc.owner, got, tc.want)
			}
		})
	}
}

func TestRoleContextRoundTrip(t *testing.T) {
	ctx := WithRole(context.Background(), "teacher")
	if got := RoleFromContext(ctx); got != "teacher" {
		t.Fatalf("RoleFromContext = %q, want teacher", got)
	}
	if got := RoleFromContext(context.Background()); got != "" {
		t.Fatalf("RoleFromContext on empty ctx = %q, want empty", got)
	}
}
