package grading

import "testing"

func TestGradeMultipleChoice(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "multiple_choice", CorrectAnswer: "A,B"}

	cases := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"same order", "A,B", true},
		{"reversed order", "B,A", true},
		{"extra whitespace", " B , A ", true},
		{"duplicate keys", "A,A,B", true},
		{"subset", "A", false},
		{"superset", "A,B,C", false},
		{"disjoint", "C,D", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := g.Grade(q, tc.answer)
			if err != nil {
				t.Fatalf("Grade: %v", err)
			}
			if res.Correct != tc.correct {
				t.Fatalf("Grade(%q) correct = %v, want %v", tc.answer, res.Correct, tc.correct)
			}
		})
	}
}

func TestGradeTrueFalse(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "true_false", CorrectAnswer: "False"}

	cases := []struct {
		answer  string
		correct bool
	}{
		{"False", true},
		{"false", true},
		{"FALSE", true},
		{"True", false},
		{"", false},
	}
	for _, tc := range cases {
		res, err := g.Grade(q, tc.answer)
		if err != nil {
			t.Fatalf("Grade(%q): %v", tc.answer, err)
		}
		if res.Correct != tc.correct {
			t.Fatalf("Grade(%q) correct = %v, want %v", tc.answer, res.Correct, tc.correct)
		}
	}
}

func TestGradeOpenEnded(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: "open_ended", CorrectAnswer: "Paris"}

	cases := []struct {
		answer  string
		correct bool
	}{
		{"Paris", true},
		{"paris", true},
		{"  paris  ", true},
		{"PARIS", true},
		{"London", false},
		{"", false},
	}
	for _, tc := range cases {
		res, err := g.Grade(q, tc.answer)
		if err != nil {
			t.Fatalf("Grade(%q): %v", tc.answer, err)
		}
		if res.Correct != tc.correct {
			t.Fatalf("Grade(%q) correct = %v, want %v", tc.answer, res.Correct, tc.correct)
		}
	}
}

func TestGradeUnknownType(t *testing.T) {
	g := NewDefaultGrader()
	if _, err := g.Grade(Q{Type: "essay"}, "anything"); err == nil {
		t.Fatal("expected error for unknown question type")
	}
}

func TestSplitKeys(t *testing.T) {
	got := SplitKeys(" A, ,B ,, C")
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("SplitKeys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SplitKeys = %v, want %v", got, want)
		}
	}
}
