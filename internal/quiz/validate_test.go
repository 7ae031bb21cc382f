package quiz

import (
	"errors"
	"testing"
)

func mc(text, answer string, options map[string]string) Question {
	return Question{
		QuestionText:  text,
		QuestionType:  TypeMultipleChoice,
		Options:       options,
		CorrectAnswer: answer,
	}
}

func TestValidateQuestionBlankText(t *testing.T) {
	q := mc("   ", "A", map[string]string{"A": "one", "B": "two"})
	if err := ValidateQuestion(q); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestValidateQuestionUnknownType(t *testing.T) {
	q := Question{QuestionText: "q", QuestionType: "essay", CorrectAnswer: "x"}
	if err := ValidateQuestion(q); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestValidateMultipleChoice(t *testing.T) {
	opts := map[string]string{"A": "one", "B": "two", "C": "three"}

	cases := []struct {
		name string
		q    Question
		ok   bool
	}{
		{"valid single key", mc("q", "A", opts), true},
		{"valid multi key", mc("q", "A,C", opts), true},
		{"one option only", mc("q", "A", map[string]string{"A": "one"}), false},
		{"no options", mc("q", "A", nil), false},
		{"blank answer", mc("q", "  ", opts), false},
		{"key not among options", mc("q", "A,D", opts), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateQuestion(tc.q)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateTrueFalse(t *testing.T) {
	good := map[string]string{TrueKey: TrueLabel, FalseKey: FalseLabel}

	cases := []struct {
		name    string
		options map[string]string
		answer  string
		ok      bool
	}{
		{"valid true", good, TrueKey, true},
		{"valid false", good, FalseKey, true},
		{"wrong labels", map[string]string{TrueKey: "Yes", FalseKey: "No"}, TrueKey, false},
		{"extra option", map[string]string{TrueKey: TrueLabel, FalseKey: FalseLabel, "Maybe": "?"}, TrueKey, false},
		{"answer outside pair", good, "Maybe", false},
		{"blank answer", good, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{
				QuestionText:  "q",
				QuestionType:  TypeTrueFalse,
				Options:       tc.options,
				CorrectAnswer: tc.answer,
			}
			err := ValidateQuestion(q)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidateOpenEnded(t *testing.T) {
	base := Question{QuestionText: "q", QuestionType: TypeOpenEnded, CorrectAnswer: "Paris"}
	if err := ValidateQuestion(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blank := base
	blank.CorrectAnswer = "   "
	if err := ValidateQuestion(blank); !errors.Is(err, ErrInvalid) {
		t.Fatalf("blank answer: err = %v, want ErrInvalid", err)
	}

	withOpts := base
	withOpts.Options = map[string]string{"A": "one"}
	if err := ValidateQuestion(withOpts); !errors.Is(err, ErrInvalid) {
		t.Fatalf("options present: err = %v, want ErrInvalid", err)
	}
}
