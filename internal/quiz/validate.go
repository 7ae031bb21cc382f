package quiz

import (
	"fmt"
	"strings"

	"github.com/jantom38/eduplatform/internal/grading"
)

const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeOpenEnded      = "open_ended"
)

// Fixed option pair for true/false questions. The display labels are part
// of the contract: clients render them verbatim.
const (
	TrueKey    = "True"
	FalseKey   = "False"
	TrueLabel  = "Prawda"
	FalseLabel = "Fałsz"
)

// ValidateQuestion checks the structural rules for a question definition.
// A failure wraps ErrInvalid and names the rule; callers reject the write.
func ValidateQuestion(q Question) error {
	if strings.TrimSpace(q.QuestionText) == "" {
		return fmt.Errorf("%w: question text is blank", ErrInvalid)
	}
	switch q.QuestionType {
	case TypeMultipleChoice:
		return validateMultipleChoice(q)
	case TypeTrueFalse:
		return validateTrueFalse(q)
	case TypeOpenEnded:
		return validateOpenEnded(q)
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrInvalid, q.QuestionType)
	}
}

func validateMultipleChoice(q Question) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: multiple_choice needs at least 2 options", ErrInvalid)
	}
	keys := grading.SplitKeys(q.CorrectAnswer)
	if len(keys) == 0 {
		return fmt.Errorf("%w: correct answer is blank", ErrInvalid)
	}
	for _, k := range keys {
		if _, ok := q.Options[k]; !ok {
			return fmt.Errorf("%w: correct answer key %q not among options", ErrInvalid, k)
		}
	}
	return nil
}

func validateTrueFalse(q Question) error {
	if len(q.Options) != 2 ||
		q.Options[TrueKey] != TrueLabel ||
		q.Options[FalseKey] != FalseLabel {
		return fmt.Errorf("%w: true_false options must be exactly {%s: %s, %s: %s}",
			ErrInvalid, TrueKey, TrueLabel, FalseKey, FalseLabel)
	}
	keys := grading.SplitKeys(q.CorrectAnswer)
	if len(keys) == 0 {
		return fmt.Errorf("%w: correct answer is blank", ErrInvalid)
	}
	for _, k := range keys {
		if k != TrueKey && k != FalseKey {
			return fmt.Errorf("%w: true_false answer key %q must be %s or %s",
				ErrInvalid, k, TrueKey, FalseKey)
		}
	}
	return nil
}

func validateOpenEnded(q Question) error {
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fmt.Errorf("%w: correct answer is blank", ErrInvalid)
	}
	if len(q.Options) != 0 {
		return fmt.Errorf("%w: open_ended question must not define options", ErrInvalid)
	}
	return nil
}
