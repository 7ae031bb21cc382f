package grading

import (
	"fmt"
	"strings"
)

// Q is the minimal view of a question needed for grading.
// Keep this in sync with the fields the quiz store uses.
type Q struct {
	Type          string
	CorrectAnswer string
}

// Result is the outcome of grading a single submitted answer.
type Result struct {
	Correct bool
}

// Strategy grades a single question type.
type Strategy interface {
	Grade(q Q, answer string) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q Q, answer string) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(q Q, answer string) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		// unreachable for questions that passed validation at write time
		return Result{}, fmt.Errorf("no grading strategy for question type %q", q.Type)
	}
	return s.Grade(q, answer)
}

// NewDefaultGrader installs the built-in strategies.
func NewDefaultGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"multiple_choice": choiceSetStrategy{},
			"true_false":      trueFalseStrategy{},
			"open_ended":      openEndedStrategy{},
		},
	}
}

// --- Strategies ---

// choiceSetStrategy compares the comma-separated key sets. Order and
// duplicates are irrelevant; only exact set equality scores.
type choiceSetStrategy struct{}

func (choiceSetStrategy) Grade(q Q, answer string) (Result, error) {
	want := toSet(SplitKeys(q.CorrectAnswer))
	got := toSet(SplitKeys(answer))
	return Result{Correct: setEqual(want, got)}, nil
}

type trueFalseStrategy struct{}

func (trueFalseStrategy) Grade(q Q, answer string) (Result, error) {
	return Result{Correct: strings.EqualFold(q.CorrectAnswer, answer)}, nil
}

type openEndedStrategy struct{}

func (openEndedStrategy) Grade(q Q, answer string) (Result, error) {
	want := strings.TrimSpace(q.CorrectAnswer)
	got := strings.TrimSpace(answer)
	return Result{Correct: strings.EqualFold(want, got)}, nil
}

// --- helpers ---

// SplitKeys splits a comma-separated answer into trimmed, non-empty keys.
func SplitKeys(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func toSet(keys []string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

func setEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
