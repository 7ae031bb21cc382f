package quiz

import "math/rand"

// SampleQuestions returns min(n, len(pool)) questions drawn uniformly at
// random, freshly shuffled per call so repeated fetches of the same quiz
// present different subsets and orderings. The pool is not mutated.
func SampleQuestions(pool []Question, n int) []Question {
	out := make([]Question, len(pool))
	copy(out, pool)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// StripAnswers removes correctness metadata from the student payload. Only
// text, type and options are exposed; the edit view keeps the answers.
func StripAnswers(qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := range out {
		out[i].CorrectAnswer = ""
	}
	return out
}
