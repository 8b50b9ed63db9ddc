package game

import (
	"strings"

	"github.com/xrash/smetrics"
)

// similarityThreshold is the bounded-similarity score at or above which
// a non-exact guess still counts as correct.
const similarityThreshold = 0.90

// MatchClass classifies how a guess relates to the answer.
type MatchClass int

const (
	MatchDifferent MatchClass = iota
	MatchSimilar
	MatchExact
)

// String returns the storage name of the classification.
func (c MatchClass) String() string {
	switch c {
	case MatchExact:
		return "exact"
	case MatchSimilar:
		return "similar"
	default:
		return "different"
	}
}

// MatchResult is the outcome of comparing a guess with the answer.
type MatchResult struct {
	Correct    bool
	Similarity float64
	Class      MatchClass
}

// Match compares a guess against the secret answer. Both strings are
// case-folded and trimmed before comparison. Exact normalized equality
// wins outright; otherwise a Jaro-Winkler similarity decides, with
// scores at or above similarityThreshold accepted as correct.
//
// Match is pure: same inputs always produce the same result.
func Match(guess, answer string) MatchResult {
	g := strings.ToLower(strings.TrimSpace(guess))
	a := strings.ToLower(strings.TrimSpace(answer))

	if g == "" || a == "" {
		return MatchResult{Correct: false, Similarity: 0, Class: MatchDifferent}
	}

	if g == a {
		return MatchResult{Correct: true, Similarity: 1.0, Class: MatchExact}
	}

	sim := smetrics.JaroWinkler(g, a, 0.7, 4)
	if sim >= similarityThreshold {
		return MatchResult{Correct: true, Similarity: sim, Class: MatchSimilar}
	}
	return MatchResult{Correct: false, Similarity: sim, Class: MatchDifferent}
}
