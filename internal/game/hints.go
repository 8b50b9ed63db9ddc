package game

import (
	"math/rand"
	"strings"
	"unicode"
)

// MaxHints is the per-round cap on revealed letter positions.
const MaxHints = 3

// hintPlaceholder replaces unrevealed alphabetic characters in the
// hint display.
const hintPlaceholder = '_'

// HintPlanner picks which letter position to reveal next. Selection
// among unrevealed alphabetic positions is uniform-random; a position
// is never picked twice because callers track revealed positions per
// round.
type HintPlanner struct {
	rng *rand.Rand
}

// NewHintPlanner creates a planner backed by the given random source.
// A nil source falls back to the global one.
func NewHintPlanner(rng *rand.Rand) *HintPlanner {
	return &HintPlanner{rng: rng}
}

// NextLetterHint selects an unrevealed alphabetic position of answer.
// It returns ok=false when the hint limit is reached or no eligible
// position remains; the caller treats that as "exhausted", not as an
// error.
func (p *HintPlanner) NextLetterHint(answer string, revealed map[int]bool) (pos int, display string, ok bool) {
	if len(revealed) >= MaxHints {
		return 0, "", false
	}

	var eligible []int
	for i, r := range []rune(answer) {
		if unicode.IsLetter(r) && !revealed[i] {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return 0, "", false
	}

	if p.rng != nil {
		pos = eligible[p.rng.Intn(len(eligible))]
	} else {
		pos = eligible[rand.Intn(len(eligible))]
	}

	shown := make(map[int]bool, len(revealed)+1)
	for i := range revealed {
		shown[i] = true
	}
	shown[pos] = true

	return pos, RenderHint(answer, shown), true
}

// RenderHint renders the answer with unrevealed letters masked.
// Revealed letters are uppercased; spaces and punctuation pass through
// unchanged.
func RenderHint(answer string, revealed map[int]bool) string {
	var b strings.Builder
	for i, r := range []rune(answer) {
		switch {
		case !unicode.IsLetter(r):
			b.WriteRune(r)
		case revealed[i]:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(hintPlaceholder)
		}
	}
	return b.String()
}
