package game

import (
	"errors"
	"strings"
	"time"

	"guessquest/internal/models"
)

// Round limits. MaxFacts caps progressive reveals even when the item
// carries more facts; MaxFailedAttempts triggers auto-reveal.
const (
	MaxFacts          = 5
	MaxFailedAttempts = 3
)

// RoundStatus is the round state machine. Active is the only
// non-terminal state.
type RoundStatus int

const (
	RoundActive RoundStatus = iota
	RoundWon
	RoundGaveUp
	RoundAutoRevealed
)

// String returns the storage name of the status.
func (s RoundStatus) String() string {
	switch s {
	case RoundWon:
		return "won"
	case RoundGaveUp:
		return "gave_up"
	case RoundAutoRevealed:
		return "auto_revealed"
	default:
		return "active"
	}
}

// Terminal reports whether the round accepts no further mutations.
func (s RoundStatus) Terminal() bool { return s != RoundActive }

var (
	// ErrRoundNotActive is returned when a mutating operation hits a
	// terminal round. Callers start a new round instead of retrying.
	ErrRoundNotActive = errors.New("round not active")
	// ErrEmptyGuess rejects blank guess text before it reaches the
	// matcher. It does not consume an attempt.
	ErrEmptyGuess = errors.New("guess must not be empty")
)

// Guess is one submitted guess with its similarity to the answer.
type Guess struct {
	Text       string
	Similarity float64
	At         time.Time
}

// Round is a single guessing episode. It owns the secret answer, the
// fact cursor, letter-hint state, guess history and timing. All
// mutation goes through its methods; once the status leaves Active the
// round is immutable.
type Round struct {
	Category    string
	Subcategory string
	Item        models.ContentItem

	FactsShown     int
	Guesses        []Guess
	FailedAttempts int
	Revealed       map[int]bool
	HintsUsed      int

	StartedAt time.Time
	Elapsed   time.Duration
	Status    RoundStatus
	Score     int
	Class     MatchClass
	Final     MatchResult

	scorer     *ScoringEngine
	planner    *HintPlanner
	difficulty models.Difficulty
}

// NewRound starts a round over the given content item.
func NewRound(item models.ContentItem, difficulty models.Difficulty, scorer *ScoringEngine, planner *HintPlanner) *Round {
	return &Round{
		Category:    item.Category,
		Subcategory: item.Subcategory,
		Item:        item,
		Revealed:    make(map[int]bool),
		StartedAt:   time.Now(),
		Status:      RoundActive,
		scorer:      scorer,
		planner:     planner,
		difficulty:  difficulty,
	}
}

// factCap is the number of facts this round may reveal.
func (r *Round) factCap() int {
	if len(r.Item.Facts) < MaxFacts {
		return len(r.Item.Facts)
	}
	return MaxFacts
}

// FactReveal is the result of a RevealFact call.
type FactReveal struct {
	Fact       string
	FactNumber int
	TotalFacts int
	NoMore     bool
}

// RevealFact discloses the next fact. Once the cap is reached it keeps
// returning NoMore without mutating the cursor; that is a normal
// response, not an error.
func (r *Round) RevealFact() (FactReveal, error) {
	if r.Status.Terminal() {
		return FactReveal{}, ErrRoundNotActive
	}
	limit := r.factCap()
	if r.FactsShown >= limit {
		return FactReveal{NoMore: true, FactNumber: r.FactsShown, TotalFacts: limit}, nil
	}
	fact := r.Item.Facts[r.FactsShown]
	r.FactsShown++
	return FactReveal{Fact: fact, FactNumber: r.FactsShown, TotalFacts: limit}, nil
}

// HintReveal is the result of a RevealLetterHint call.
type HintReveal struct {
	Display        string
	HintsUsed      int
	HintsRemaining int
	Exhausted      bool
}

// RevealLetterHint reveals one random letter position. When the hint
// budget is spent or no letters remain it reports Exhausted instead of
// an error.
func (r *Round) RevealLetterHint() (HintReveal, error) {
	if r.Status.Terminal() {
		return HintReveal{}, ErrRoundNotActive
	}
	pos, display, ok := r.planner.NextLetterHint(r.Item.Answer, r.Revealed)
	if !ok {
		return HintReveal{
			Display:   RenderHint(r.Item.Answer, r.Revealed),
			HintsUsed: r.HintsUsed,
			Exhausted: true,
		}, nil
	}
	r.Revealed[pos] = true
	r.HintsUsed = len(r.Revealed)
	return HintReveal{
		Display:        display,
		HintsUsed:      r.HintsUsed,
		HintsRemaining: MaxHints - r.HintsUsed,
	}, nil
}

// GuessOutcome is the result of a guess or give-up.
type GuessOutcome struct {
	Correct           bool
	Similarity        float64
	Class             MatchClass
	Score             int
	AttemptsRemaining int
	AutoRevealed      bool
	GaveUp            bool
	Answer            string // disclosed only when the round ended
	Finished          bool
}

// SubmitGuess validates and scores a guess. A correct guess wins the
// round; the third wrong guess force-ends it with the answer revealed
// and zero score.
func (r *Round) SubmitGuess(text string) (GuessOutcome, error) {
	if r.Status.Terminal() {
		return GuessOutcome{}, ErrRoundNotActive
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return GuessOutcome{}, ErrEmptyGuess
	}

	res := Match(trimmed, r.Item.Answer)
	r.Guesses = append(r.Guesses, Guess{Text: trimmed, Similarity: res.Similarity, At: time.Now()})

	if res.Correct {
		r.finish(RoundWon, res)
		return GuessOutcome{
			Correct:    true,
			Similarity: res.Similarity,
			Class:      res.Class,
			Score:      r.Score,
			Answer:     r.Item.Answer,
			Finished:   true,
		}, nil
	}

	r.FailedAttempts++
	if r.FailedAttempts >= MaxFailedAttempts {
		r.finish(RoundAutoRevealed, res)
		return GuessOutcome{
			Similarity:   res.Similarity,
			Class:        res.Class,
			AutoRevealed: true,
			Answer:       r.Item.Answer,
			Finished:     true,
		}, nil
	}

	return GuessOutcome{
		Similarity:        res.Similarity,
		Class:             res.Class,
		AttemptsRemaining: MaxFailedAttempts - r.FailedAttempts,
	}, nil
}

// GiveUp ends the round with the answer disclosed and zero score.
func (r *Round) GiveUp() (GuessOutcome, error) {
	if r.Status.Terminal() {
		return GuessOutcome{}, ErrRoundNotActive
	}
	r.finish(RoundGaveUp, MatchResult{Class: MatchDifferent})
	return GuessOutcome{
		GaveUp:   true,
		Answer:   r.Item.Answer,
		Finished: true,
	}, nil
}

// finish transitions to a terminal state and fixes the score. Only a
// won round earns points.
func (r *Round) finish(status RoundStatus, res MatchResult) {
	r.Status = status
	r.Elapsed = time.Since(r.StartedAt)
	r.Final = res
	r.Class = res.Class
	if status == RoundWon {
		wrong := len(r.Guesses) - 1
		if wrong < 0 {
			wrong = 0
		}
		r.Score = r.scorer.ScoreRound(r.FactsShown, wrong, r.HintsUsed, r.Elapsed, r.difficulty, res.Class)
	}
}

// Record converts a terminal round into its persistence view.
func (r *Round) Record() models.RoundRecord {
	return models.RoundRecord{
		Answer:        r.Item.Answer,
		Category:      r.Category,
		Subcategory:   r.Subcategory,
		FactsShown:    r.FactsShown,
		TotalFacts:    len(r.Item.Facts),
		Correct:       r.Status == RoundWon,
		GuessAttempts: r.FailedAttempts,
		Similarity:    r.Final.Similarity,
		MatchType:     r.Class.String(),
		HintsUsed:     r.HintsUsed,
		TimeTaken:     r.Elapsed.Seconds(),
		Score:         r.Score,
		Status:        r.Status.String(),
		Source:        r.Item.Source,
		QuestionID:    r.Item.QuestionID,
	}
}

// HintDisplay renders the current masked answer, empty when no letter
// has been revealed yet.
func (r *Round) HintDisplay() string {
	if len(r.Revealed) == 0 {
		return ""
	}
	return RenderHint(r.Item.Answer, r.Revealed)
}
