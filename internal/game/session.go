package game

import (
	"errors"
	"sync"
	"time"

	"guessquest/internal/models"
)

var (
	// ErrSessionComplete is returned when a round is started on a
	// session that already played its configured round count.
	ErrSessionComplete = errors.New("session complete")
	// ErrRoundInProgress is returned when a round is started while the
	// current round is still active.
	ErrRoundInProgress = errors.New("round already in progress")
	// ErrNoActiveRound is returned by round operations when the session
	// has no current round.
	ErrNoActiveRound = errors.New("no active round")
)

// Session owns one player's sequence of rounds. It is the unit of
// concurrency control: every mutating operation holds the session
// mutex for its full duration, so at most one mutation is in flight
// per session. Content acquisition happens before the lock is taken.
type Session struct {
	mu sync.Mutex

	ID         string
	PlayerName string
	Language   string
	Difficulty models.Difficulty
	MaxRounds  int // 0 means unlimited

	RoundsCompleted int
	RoundsWon       int
	TotalScore      int
	Complete        bool

	Current *Round
	History []models.RoundRecord

	StartedAt    time.Time
	CompletedAt  time.Time
	lastActivity time.Time

	streak       int
	scorer       *ScoringEngine
	planner      *HintPlanner
	streakPolicy StreakPolicy
}

// NewSession creates a session for a player. A zero maxRounds means
// the session runs until the player ends it.
func NewSession(id, playerName, language string, difficulty models.Difficulty, maxRounds int, scorer *ScoringEngine, planner *HintPlanner, streak StreakPolicy) *Session {
	if streak == nil {
		streak = NoStreak{}
	}
	now := time.Now()
	return &Session{
		ID:           id,
		PlayerName:   playerName,
		Language:     language,
		Difficulty:   difficulty,
		MaxRounds:    maxRounds,
		StartedAt:    now,
		lastActivity: now,
		scorer:       scorer,
		planner:      planner,
		streakPolicy: streak,
	}
}

// BeginRound installs a new round over an already-acquired content
// item. The caller fetches the item outside the session lock so a slow
// content source can never hold the lock.
func (s *Session) BeginRound(item models.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.Complete {
		return ErrSessionComplete
	}
	if s.Current != nil && !s.Current.Status.Terminal() {
		return ErrRoundInProgress
	}
	s.Current = NewRound(item, s.Difficulty, s.scorer, s.planner)
	return nil
}

// RevealFact discloses the next fact of the current round.
func (s *Session) RevealFact() (FactReveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.Current == nil {
		return FactReveal{}, ErrNoActiveRound
	}
	return s.Current.RevealFact()
}

// RevealLetterHint reveals one letter of the current round's answer.
func (s *Session) RevealLetterHint() (HintReveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.Current == nil {
		return HintReveal{}, ErrNoActiveRound
	}
	return s.Current.RevealLetterHint()
}

// Progress is the session-level view returned together with a round
// outcome, captured under the same lock acquisition.
type Progress struct {
	TotalScore      int
	RoundsCompleted int
	SessionComplete bool
}

// SubmitGuess runs a guess against the current round and folds a
// finished round into the session totals.
func (s *Session) SubmitGuess(text string) (GuessOutcome, Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.Current == nil {
		return GuessOutcome{}, Progress{}, ErrNoActiveRound
	}
	out, err := s.Current.SubmitGuess(text)
	if err != nil {
		return GuessOutcome{}, Progress{}, err
	}
	if out.Finished {
		s.completeRound(&out)
	}
	return out, s.progress(), nil
}

// GiveUp ends the current round with zero score.
func (s *Session) GiveUp() (GuessOutcome, Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.Current == nil {
		return GuessOutcome{}, Progress{}, ErrNoActiveRound
	}
	out, err := s.Current.GiveUp()
	if err != nil {
		return GuessOutcome{}, Progress{}, err
	}
	s.completeRound(&out)
	return out, s.progress(), nil
}

// progress snapshots the running totals; lock held by caller.
func (s *Session) progress() Progress {
	return Progress{
		TotalScore:      s.TotalScore,
		RoundsCompleted: s.RoundsCompleted,
		SessionComplete: s.Complete,
	}
}

// completeRound is called with the lock held when the current round
// reached a terminal state. It applies the streak policy, accumulates
// totals and flips the session to Complete when the round budget is
// spent.
func (s *Session) completeRound(out *GuessOutcome) {
	r := s.Current

	if r.Status == RoundWon {
		s.streak++
		mult := s.streakPolicy.Multiplier(s.streak)
		if mult > 1.0 {
			r.Score = int(float64(r.Score) * mult)
			out.Score = r.Score
		}
		s.RoundsWon++
	} else {
		s.streak = 0
	}

	s.RoundsCompleted++
	s.TotalScore += r.Score
	s.History = append(s.History, r.Record())

	if s.MaxRounds > 0 && s.RoundsCompleted >= s.MaxRounds {
		s.Complete = true
		s.CompletedAt = time.Now()
	}
}

// Summary is a read-only snapshot of session progress.
type Summary struct {
	SessionID       string
	PlayerName      string
	TotalScore      int
	RoundsCompleted int
	RoundsWon       int
	MaxRounds       int
	Complete        bool
	Grade           string
	Achievements    []string
}

// Summarize reports the session's aggregated stats.
func (s *Session) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

// End finishes the session regardless of remaining rounds. An active
// round is abandoned as a give-up before the session completes.
func (s *Session) End() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if !s.Complete {
		if s.Current != nil && !s.Current.Status.Terminal() {
			if out, err := s.Current.GiveUp(); err == nil {
				s.completeRound(&out)
			}
		}
		if !s.Complete {
			s.Complete = true
			s.CompletedAt = time.Now()
		}
	}
	return s.summary()
}

// summary snapshots aggregated stats; lock held by caller.
func (s *Session) summary() Summary {
	return Summary{
		SessionID:       s.ID,
		PlayerName:      s.PlayerName,
		TotalScore:      s.TotalScore,
		RoundsCompleted: s.RoundsCompleted,
		RoundsWon:       s.RoundsWon,
		MaxRounds:       s.MaxRounds,
		Complete:        s.Complete,
		Grade:           Grade(s.TotalScore, s.RoundsCompleted, s.avgRoundTime()),
		Achievements:    Achievements(s.History),
	}
}

// avgRoundTime averages recorded round durations; lock held by caller.
func (s *Session) avgRoundTime() time.Duration {
	if len(s.History) == 0 {
		return 0
	}
	var total float64
	for _, r := range s.History {
		total += r.TimeTaken
	}
	return time.Duration(total / float64(len(s.History)) * float64(time.Second))
}

// Record converts the session into its persistence view.
func (s *Session) Record() models.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	ended := s.CompletedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	rounds := make([]models.RoundRecord, len(s.History))
	copy(rounds, s.History)

	return models.SessionRecord{
		SessionID:    s.ID,
		PlayerName:   s.PlayerName,
		Language:     s.Language,
		Difficulty:   s.Difficulty.Name,
		StartedAt:    s.StartedAt,
		EndedAt:      ended,
		TotalScore:   s.TotalScore,
		RoundsWon:    s.RoundsWon,
		RoundsLost:   s.RoundsCompleted - s.RoundsWon,
		Grade:        Grade(s.TotalScore, s.RoundsCompleted, s.avgRoundTime()),
		Achievements: Achievements(rounds),
		Rounds:       rounds,
	}
}

// IsComplete reports whether the round budget is spent.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Complete
}

// HasRounds reports whether any round finished; sessions with no
// completed rounds are not worth persisting.
func (s *Session) HasRounds() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.History) > 0
}

// LastActive reports when the session last served an operation. The
// registry uses it for idle eviction.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// touch records activity; lock held by caller.
func (s *Session) touch() {
	s.lastActivity = time.Now()
}
