package game

import (
	"time"

	"guessquest/internal/models"
)

// ScoringConfig holds the tunable constants of the scoring formula.
// The formula itself is fixed; these values are configuration.
type ScoringConfig struct {
	BasePoints         int
	FactPenalty        int
	GuessPenalty       int
	ExactBonus         int
	TimeBonus          int
	TimeBonusThreshold time.Duration
	Floor              int
	// HintPenalties maps difficulty name to the per-hint deduction.
	// Unknown difficulties fall back to "normal".
	HintPenalties map[string]int
	// StreakFactor compounds per consecutive win; StreakCap bounds it.
	StreakFactor float64
	StreakCap    float64
}

// DefaultScoringConfig returns the stock tuning.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BasePoints:         1000,
		FactPenalty:        150,
		GuessPenalty:       50,
		ExactBonus:         100,
		TimeBonus:          200,
		TimeBonusThreshold: 30 * time.Second,
		Floor:              50,
		HintPenalties: map[string]int{
			"very_easy": 25,
			"easy":      50,
			"normal":    75,
			"hard":      100,
			"expert":    125,
		},
		StreakFactor: 1.1,
		StreakCap:    3.0,
	}
}

// StreakPolicy maps a count of consecutive won rounds to a score
// multiplier. Implementations must be monotonic non-decreasing in the
// win count; the session resets the count on any non-win.
type StreakPolicy interface {
	Multiplier(consecutiveWins int) float64
}

// compoundStreak multiplies by factor^(wins-1), capped.
type compoundStreak struct {
	factor float64
	cap    float64
}

func (s compoundStreak) Multiplier(consecutiveWins int) float64 {
	if consecutiveWins <= 1 {
		return 1.0
	}
	m := 1.0
	for i := 1; i < consecutiveWins; i++ {
		m *= s.factor
		if m >= s.cap {
			return s.cap
		}
	}
	return m
}

// NoStreak disables the streak bonus.
type NoStreak struct{}

// Multiplier always returns 1.
func (NoStreak) Multiplier(int) float64 { return 1.0 }

// ScoringEngine computes round scores and session grades.
type ScoringEngine struct {
	cfg ScoringConfig
}

// NewScoringEngine creates an engine with the given tuning.
func NewScoringEngine(cfg ScoringConfig) *ScoringEngine {
	return &ScoringEngine{cfg: cfg}
}

// DefaultStreakPolicy returns the compounding policy configured by cfg.
func (e *ScoringEngine) DefaultStreakPolicy() StreakPolicy {
	return compoundStreak{factor: e.cfg.StreakFactor, cap: e.cfg.StreakCap}
}

// HintPenalty returns the per-hint deduction for a difficulty.
func (e *ScoringEngine) HintPenalty(difficulty string) int {
	if p, ok := e.cfg.HintPenalties[difficulty]; ok {
		return p
	}
	return e.cfg.HintPenalties["normal"]
}

// ScoreRound computes the point value of a won round. Lost rounds are
// scored 0 by the round itself and never reach this function.
//
//	score = base - facts*factPenalty - wrong*guessPenalty - hints*hintPenalty
//	      + timeBonus (if fast) + exactBonus (if exact)
//	score = max(score, floor) * difficulty multiplier
func (e *ScoringEngine) ScoreRound(factsShown, wrongGuesses, hintsUsed int, elapsed time.Duration, difficulty models.Difficulty, class MatchClass) int {
	score := e.cfg.BasePoints
	score -= factsShown * e.cfg.FactPenalty
	score -= wrongGuesses * e.cfg.GuessPenalty
	score -= hintsUsed * e.HintPenalty(difficulty.Name)

	if elapsed <= e.cfg.TimeBonusThreshold {
		score += e.cfg.TimeBonus
	}
	if class == MatchExact {
		score += e.cfg.ExactBonus
	}

	if score < e.cfg.Floor {
		score = e.cfg.Floor
	}

	mult := difficulty.ScoreMultiplier
	if mult <= 0 {
		mult = 1.0
	}
	return int(float64(score) * mult)
}

// Grade maps a session's aggregated stats to a letter grade. The
// average score per round is adjusted by a pace factor before being
// bucketed; fast sessions grade up, slow ones grade down.
func Grade(totalScore, roundsPlayed int, avgRoundTime time.Duration) string {
	if roundsPlayed == 0 {
		return "F"
	}
	avg := float64(totalScore) / float64(roundsPlayed)

	secs := avgRoundTime.Seconds()
	var pace float64
	switch {
	case secs <= 20:
		pace = 1.2
	case secs <= 30:
		pace = 1.1
	case secs <= 45:
		pace = 1.0
	case secs <= 60:
		pace = 0.9
	default:
		pace = 0.8
	}
	avg *= pace

	switch {
	case avg >= 800:
		return "A+"
	case avg >= 700:
		return "A"
	case avg >= 600:
		return "B+"
	case avg >= 500:
		return "B"
	case avg >= 400:
		return "C+"
	case avg >= 300:
		return "C"
	case avg >= 200:
		return "D"
	default:
		return "F"
	}
}
