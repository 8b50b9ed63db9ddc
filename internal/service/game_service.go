// Package service ties the game engine, content acquisition, session
// registry and score persistence together behind one API surface.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guessquest/internal/catalog"
	"guessquest/internal/content"
	"guessquest/internal/game"
	"guessquest/internal/models"
)

var (
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrUnknownCategory    = errors.New("unknown category")
)

// ScoreSink receives finished sessions and serves leaderboard reads.
type ScoreSink interface {
	Submit(rec models.SessionRecord)
	TopSessions(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	GlobalStats(ctx context.Context) (models.GlobalStats, error)
	PlayerStats(ctx context.Context, playerName string) (models.PlayerStats, error)
}

// SessionStore is the registry view the service needs.
type SessionStore interface {
	Put(s *game.Session)
	Get(id string) (*game.Session, error)
	Remove(id string)
}

// GameService handles gameplay business logic
type GameService struct {
	sessions SessionStore
	supplier *content.Supplier
	catalog  *catalog.Catalog
	scores   ScoreSink
	scorer   *game.ScoringEngine
	planner  *game.HintPlanner
	streak   game.StreakPolicy
}

// NewGameService creates a new game service. scores may be nil when no
// persistence is configured.
func NewGameService(sessions SessionStore, supplier *content.Supplier, cat *catalog.Catalog, scores ScoreSink, scorer *game.ScoringEngine, planner *game.HintPlanner) *GameService {
	return &GameService{
		sessions: sessions,
		supplier: supplier,
		catalog:  cat,
		scores:   scores,
		scorer:   scorer,
		planner:  planner,
		streak:   scorer.DefaultStreakPolicy(),
	}
}

// CreateSessionParams carries the options for a new session.
type CreateSessionParams struct {
	PlayerName string
	Language   string
	Difficulty string
	MaxRounds  int
}

// CreateSession registers a new session and returns it.
func (s *GameService) CreateSession(params CreateSessionParams) (*game.Session, error) {
	name := strings.TrimSpace(params.PlayerName)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}

	language := params.Language
	if language == "" {
		language = "en"
	}
	maxRounds := params.MaxRounds
	if maxRounds < 0 {
		maxRounds = 0
	}
	difficulty := s.catalog.Difficulty(params.Difficulty)

	session := game.NewSession(uuid.NewString(), name, language, difficulty, maxRounds, s.scorer, s.planner, s.streak)
	s.sessions.Put(session)

	log.Info().
		Str("session_id", session.ID).
		Str("player", name).
		Str("difficulty", difficulty.Name).
		Int("max_rounds", maxRounds).
		Msg("session created")
	return session, nil
}

// RoundStart describes a freshly started round: its category and the
// automatically revealed first fact.
type RoundStart struct {
	RoundNumber    int
	Category       string
	Subcategory    string
	Source         string
	Placeholder    bool
	FactsAvailable int
	HintsAvailable int
	FirstFact      game.FactReveal
}

// StartRound acquires content and begins the next round. An empty
// category picks one at random. The content fetch runs before the
// session is mutated, so a slow source never blocks other operations
// on the same session.
func (s *GameService) StartRound(ctx context.Context, sessionID, category string) (RoundStart, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return RoundStart{}, err
	}

	var cat models.Category
	if category == "" {
		cat = s.catalog.RandomCategory()
	} else {
		var ok bool
		if cat, ok = s.catalog.Find(category); !ok {
			return RoundStart{}, ErrUnknownCategory
		}
	}

	item := s.supplier.Acquire(ctx, content.Request{
		Category:        cat.Name,
		SubcategoryHint: s.catalog.HintFor(cat.Name),
		Language:        session.Language,
		Difficulty:      session.Difficulty,
		SessionID:       session.ID,
		PlayerName:      session.PlayerName,
	})

	if err := session.BeginRound(item); err != nil {
		return RoundStart{}, err
	}

	// The first fact is always on the table before the first guess.
	fact, err := session.RevealFact()
	if err != nil {
		return RoundStart{}, err
	}

	facts := len(item.Facts)
	if facts > game.MaxFacts {
		facts = game.MaxFacts
	}

	summary := session.Summarize()
	return RoundStart{
		RoundNumber:    summary.RoundsCompleted + 1,
		Category:       item.Category,
		Subcategory:    item.Subcategory,
		Source:         item.Source,
		Placeholder:    item.Placeholder,
		FactsAvailable: facts,
		HintsAvailable: game.MaxHints,
		FirstFact:      fact,
	}, nil
}

// RevealFact discloses the next fact of the session's current round.
func (s *GameService) RevealFact(sessionID string) (game.FactReveal, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return game.FactReveal{}, err
	}
	return session.RevealFact()
}

// RevealLetterHint reveals one letter of the current answer.
func (s *GameService) RevealLetterHint(sessionID string) (game.HintReveal, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return game.HintReveal{}, err
	}
	return session.RevealLetterHint()
}

// SubmitGuess evaluates a guess. When the guess finishes the session's
// final round, the session record is handed to the score sink.
func (s *GameService) SubmitGuess(sessionID, guess string) (game.GuessOutcome, game.Progress, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return game.GuessOutcome{}, game.Progress{}, err
	}

	out, progress, err := session.SubmitGuess(guess)
	if err != nil {
		return game.GuessOutcome{}, game.Progress{}, err
	}
	if progress.SessionComplete {
		s.recordSession(session)
	}
	return out, progress, nil
}

// GiveUp forfeits the current round, revealing the answer.
func (s *GameService) GiveUp(sessionID string) (game.GuessOutcome, game.Progress, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return game.GuessOutcome{}, game.Progress{}, err
	}

	out, progress, err := session.GiveUp()
	if err != nil {
		return game.GuessOutcome{}, game.Progress{}, err
	}
	if progress.SessionComplete {
		s.recordSession(session)
	}
	return out, progress, nil
}

// EndSession finishes a session early and persists whatever rounds
// were played.
func (s *GameService) EndSession(sessionID string) (game.Summary, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return game.Summary{}, err
	}

	alreadyComplete := session.IsComplete()
	summary := session.End()
	if !alreadyComplete {
		s.recordSession(session)
	}
	return summary, nil
}

// GetSummary reports the session's running totals.
func (s *GameService) GetSummary(sessionID string) (game.Summary, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return game.Summary{}, err
	}
	return session.Summarize(), nil
}

// recordSession hands the finished session to the score sink. Sessions
// with no finished rounds are not worth a row.
func (s *GameService) recordSession(session *game.Session) {
	if s.scores == nil || !session.HasRounds() {
		return
	}
	s.scores.Submit(session.Record())
}

// Leaderboard returns the highest scoring recorded sessions.
func (s *GameService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if s.scores == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.scores.TopSessions(ctx, limit)
}

// GlobalStats returns aggregate stats across all recorded sessions.
func (s *GameService) GlobalStats(ctx context.Context) (models.GlobalStats, error) {
	if s.scores == nil {
		return models.GlobalStats{}, nil
	}
	return s.scores.GlobalStats(ctx)
}

// PlayerStats returns one player's recorded results.
func (s *GameService) PlayerStats(ctx context.Context, playerName string) (models.PlayerStats, error) {
	if s.scores == nil {
		return models.PlayerStats{PlayerName: playerName}, nil
	}
	return s.scores.PlayerStats(ctx, playerName)
}

// Availability reports stored question counts for offline play.
func (s *GameService) Availability(ctx context.Context, category, difficulty, language string) (models.QuestionCounts, error) {
	if language == "" {
		language = "en"
	}
	difficulty = s.catalog.Difficulty(difficulty).Name
	cat, ok := s.catalog.Find(category)
	if !ok {
		return models.QuestionCounts{}, ErrUnknownCategory
	}
	return s.supplier.Availability(ctx, cat.Name, difficulty, language)
}

// Categories lists the playable categories.
func (s *GameService) Categories() []models.Category {
	return s.catalog.Categories()
}

// Difficulties lists the difficulty levels.
func (s *GameService) Difficulties() []models.Difficulty {
	return s.catalog.Difficulties()
}
