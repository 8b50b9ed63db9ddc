package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"guessquest/internal/database"
	"guessquest/internal/models"
)

// ScoreRepository handles recorded session and round database operations
type ScoreRepository struct {
	db *database.DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *database.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// SaveSession stores a finished session together with all its rounds
// in one transaction
func (r *ScoreRepository) SaveSession(ctx context.Context, rec models.SessionRecord) (int64, error) {
	achievements, err := json.Marshal(rec.Achievements)
	if err != nil {
		return 0, fmt.Errorf("encode achievements: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	sessionQuery := `
		INSERT INTO game_sessions
			(session_id, player_name, language, difficulty, rounds_played,
			 rounds_won, total_score, grade, achievements, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id, err := tx.ExecReturningID(ctx, sessionQuery,
		rec.SessionID, rec.PlayerName, rec.Language, rec.Difficulty,
		rec.RoundsWon+rec.RoundsLost, rec.RoundsWon, rec.TotalScore,
		rec.Grade, string(achievements), rec.StartedAt, rec.EndedAt)
	if err != nil {
		return 0, err
	}

	roundQuery := `
		INSERT INTO game_rounds
			(game_session_id, round_number, answer, category, source, facts_shown,
			 wrong_guesses, hints_used, match_class, status, score, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, round := range rec.Rounds {
		_, err := tx.Exec(ctx, roundQuery,
			id, i+1, round.Answer, round.Category, round.Source, round.FactsShown,
			round.GuessAttempts, round.HintsUsed, round.MatchType, round.Status,
			round.Score, int(round.TimeTaken*1000))
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// TopSessions returns the highest scoring sessions, best first
func (r *ScoreRepository) TopSessions(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT player_name, total_score, rounds_won, rounds_played, grade, started_at
		FROM game_sessions
		ORDER BY total_score DESC, started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.TotalScore, &e.RoundsWon, &e.Rounds, &e.Grade, &e.PlayedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GlobalStats aggregates records across every stored session
func (r *ScoreRepository) GlobalStats(ctx context.Context) (models.GlobalStats, error) {
	var stats models.GlobalStats

	sessionQuery := `
		SELECT COALESCE(MAX(total_score), 0), COUNT(*), COALESCE(SUM(rounds_won), 0)
		FROM game_sessions
	`
	if err := r.db.QueryRow(ctx, sessionQuery).Scan(&stats.BestSessionScore, &stats.TotalGames, &stats.TotalWins); err != nil {
		return models.GlobalStats{}, err
	}

	roundQuery := `
		SELECT COALESCE(MAX(score), 0), COALESCE(MIN(duration_ms), 0)
		FROM game_rounds
		WHERE status = 'won'
	`
	var fastestMs int
	if err := r.db.QueryRow(ctx, roundQuery).Scan(&stats.BestRoundScore, &fastestMs); err != nil {
		return models.GlobalStats{}, err
	}
	stats.FastestRound = float64(fastestMs) / 1000

	return stats, nil
}

// PlayerStats aggregates one player's stored sessions and lists their
// most recent results
func (r *ScoreRepository) PlayerStats(ctx context.Context, playerName string) (models.PlayerStats, error) {
	stats := models.PlayerStats{PlayerName: playerName}

	totalsQuery := `
		SELECT COALESCE(SUM(total_score), 0), COALESCE(SUM(rounds_won), 0),
		       COALESCE(SUM(rounds_played), 0), COALESCE(MAX(total_score), 0)
		FROM game_sessions
		WHERE player_name = ?
	`
	err := r.db.QueryRow(ctx, totalsQuery, playerName).Scan(
		&stats.TotalScore, &stats.TotalWins, &stats.TotalRounds, &stats.BestScore)
	if err != nil {
		return models.PlayerStats{}, err
	}

	recentQuery := `
		SELECT player_name, total_score, rounds_won, rounds_played, grade, started_at
		FROM game_sessions
		WHERE player_name = ?
		ORDER BY started_at DESC
		LIMIT 10
	`
	rows, err := r.db.Query(ctx, recentQuery, playerName)
	if err != nil {
		return models.PlayerStats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.TotalScore, &e.RoundsWon, &e.Rounds, &e.Grade, &e.PlayedAt); err != nil {
			return models.PlayerStats{}, err
		}
		stats.Sessions = append(stats.Sessions, e)
	}
	return stats, rows.Err()
}
