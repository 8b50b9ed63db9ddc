package models

import "time"

// RoundRecord is the persistence view of a finished round.
type RoundRecord struct {
	Answer        string
	Category      string
	Subcategory   string
	FactsShown    int
	TotalFacts    int
	Correct       bool
	GuessAttempts int
	Similarity    float64
	MatchType     string
	HintsUsed     int
	TimeTaken     float64 // seconds
	Score         int
	Status        string
	Source        string
	QuestionID    int64
}

// SessionRecord is the persistence view of a finished session.
type SessionRecord struct {
	SessionID    string
	PlayerName   string
	Language     string
	Difficulty   string
	StartedAt    time.Time
	EndedAt      time.Time
	TotalScore   int
	RoundsWon    int
	RoundsLost   int
	Grade        string
	Achievements []string
	Rounds       []RoundRecord
}

// LeaderboardEntry is one row of the top-sessions leaderboard.
type LeaderboardEntry struct {
	PlayerName string
	TotalScore int
	RoundsWon  int
	Rounds     int
	Grade      string
	PlayedAt   time.Time
}

// GlobalStats aggregates results across all recorded sessions.
type GlobalStats struct {
	BestSessionScore int
	BestRoundScore   int
	FastestRound     float64 // seconds, 0 when no won round recorded
	TotalGames       int
	TotalWins        int
}

// PlayerStats aggregates one player's recorded sessions.
type PlayerStats struct {
	PlayerName  string
	TotalScore  int
	TotalWins   int
	TotalRounds int
	BestScore   int
	Sessions    []LeaderboardEntry
}
