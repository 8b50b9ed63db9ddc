// Package handlers exposes the gameplay API over HTTP. All endpoints
// speak JSON; errors carry an "error" field and a mapped status code.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"guessquest/internal/game"
	"guessquest/internal/security"
	"guessquest/internal/service"
)

// GameHandler serves the gameplay endpoints
type GameHandler struct {
	svc     *service.GameService
	limiter *security.RateLimiter
}

// NewGameHandler creates a new game handler
func NewGameHandler(svc *service.GameService) *GameHandler {
	return &GameHandler{
		svc: svc,
		// Session creation is the expensive path; one bucket per client
		// keeps bots from churning out sessions.
		limiter: security.NewRateLimiter(30, time.Minute),
	}
}

// Router builds the HTTP routing table.
func (h *GameHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(requestLogger)

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.listCategories)
		r.Get("/difficulties", h.listDifficulties)
		r.Get("/availability", h.availability)
		r.Get("/leaderboard", h.leaderboard)
		r.Get("/stats", h.globalStats)
		r.Get("/players/{name}/stats", h.playerStats)

		r.Route("/sessions", func(r chi.Router) {
			r.With(rateLimit(h.limiter)).Post("/", h.createSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/summary", h.summary)
				r.Post("/end", h.endSession)
				r.Post("/rounds", h.startRound)
				r.Post("/facts", h.revealFact)
				r.Post("/hints", h.revealHint)
				r.Post("/guesses", h.submitGuess)
				r.Post("/giveup", h.giveUp)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	return r
}

func (h *GameHandler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type createSessionRequest struct {
	PlayerName string `json:"player_name"`
	Language   string `json:"language"`
	Difficulty string `json:"difficulty"`
	MaxRounds  int    `json:"max_rounds"`
}

type createSessionResponse struct {
	SessionID  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	Language   string `json:"language"`
	Difficulty string `json:"difficulty"`
	MaxRounds  int    `json:"max_rounds"`
}

func (h *GameHandler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.svc.CreateSession(service.CreateSessionParams{
		PlayerName: req.PlayerName,
		Language:   req.Language,
		Difficulty: req.Difficulty,
		MaxRounds:  req.MaxRounds,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, createSessionResponse{
		SessionID:  session.ID,
		PlayerName: session.PlayerName,
		Language:   session.Language,
		Difficulty: session.Difficulty.Name,
		MaxRounds:  session.MaxRounds,
	})
}

type startRoundRequest struct {
	Category string `json:"category"`
}

type factPayload struct {
	Fact       string `json:"fact,omitempty"`
	FactNumber int    `json:"fact_number"`
	TotalFacts int    `json:"total_facts"`
	NoMore     bool   `json:"no_more"`
}

type startRoundResponse struct {
	RoundNumber    int         `json:"round_number"`
	Category       string      `json:"category"`
	Subcategory    string      `json:"subcategory,omitempty"`
	Source         string      `json:"source"`
	Placeholder    bool        `json:"placeholder,omitempty"`
	FactsAvailable int         `json:"facts_available"`
	HintsAvailable int         `json:"hints_available"`
	FirstFact      factPayload `json:"first_fact"`
}

func (h *GameHandler) startRound(w http.ResponseWriter, r *http.Request) {
	var req startRoundRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	start, err := h.svc.StartRound(r.Context(), chi.URLParam(r, "sessionID"), req.Category)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, startRoundResponse{
		RoundNumber:    start.RoundNumber,
		Category:       start.Category,
		Subcategory:    start.Subcategory,
		Source:         start.Source,
		Placeholder:    start.Placeholder,
		FactsAvailable: start.FactsAvailable,
		HintsAvailable: start.HintsAvailable,
		FirstFact: factPayload{
			Fact:       start.FirstFact.Fact,
			FactNumber: start.FirstFact.FactNumber,
			TotalFacts: start.FirstFact.TotalFacts,
		},
	})
}

func (h *GameHandler) revealFact(w http.ResponseWriter, r *http.Request) {
	fact, err := h.svc.RevealFact(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, factPayload{
		Fact:       fact.Fact,
		FactNumber: fact.FactNumber,
		TotalFacts: fact.TotalFacts,
		NoMore:     fact.NoMore,
	})
}

type hintResponse struct {
	Display        string `json:"display"`
	HintsUsed      int    `json:"hints_used"`
	HintsRemaining int    `json:"hints_remaining"`
	Exhausted      bool   `json:"exhausted"`
}

func (h *GameHandler) revealHint(w http.ResponseWriter, r *http.Request) {
	hint, err := h.svc.RevealLetterHint(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, hintResponse{
		Display:        hint.Display,
		HintsUsed:      hint.HintsUsed,
		HintsRemaining: hint.HintsRemaining,
		Exhausted:      hint.Exhausted,
	})
}

type guessRequest struct {
	Guess string `json:"guess"`
}

type outcomeResponse struct {
	Correct           bool    `json:"correct"`
	Similarity        float64 `json:"similarity"`
	MatchType         string  `json:"match_type"`
	Score             int     `json:"score"`
	AttemptsRemaining int     `json:"attempts_remaining"`
	AutoRevealed      bool    `json:"auto_revealed,omitempty"`
	GaveUp            bool    `json:"gave_up,omitempty"`
	Answer            string  `json:"answer,omitempty"`
	RoundFinished     bool    `json:"round_finished"`
	TotalScore        int     `json:"total_score"`
	RoundsCompleted   int     `json:"rounds_completed"`
	SessionComplete   bool    `json:"session_complete"`
}

func (h *GameHandler) submitGuess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	out, progress, err := h.svc.SubmitGuess(chi.URLParam(r, "sessionID"), req.Guess)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, outcomeResponse{
		Correct:           out.Correct,
		Similarity:        out.Similarity,
		MatchType:         out.Class.String(),
		Score:             out.Score,
		AttemptsRemaining: out.AttemptsRemaining,
		AutoRevealed:      out.AutoRevealed,
		Answer:            out.Answer,
		RoundFinished:     out.Finished,
		TotalScore:        progress.TotalScore,
		RoundsCompleted:   progress.RoundsCompleted,
		SessionComplete:   progress.SessionComplete,
	})
}

func (h *GameHandler) giveUp(w http.ResponseWriter, r *http.Request) {
	out, progress, err := h.svc.GiveUp(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, outcomeResponse{
		MatchType:       out.Class.String(),
		GaveUp:          out.GaveUp,
		Answer:          out.Answer,
		RoundFinished:   out.Finished,
		TotalScore:      progress.TotalScore,
		RoundsCompleted: progress.RoundsCompleted,
		SessionComplete: progress.SessionComplete,
	})
}

type summaryResponse struct {
	SessionID       string   `json:"session_id"`
	PlayerName      string   `json:"player_name"`
	TotalScore      int      `json:"total_score"`
	RoundsCompleted int      `json:"rounds_completed"`
	RoundsWon       int      `json:"rounds_won"`
	MaxRounds       int      `json:"max_rounds"`
	Complete        bool     `json:"complete"`
	Grade           string   `json:"grade"`
	Achievements    []string `json:"achievements"`
}

func summaryFromGame(s game.Summary) summaryResponse {
	achievements := s.Achievements
	if achievements == nil {
		achievements = []string{}
	}
	return summaryResponse{
		SessionID:       s.SessionID,
		PlayerName:      s.PlayerName,
		TotalScore:      s.TotalScore,
		RoundsCompleted: s.RoundsCompleted,
		RoundsWon:       s.RoundsWon,
		MaxRounds:       s.MaxRounds,
		Complete:        s.Complete,
		Grade:           s.Grade,
		Achievements:    achievements,
	}
}

func (h *GameHandler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSummary(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaryFromGame(s))
}

func (h *GameHandler) endSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.EndSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summaryFromGame(s))
}

func (h *GameHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Categories())
}

func (h *GameHandler) listDifficulties(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Difficulties())
}

type availabilityResponse struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language"`
	Total      int    `json:"total"`
	Unused     int    `json:"unused"`
	Playable   bool   `json:"playable"`
}

func (h *GameHandler) availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	difficulty := q.Get("difficulty")
	language := q.Get("language")

	counts, err := h.svc.Availability(r.Context(), category, difficulty, language)
	if err != nil {
		respondError(w, err)
		return
	}

	if language == "" {
		language = "en"
	}
	respondJSON(w, http.StatusOK, availabilityResponse{
		Category:   category,
		Difficulty: difficulty,
		Language:   language,
		Total:      counts.Total,
		Unused:     counts.Unused,
		Playable:   counts.HasUnused(),
	})
}

type leaderboardEntry struct {
	PlayerName string    `json:"player_name"`
	TotalScore int       `json:"total_score"`
	RoundsWon  int       `json:"rounds_won"`
	Rounds     int       `json:"rounds"`
	Grade      string    `json:"grade"`
	PlayedAt   time.Time `json:"played_at"`
}

func (h *GameHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.svc.Leaderboard(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}

	out := make([]leaderboardEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboardEntry{
			PlayerName: e.PlayerName,
			TotalScore: e.TotalScore,
			RoundsWon:  e.RoundsWon,
			Rounds:     e.Rounds,
			Grade:      e.Grade,
			PlayedAt:   e.PlayedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type globalStatsResponse struct {
	BestSessionScore int     `json:"best_session_score"`
	BestRoundScore   int     `json:"best_round_score"`
	FastestRound     float64 `json:"fastest_round_seconds"`
	TotalGames       int     `json:"total_games"`
	TotalWins        int     `json:"total_wins"`
}

func (h *GameHandler) globalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GlobalStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, globalStatsResponse{
		BestSessionScore: stats.BestSessionScore,
		BestRoundScore:   stats.BestRoundScore,
		FastestRound:     stats.FastestRound,
		TotalGames:       stats.TotalGames,
		TotalWins:        stats.TotalWins,
	})
}

type playerStatsResponse struct {
	PlayerName  string             `json:"player_name"`
	TotalScore  int                `json:"total_score"`
	TotalWins   int                `json:"total_wins"`
	TotalRounds int                `json:"total_rounds"`
	BestScore   int                `json:"best_score"`
	Sessions    []leaderboardEntry `json:"sessions"`
}

func (h *GameHandler) playerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.PlayerStats(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, err)
		return
	}

	sessions := make([]leaderboardEntry, 0, len(stats.Sessions))
	for _, e := range stats.Sessions {
		sessions = append(sessions, leaderboardEntry{
			PlayerName: e.PlayerName,
			TotalScore: e.TotalScore,
			RoundsWon:  e.RoundsWon,
			Rounds:     e.Rounds,
			Grade:      e.Grade,
			PlayedAt:   e.PlayedAt,
		})
	}
	respondJSON(w, http.StatusOK, playerStatsResponse{
		PlayerName:  stats.PlayerName,
		TotalScore:  stats.TotalScore,
		TotalWins:   stats.TotalWins,
		TotalRounds: stats.TotalRounds,
		BestScore:   stats.BestScore,
		Sessions:    sessions,
	})
}
