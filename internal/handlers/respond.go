package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"guessquest/internal/game"
	"guessquest/internal/registry"
	"guessquest/internal/service"
)

// respondJSON writes a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP status codes. Unknown
// errors become a 500 with a generic message so internals never leak.
func respondError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, registry.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrPlayerNameRequired),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, game.ErrEmptyGuess):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrSessionComplete),
		errors.Is(err, game.ErrRoundInProgress),
		errors.Is(err, game.ErrNoActiveRound),
		errors.Is(err, game.ErrRoundNotActive):
		status = http.StatusConflict
	default:
		log.Error().Err(err).Msg("request failed")
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeJSON parses a request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
