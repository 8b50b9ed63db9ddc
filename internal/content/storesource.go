package content

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"guessquest/internal/models"
)

// ErrNoStoredQuestions means the question store has no unused item for
// the requested category, difficulty and language.
var ErrNoStoredQuestions = errors.New("no unused stored questions")

// StoreSource serves previously generated questions from the question
// store. It is the offline tier of the chain.
type StoreSource struct {
	store QuestionStore
}

func NewStoreSource(store QuestionStore) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Name() string { return "question_store" }

func (s *StoreSource) Fetch(ctx context.Context, req Request) (*models.ContentItem, error) {
	if s.store == nil {
		return nil, ErrNoStoredQuestions
	}

	q, err := s.store.RandomUnused(ctx, req.Category, req.Difficulty.Name, req.Language)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrNoStoredQuestions
	}

	// A failed usage mark must not cost the player the question; the
	// worst case is the same question reappearing later.
	if err := s.store.MarkUsed(ctx, q.ID, req.PlayerName); err != nil {
		log.Warn().Err(err).Int64("question_id", q.ID).Msg("failed to mark stored question as used")
	}

	return &models.ContentItem{
		Answer:      q.Answer,
		Facts:       q.Facts,
		Category:    q.Category,
		Subcategory: q.Subcategory,
		QuestionID:  q.ID,
		Source:      s.Name(),
	}, nil
}
