// Package content acquires answer+facts items for new rounds. Sources
// are tried in a fixed order (generator, question store, placeholder)
// with a per-source timeout; acquisition never fails visibly because
// the placeholder tier always produces an item.
package content

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"guessquest/internal/models"
)

// Request carries everything a source needs to produce an item.
type Request struct {
	Category        string
	SubcategoryHint string
	Language        string
	Difficulty      models.Difficulty
	SessionID       string
	PlayerName      string
}

// Source is one tier of the acquisition chain.
type Source interface {
	// Name identifies the source in logs and item metadata.
	Name() string
	// Fetch produces an item or fails, letting the chain fall through.
	Fetch(ctx context.Context, req Request) (*models.ContentItem, error)
}

// QuestionStore is the persisted corpus of generated questions. Reads
// back unused items for offline play and accepts newly generated ones.
type QuestionStore interface {
	SaveQuestion(ctx context.Context, q models.Question) (int64, error)
	RandomUnused(ctx context.Context, category, difficulty, language string) (*models.Question, error)
	MarkUsed(ctx context.Context, id int64, playerName string) error
	Counts(ctx context.Context, category, difficulty, language string) (models.QuestionCounts, error)
	RecentAnswers(ctx context.Context, category string, since time.Time, limit int) ([]string, error)
	AnswerExists(ctx context.Context, answer, category, language string, since time.Time) (bool, error)
}

// Supplier runs the fallback chain and answers offline availability
// queries.
type Supplier struct {
	sources       []Source
	store         QuestionStore
	sourceTimeout time.Duration
}

// NewSupplier builds a supplier over an ordered source chain. The
// timeout bounds each individual source attempt.
func NewSupplier(store QuestionStore, sourceTimeout time.Duration, sources ...Source) *Supplier {
	return &Supplier{
		sources:       sources,
		store:         store,
		sourceTimeout: sourceTimeout,
	}
}

// Acquire returns a content item for the request. Source failures and
// timeouts are absorbed; if every configured source fails the built-in
// placeholder guarantees an item, so the round can always start.
func (s *Supplier) Acquire(ctx context.Context, req Request) models.ContentItem {
	for _, src := range s.sources {
		attempt, cancel := context.WithTimeout(ctx, s.sourceTimeout)
		item, err := src.Fetch(attempt, req)
		cancel()

		if err != nil {
			log.Warn().Err(err).
				Str("source", src.Name()).
				Str("category", req.Category).
				Msg("content source failed, falling through")
			continue
		}
		if item == nil || strings.TrimSpace(item.Answer) == "" || len(item.Facts) == 0 {
			log.Warn().
				Str("source", src.Name()).
				Msg("content source returned malformed item, falling through")
			continue
		}

		normalized := *item
		normalized.Answer = strings.TrimSpace(normalized.Answer)
		if normalized.Category == "" {
			normalized.Category = req.Category
		}
		if normalized.Subcategory == "" {
			normalized.Subcategory = req.SubcategoryHint
		}
		normalized.Source = src.Name()
		return normalized
	}

	// The chain should always include a placeholder tier; this is the
	// configuration-error backstop.
	log.Error().Str("category", req.Category).Msg("all content sources failed, using built-in placeholder")
	return placeholderItem(req)
}

// Availability reports question store counts for the offline-mode
// pre-check. Pure read; usage state is not mutated.
func (s *Supplier) Availability(ctx context.Context, category, difficulty, language string) (models.QuestionCounts, error) {
	if s.store == nil {
		return models.QuestionCounts{}, nil
	}
	return s.store.Counts(ctx, category, difficulty, language)
}
