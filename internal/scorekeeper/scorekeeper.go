// Package scorekeeper persists finished sessions off the gameplay
// path. Writes are queued and retried against the primary store, then
// land in a local fallback store when the primary stays unreachable.
// Gameplay never blocks on, or fails from, persistence.
package scorekeeper

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"guessquest/internal/models"
)

const (
	defaultQueueSize = 64
	writeRetries     = 3
	writeTimeout     = 15 * time.Second
)

// Store is a session result store, primary or fallback.
type Store interface {
	SaveSession(ctx context.Context, rec models.SessionRecord) (int64, error)
	TopSessions(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	GlobalStats(ctx context.Context) (models.GlobalStats, error)
	PlayerStats(ctx context.Context, playerName string) (models.PlayerStats, error)
}

// Keeper runs the write queue and serves leaderboard reads.
type Keeper struct {
	primary       Store
	fallback      Store
	queue         chan models.SessionRecord
	done          chan struct{}
	retryInterval time.Duration
}

// New starts a keeper with one background writer. fallback may be nil.
func New(primary, fallback Store, queueSize int) *Keeper {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	k := &Keeper{
		primary:       primary,
		fallback:      fallback,
		queue:         make(chan models.SessionRecord, queueSize),
		done:          make(chan struct{}),
		retryInterval: backoff.DefaultInitialInterval,
	}
	go k.run()
	return k
}

// Submit queues a finished session for persistence. Never blocks; when
// the queue is full the record is dropped with an error log.
func (k *Keeper) Submit(rec models.SessionRecord) {
	select {
	case k.queue <- rec:
	default:
		log.Error().
			Str("session_id", rec.SessionID).
			Str("player", rec.PlayerName).
			Msg("scorekeeper queue full, dropping session record")
	}
}

// Close stops accepting records and drains the queue, bounded by ctx.
func (k *Keeper) Close(ctx context.Context) error {
	close(k.queue)
	select {
	case <-k.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *Keeper) run() {
	defer close(k.done)
	for rec := range k.queue {
		k.persist(rec)
	}
}

func (k *Keeper) persist(rec models.SessionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	save := func() error {
		_, err := k.primary.SaveSession(ctx, rec)
		return err
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = k.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, writeRetries), ctx)

	if err := backoff.Retry(save, policy); err == nil {
		return
	} else if k.fallback == nil {
		log.Error().Err(err).Str("session_id", rec.SessionID).Msg("failed to persist session, no fallback store")
		return
	} else {
		log.Warn().Err(err).Str("session_id", rec.SessionID).Msg("primary store unreachable, writing session to fallback")
	}

	if _, err := k.fallback.SaveSession(ctx, rec); err != nil {
		log.Error().Err(err).Str("session_id", rec.SessionID).Msg("failed to persist session to fallback store")
	}
}

// TopSessions reads the leaderboard, falling back to the local store
// when the primary is unreachable.
func (k *Keeper) TopSessions(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	entries, err := k.primary.TopSessions(ctx, limit)
	if err == nil || k.fallback == nil {
		return entries, err
	}
	log.Warn().Err(err).Msg("primary store unreachable, reading leaderboard from fallback")
	return k.fallback.TopSessions(ctx, limit)
}

// GlobalStats reads aggregate stats with the same fallback behavior.
func (k *Keeper) GlobalStats(ctx context.Context) (models.GlobalStats, error) {
	stats, err := k.primary.GlobalStats(ctx)
	if err == nil || k.fallback == nil {
		return stats, err
	}
	log.Warn().Err(err).Msg("primary store unreachable, reading global stats from fallback")
	return k.fallback.GlobalStats(ctx)
}

// PlayerStats reads one player's stats with the same fallback behavior.
func (k *Keeper) PlayerStats(ctx context.Context, playerName string) (models.PlayerStats, error) {
	stats, err := k.primary.PlayerStats(ctx, playerName)
	if err == nil || k.fallback == nil {
		return stats, err
	}
	log.Warn().Err(err).Msg("primary store unreachable, reading player stats from fallback")
	return k.fallback.PlayerStats(ctx, playerName)
}
