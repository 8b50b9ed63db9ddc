package scorekeeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"guessquest/internal/models"
)

type memStore struct {
	mu       sync.Mutex
	saved    []models.SessionRecord
	saveErr  error
	failures int // fail the first N saves
	readErr  error
}

func (m *memStore) SaveSession(_ context.Context, rec models.SessionRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return 0, errors.New("transient failure")
	}
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.saved = append(m.saved, rec)
	return int64(len(m.saved)), nil
}

func (m *memStore) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *memStore) TopSessions(_ context.Context, _ int) ([]models.LeaderboardEntry, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return []models.LeaderboardEntry{{PlayerName: "alice"}}, nil
}

func (m *memStore) GlobalStats(_ context.Context) (models.GlobalStats, error) {
	if m.readErr != nil {
		return models.GlobalStats{}, m.readErr
	}
	return models.GlobalStats{TotalGames: 1}, nil
}

func (m *memStore) PlayerStats(_ context.Context, name string) (models.PlayerStats, error) {
	if m.readErr != nil {
		return models.PlayerStats{}, m.readErr
	}
	return models.PlayerStats{PlayerName: name}, nil
}

func testRecord(id string) models.SessionRecord {
	return models.SessionRecord{SessionID: id, PlayerName: "alice", TotalScore: 850}
}

func closeKeeper(t *testing.T, k *Keeper) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := k.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSubmitPersistsToPrimary(t *testing.T) {
	primary := &memStore{}
	k := New(primary, nil, 4)

	k.Submit(testRecord("s1"))
	k.Submit(testRecord("s2"))
	closeKeeper(t, k)

	if primary.savedCount() != 2 {
		t.Fatalf("primary saved %d records, want 2", primary.savedCount())
	}
}

func TestSubmitRetriesTransientFailures(t *testing.T) {
	primary := &memStore{failures: 2}
	k := New(primary, nil, 4)
	k.retryInterval = time.Millisecond

	k.Submit(testRecord("s1"))
	closeKeeper(t, k)

	if primary.savedCount() != 1 {
		t.Fatalf("primary saved %d records, want 1 after retries", primary.savedCount())
	}
}

func TestSubmitFallsBackWhenPrimaryDown(t *testing.T) {
	primary := &memStore{saveErr: errors.New("connection refused")}
	fallback := &memStore{}
	k := New(primary, fallback, 4)
	k.retryInterval = time.Millisecond

	k.Submit(testRecord("s1"))
	closeKeeper(t, k)

	if fallback.savedCount() != 1 {
		t.Fatalf("fallback saved %d records, want 1", fallback.savedCount())
	}
}

func TestSubmitNeverBlocksWhenQueueFull(t *testing.T) {
	// A keeper that is already closed cannot drain, so fill past the
	// queue size and make sure Submit returns anyway.
	primary := &memStore{saveErr: errors.New("down")}
	k := &Keeper{
		primary:       primary,
		queue:         make(chan models.SessionRecord, 1),
		done:          make(chan struct{}),
		retryInterval: time.Millisecond,
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			k.Submit(testRecord("s"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}
}

func TestReadsFallBack(t *testing.T) {
	primary := &memStore{readErr: errors.New("down")}
	fallback := &memStore{}
	k := New(primary, fallback, 4)
	defer closeKeeper(t, k)

	ctx := context.Background()

	entries, err := k.TopSessions(ctx, 10)
	if err != nil {
		t.Fatalf("TopSessions: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("entries = %v", entries)
	}

	stats, err := k.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("GlobalStats: %v", err)
	}
	if stats.TotalGames != 1 {
		t.Errorf("stats = %+v", stats)
	}

	ps, err := k.PlayerStats(ctx, "alice")
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if ps.PlayerName != "alice" {
		t.Errorf("ps = %+v", ps)
	}
}

func TestReadsSurfaceErrorWithoutFallback(t *testing.T) {
	primary := &memStore{readErr: errors.New("down")}
	k := New(primary, nil, 4)
	defer closeKeeper(t, k)

	if _, err := k.TopSessions(context.Background(), 10); err == nil {
		t.Fatal("expected error from primary with no fallback")
	}
}
