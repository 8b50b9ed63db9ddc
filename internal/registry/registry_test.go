package registry

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"guessquest/internal/game"
	"guessquest/internal/models"
)

func newSession(id string) *game.Session {
	scorer := game.NewScoringEngine(game.DefaultScoringConfig())
	planner := game.NewHintPlanner(rand.New(rand.NewSource(1)))
	difficulty := models.Difficulty{Name: "normal", ScoreMultiplier: 1.0}
	return game.NewSession(id, "alice", "en", difficulty, 1, scorer, planner, nil)
}

func completeSession(t *testing.T, s *game.Session) {
	t.Helper()
	item := models.ContentItem{Answer: "giraffe", Facts: []string{"f1", "f2"}}
	if err := s.BeginRound(item); err != nil {
		t.Fatalf("BeginRound: %v", err)
	}
	if _, _, err := s.SubmitGuess("giraffe"); err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}
	if !s.IsComplete() {
		t.Fatal("session should be complete after its only round")
	}
}

func TestPutGetRemove(t *testing.T) {
	r := New(time.Hour, time.Hour)
	defer r.Close()

	s := newSession("s1")
	r.Put(s)

	got, err := r.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}

	r.Remove("s1")
	if _, err := r.Get("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestGetUnknownSession(t *testing.T) {
	r := New(time.Hour, time.Hour)
	defer r.Close()

	if _, err := r.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	r := New(20*time.Millisecond, time.Hour)
	defer r.Close()

	r.Put(newSession("idle"))
	time.Sleep(40 * time.Millisecond)

	fresh := newSession("fresh")
	r.Put(fresh)

	r.Sweep()

	if _, err := r.Get("idle"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("idle session should be evicted")
	}
	if _, err := r.Get("fresh"); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}

func TestSweepEvictsCompletedSessionsAfterRetention(t *testing.T) {
	r := New(time.Hour, 20*time.Millisecond)
	defer r.Close()

	s := newSession("done")
	completeSession(t, s)
	r.Put(s)

	// Completed sessions stay readable until retention passes.
	r.Sweep()
	if _, err := r.Get("done"); err != nil {
		t.Fatalf("completed session evicted too early: %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	r.Sweep()
	if _, err := r.Get("done"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("completed session should be evicted after retention")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New(time.Hour, time.Hour)
	defer r.Close()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				id := fmt.Sprintf("s-%d-%d", n, j)
				r.Put(newSession(id))
				if _, err := r.Get(id); err != nil {
					t.Errorf("Get(%s): %v", id, err)
				}
				r.Sweep()
				r.Remove(id)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}
