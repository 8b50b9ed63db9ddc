package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"guessquest/internal/models"
)

func testItem() models.ContentItem {
	return models.ContentItem{
		Answer:   "giraffe",
		Category: "animals",
		Facts: []string{
			"I am a mammal.",
			"I live in Africa.",
			"I eat leaves from tall trees.",
			"I have a very long neck.",
			"I am the tallest land animal.",
		},
	}
}

func newTestRound() *Round {
	scorer := NewScoringEngine(DefaultScoringConfig())
	planner := NewHintPlanner(rand.New(rand.NewSource(1)))
	return NewRound(testItem(), normalDifficulty(), scorer, planner)
}

func TestRevealFactCapAndIdempotence(t *testing.T) {
	r := newTestRound()

	for i := 1; i <= 5; i++ {
		reveal, err := r.RevealFact()
		if err != nil {
			t.Fatalf("RevealFact %d: %v", i, err)
		}
		if reveal.NoMore {
			t.Fatalf("fact %d unexpectedly reported NoMore", i)
		}
		if reveal.FactNumber != i {
			t.Errorf("FactNumber = %d, want %d", reveal.FactNumber, i)
		}
	}

	// Past the cap the call is a no-op, repeatedly.
	for i := 0; i < 3; i++ {
		reveal, err := r.RevealFact()
		if err != nil {
			t.Fatalf("RevealFact past cap: %v", err)
		}
		if !reveal.NoMore {
			t.Fatal("expected NoMore past the cap")
		}
		if r.FactsShown != 5 {
			t.Fatalf("FactsShown mutated to %d", r.FactsShown)
		}
	}
}

func TestRevealFactCapsAtFive(t *testing.T) {
	item := testItem()
	item.Facts = append(item.Facts, "I appear on the Tanzanian coat of arms.")
	scorer := NewScoringEngine(DefaultScoringConfig())
	r := NewRound(item, normalDifficulty(), scorer, NewHintPlanner(rand.New(rand.NewSource(1))))

	for i := 0; i < 5; i++ {
		if _, err := r.RevealFact(); err != nil {
			t.Fatal(err)
		}
	}
	reveal, err := r.RevealFact()
	if err != nil {
		t.Fatal(err)
	}
	if !reveal.NoMore {
		t.Error("sixth fact should be withheld even when the item has more")
	}
}

func TestSubmitGuessWin(t *testing.T) {
	r := newTestRound()
	r.StartedAt = time.Now().Add(-10 * time.Second)
	if _, err := r.RevealFact(); err != nil {
		t.Fatal(err)
	}

	out, err := r.SubmitGuess("Giraffe")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Correct || !out.Finished {
		t.Fatalf("outcome = %+v, want correct finished", out)
	}
	if out.Answer != "giraffe" {
		t.Errorf("Answer = %q", out.Answer)
	}
	if r.Status != RoundWon {
		t.Errorf("Status = %v, want RoundWon", r.Status)
	}
	// 1000 - 1*150 + 200 time bonus + 100 exact = 1150
	if out.Score != 1150 {
		t.Errorf("Score = %d, want 1150", out.Score)
	}
}

func TestSubmitGuessEmptyDoesNotConsumeAttempt(t *testing.T) {
	r := newTestRound()

	for _, guess := range []string{"", "   ", "\t"} {
		if _, err := r.SubmitGuess(guess); !errors.Is(err, ErrEmptyGuess) {
			t.Errorf("SubmitGuess(%q) err = %v, want ErrEmptyGuess", guess, err)
		}
	}
	if r.FailedAttempts != 0 || len(r.Guesses) != 0 {
		t.Errorf("blank guesses consumed attempts: failed=%d guesses=%d", r.FailedAttempts, len(r.Guesses))
	}
}

func TestThreeWrongGuessesAutoReveal(t *testing.T) {
	r := newTestRound()

	wrong := []string{"elephant", "zebra", "hippo"}
	for i, guess := range wrong {
		out, err := r.SubmitGuess(guess)
		if err != nil {
			t.Fatal(err)
		}
		if r.FailedAttempts != i+1 {
			t.Fatalf("FailedAttempts = %d after guess %d", r.FailedAttempts, i+1)
		}
		if i < 2 {
			if out.Finished {
				t.Fatalf("round ended early on guess %d", i+1)
			}
			if out.AttemptsRemaining != 2-i {
				t.Errorf("AttemptsRemaining = %d, want %d", out.AttemptsRemaining, 2-i)
			}
			continue
		}
		// Third wrong guess force-ends the round on that same call.
		if !out.AutoRevealed || !out.Finished {
			t.Fatalf("third wrong guess did not auto-reveal: %+v", out)
		}
		if out.Answer != "giraffe" {
			t.Errorf("answer not disclosed, got %q", out.Answer)
		}
	}

	if r.Status != RoundAutoRevealed {
		t.Errorf("Status = %v, want RoundAutoRevealed", r.Status)
	}
	if r.Score != 0 {
		t.Errorf("auto-revealed round scored %d, want 0", r.Score)
	}
}

func TestGiveUp(t *testing.T) {
	r := newTestRound()

	out, err := r.GiveUp()
	if err != nil {
		t.Fatal(err)
	}
	if !out.GaveUp || out.Answer != "giraffe" {
		t.Errorf("outcome = %+v", out)
	}
	if r.Status != RoundGaveUp || r.Score != 0 {
		t.Errorf("status=%v score=%d", r.Status, r.Score)
	}
}

func TestTerminalRoundRejectsOperations(t *testing.T) {
	r := newTestRound()
	if _, err := r.GiveUp(); err != nil {
		t.Fatal(err)
	}

	if _, err := r.RevealFact(); !errors.Is(err, ErrRoundNotActive) {
		t.Errorf("RevealFact err = %v, want ErrRoundNotActive", err)
	}
	if _, err := r.RevealLetterHint(); !errors.Is(err, ErrRoundNotActive) {
		t.Errorf("RevealLetterHint err = %v, want ErrRoundNotActive", err)
	}
	if _, err := r.SubmitGuess("giraffe"); !errors.Is(err, ErrRoundNotActive) {
		t.Errorf("SubmitGuess err = %v, want ErrRoundNotActive", err)
	}
	if _, err := r.GiveUp(); !errors.Is(err, ErrRoundNotActive) {
		t.Errorf("second GiveUp err = %v, want ErrRoundNotActive", err)
	}
}

func TestHintLimitPerRound(t *testing.T) {
	r := newTestRound()

	for i := 1; i <= MaxHints; i++ {
		reveal, err := r.RevealLetterHint()
		if err != nil {
			t.Fatal(err)
		}
		if reveal.Exhausted {
			t.Fatalf("hint %d unexpectedly exhausted", i)
		}
		if reveal.HintsUsed != i {
			t.Errorf("HintsUsed = %d, want %d", reveal.HintsUsed, i)
		}
	}

	reveal, err := r.RevealLetterHint()
	if err != nil {
		t.Fatal(err)
	}
	if !reveal.Exhausted {
		t.Error("4th hint should report exhausted")
	}
	if r.HintsUsed != MaxHints || len(r.Revealed) != MaxHints {
		t.Errorf("hints_used=%d revealed=%d, want %d", r.HintsUsed, len(r.Revealed), MaxHints)
	}
}

func TestRecord(t *testing.T) {
	r := newTestRound()
	r.StartedAt = time.Now().Add(-20 * time.Second)
	if _, err := r.RevealFact(); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SubmitGuess("zebra"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SubmitGuess("giraffe"); err != nil {
		t.Fatal(err)
	}

	rec := r.Record()
	if !rec.Correct {
		t.Error("record should be marked correct")
	}
	if rec.FactsShown != 1 || rec.GuessAttempts != 1 {
		t.Errorf("facts=%d attempts=%d", rec.FactsShown, rec.GuessAttempts)
	}
	if rec.MatchType != "exact" {
		t.Errorf("MatchType = %q", rec.MatchType)
	}
	if rec.TimeTaken < 19 {
		t.Errorf("TimeTaken = %v, want about 20s", rec.TimeTaken)
	}
}
