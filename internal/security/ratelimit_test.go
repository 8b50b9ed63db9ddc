package security

import (
	"testing"
	"time"
)

func TestAllowWithinBudget(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)
	defer rl.Close()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over budget should be denied")
	}
}

func TestClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Close()

	if !rl.Allow("a") {
		t.Fatal("first client should be allowed")
	}
	if !rl.Allow("b") {
		t.Error("second client has its own bucket")
	}
	if rl.Allow("a") {
		t.Error("first client is out of tokens")
	}
}

func TestBucketRefillsAfterWindow(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Close()

	if !rl.Allow("a") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("a") {
		t.Fatal("second request should be denied")
	}

	time.Sleep(30 * time.Millisecond)
	if !rl.Allow("a") {
		t.Error("bucket should refill after the window")
	}
}
