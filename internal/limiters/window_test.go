package limiters

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestWindowLimiterAllowsUpToBudget(t *testing.T) {
	l := NewWindowLimiter(WindowConfig{MaxRequests: 3, Window: time.Hour})
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.TryConsume("fp-1", now) {
			t.Fatalf("request %d should be within budget", i+1)
		}
	}
	if l.TryConsume("fp-1", now) {
		t.Fatal("request beyond budget should be denied")
	}
}

func TestWindowLimiterResetsAtWindowEdge(t *testing.T) {
	l := NewWindowLimiter(WindowConfig{MaxRequests: 1, Window: time.Hour})
	start := time.Now()

	if !l.TryConsume("fp-1", start) {
		t.Fatal("first request should pass")
	}
	if l.TryConsume("fp-1", start.Add(time.Hour-time.Second)) {
		t.Fatal("request inside the window should be denied")
	}
	// Exactly one window later the counter starts fresh.
	if !l.TryConsume("fp-1", start.Add(time.Hour)) {
		t.Fatal("request at the window edge should start a new window")
	}
}

func TestWindowLimiterKeysAreIndependent(t *testing.T) {
	l := NewWindowLimiter(WindowConfig{MaxRequests: 1, Window: time.Hour})
	now := time.Now()

	if !l.TryConsume("fp-1", now) {
		t.Fatal("fp-1 first request should pass")
	}
	if l.TryConsume("fp-1", now) {
		t.Fatal("fp-1 second request should be denied")
	}
	if !l.TryConsume("fp-2", now) {
		t.Fatal("fp-2 must not share fp-1's budget")
	}
}

func TestWindowLimiterEmptyKeyDenied(t *testing.T) {
	l := NewWindowLimiter(WindowConfig{MaxRequests: 100, Window: time.Hour})
	if l.TryConsume("", time.Now()) {
		t.Fatal("empty key must be denied")
	}
}

func TestWindowLimiterCount(t *testing.T) {
	l := NewWindowLimiter(WindowConfig{MaxRequests: 10, Window: time.Hour})
	now := time.Now()

	if got := l.Count("fp-1", now); got != 0 {
		t.Fatalf("expected 0 before any request, got %d", got)
	}
	l.TryConsume("fp-1", now)
	l.TryConsume("fp-1", now)
	if got := l.Count("fp-1", now); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := l.Count("fp-1", now.Add(time.Hour)); got != 0 {
		t.Fatalf("expired window should report 0, got %d", got)
	}
}

func TestWindowLimiterConcurrentSameKeyExact(t *testing.T) {
	const budget = 500
	const goroutines = 8
	const perG = 200 // 1600 attempts total

	l := NewWindowLimiter(WindowConfig{MaxRequests: budget, Window: time.Hour})
	now := time.Now()

	var allowed int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			local := int64(0)
			for j := 0; j < perG; j++ {
				if l.TryConsume("fp-hot", now) {
					local++
				}
			}
			mu.Lock()
			allowed += local
			mu.Unlock()
		}()
	}
	wg.Wait()

	if allowed != budget {
		t.Fatalf("expected exactly %d allowed, got %d", budget, allowed)
	}
}

func TestWindowLimiterSweepDropsExpiredKeys(t *testing.T) {
	l := NewWindowLimiter(WindowConfig{MaxRequests: 5, Window: time.Minute})
	start := time.Now()

	for i := 0; i < 64; i++ {
		l.TryConsume(fmt.Sprintf("fp-%d", i), start)
	}

	// A consume two windows later triggers the lazy sweep on the touched
	// shards; the stale counters must not linger as live counts.
	later := start.Add(2 * time.Minute)
	for i := 0; i < 64; i++ {
		key := fmt.Sprintf("fp-%d", i)
		l.TryConsume(key, later)
		if got := l.Count(key, later); got != 1 {
			t.Fatalf("key %s: expected fresh window count 1, got %d", key, got)
		}
	}
}
