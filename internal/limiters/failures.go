package limiters

import (
	"sync"
	"time"
)

// FailureConfig holds failed-attempt tracking parameters.
type FailureConfig struct {
	MaxFailures int
	Window      time.Duration
}

type failureShard struct {
	mu        sync.Mutex
	counters  map[string]*windowCounter
	lastSweep time.Time
}

// FailureTracker counts failed verification attempts per key over a trailing
// window. Reads and writes are split: TooManyFailures never records, and
// RecordFailure is called exactly once per verification failure by the
// engine.
type FailureTracker struct {
	config FailureConfig
	shards [shardCount]*failureShard
}

// NewFailureTracker creates a sharded failed-attempt tracker.
func NewFailureTracker(cfg FailureConfig) *FailureTracker {
	t := &FailureTracker{config: cfg}
	for i := range t.shards {
		t.shards[i] = &failureShard{counters: make(map[string]*windowCounter)}
	}
	return t
}

// TooManyFailures reports whether key has reached the failure threshold
// within the current window. Pure read; does not itself record an attempt.
// An empty key reports true so that malformed identities stay locked out.
func (t *FailureTracker) TooManyFailures(key string, now time.Time) bool {
	if t == nil {
		return false
	}
	if key == "" {
		return true
	}

	shard := t.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	c, ok := shard.counters[key]
	if !ok || now.Sub(c.windowStart) >= t.config.Window {
		return false
	}
	return c.count >= t.config.MaxFailures
}

// RecordFailure increments the failure counter for key, starting a fresh
// window if the previous one elapsed.
func (t *FailureTracker) RecordFailure(key string, now time.Time) {
	if t == nil || key == "" {
		return
	}

	shard := t.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if now.Sub(shard.lastSweep) >= t.config.Window {
		shard.lastSweep = now
		for k, c := range shard.counters {
			if now.Sub(c.windowStart) >= t.config.Window {
				delete(shard.counters, k)
			}
		}
	}

	c, ok := shard.counters[key]
	if !ok || now.Sub(c.windowStart) >= t.config.Window {
		shard.counters[key] = &windowCounter{count: 1, windowStart: now}
		return
	}
	c.count++
}

// Failures returns the in-window failure count for key.
func (t *FailureTracker) Failures(key string, now time.Time) int {
	if t == nil || key == "" {
		return 0
	}

	shard := t.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	c, ok := shard.counters[key]
	if !ok || now.Sub(c.windowStart) >= t.config.Window {
		return 0
	}
	return c.count
}
