package limiters

import (
	"hash/fnv"
	"sync"
	"time"
)

const shardCount = 32

// WindowConfig holds sliding-window tuning parameters.
type WindowConfig struct {
	MaxRequests int
	Window      time.Duration
}

type windowCounter struct {
	count       int
	windowStart time.Time
}

type windowShard struct {
	mu        sync.Mutex
	counters  map[string]*windowCounter
	lastSweep time.Time
}

// WindowLimiter enforces a per-key request budget over a trailing window.
// Keys hash to independent shards; all mutation for one key happens under
// that key's shard lock, so concurrent increments for the same key are
// never lost.
type WindowLimiter struct {
	config WindowConfig
	shards [shardCount]*windowShard
}

// NewWindowLimiter creates a sharded sliding-window limiter.
func NewWindowLimiter(cfg WindowConfig) *WindowLimiter {
	l := &WindowLimiter{config: cfg}
	for i := range l.shards {
		l.shards[i] = &windowShard{counters: make(map[string]*windowCounter)}
	}
	return l
}

func shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % shardCount)
}

// TryConsume records one request for key and reports whether it fits the
// budget. An empty key is denied outright. The first request of a window
// (or of a key whose previous window elapsed) resets the counter and is
// always allowed.
func (l *WindowLimiter) TryConsume(key string, now time.Time) bool {
	if l == nil || key == "" {
		return false
	}

	shard := l.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.sweep(now, l.config.Window)

	c, ok := shard.counters[key]
	if !ok || now.Sub(c.windowStart) >= l.config.Window {
		shard.counters[key] = &windowCounter{count: 1, windowStart: now}
		return true
	}

	c.count++
	return c.count <= l.config.MaxRequests
}

// Count returns the current in-window count for key. Expired entries report
// zero.
func (l *WindowLimiter) Count(key string, now time.Time) int {
	if l == nil || key == "" {
		return 0
	}

	shard := l.shards[shardIndex(key)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	c, ok := shard.counters[key]
	if !ok || now.Sub(c.windowStart) >= l.config.Window {
		return 0
	}
	return c.count
}

// sweep drops entries whose window fully elapsed. Called under the shard
// lock; throttled to once per window so hot shards stay O(1) per access.
func (s *windowShard) sweep(now time.Time, window time.Duration) {
	if now.Sub(s.lastSweep) < window {
		return
	}
	s.lastSweep = now
	for key, c := range s.counters {
		if now.Sub(c.windowStart) >= window {
			delete(s.counters, key)
		}
	}
}
