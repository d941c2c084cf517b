package visitor

import (
	"hash/fnv"
	"sync"
	"time"
)

const replayShardCount = 32

type replayShard struct {
	mu        sync.Mutex
	consumed  map[string]time.Time
	lastSweep time.Time
}

// ReplaySet is a process-wide set of consumed attestation ids. Entries
// expire after the configured TTL; eviction happens lazily under the shard
// lock during normal access, so the set stays bounded without a background
// timer.
type ReplaySet struct {
	ttl    time.Duration
	shards [replayShardCount]*replayShard
}

// NewReplaySet creates a replay set whose entries live for ttl.
func NewReplaySet(ttl time.Duration) *ReplaySet {
	s := &ReplaySet{ttl: ttl}
	for i := range s.shards {
		s.shards[i] = &replayShard{consumed: make(map[string]time.Time)}
	}
	return s
}

func (s *ReplaySet) shard(id string) *replayShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[h.Sum32()%replayShardCount]
}

// Seen reports whether id was consumed within the TTL.
func (s *ReplaySet) Seen(id string, now time.Time) bool {
	if s == nil || id == "" {
		return false
	}

	shard := s.shard(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.sweep(now, s.ttl)

	consumedAt, ok := shard.consumed[id]
	if !ok {
		return false
	}
	if now.Sub(consumedAt) >= s.ttl {
		delete(shard.consumed, id)
		return false
	}
	return true
}

// TryReserve claims id under the shard lock, returning false when it was
// already consumed within the TTL. The claim doubles as the consumption
// mark; callers roll back claims for rejected verdicts with [Release].
// Empty ids never register and are always claimable.
func (s *ReplaySet) TryReserve(id string, now time.Time) bool {
	if s == nil || id == "" {
		return true
	}

	shard := s.shard(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.sweep(now, s.ttl)

	if consumedAt, ok := shard.consumed[id]; ok && now.Sub(consumedAt) < s.ttl {
		return false
	}
	shard.consumed[id] = now
	return true
}

// Release drops a reservation taken by [TryReserve].
func (s *ReplaySet) Release(id string) {
	if s == nil || id == "" {
		return
	}

	shard := s.shard(id)
	shard.mu.Lock()
	delete(shard.consumed, id)
	shard.mu.Unlock()
}

// Len returns the total number of retained ids, expired or not. Test hook.
func (s *ReplaySet) Len() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, shard := range s.shards {
		shard.mu.Lock()
		total += len(shard.consumed)
		shard.mu.Unlock()
	}
	return total
}

func (sh *replayShard) sweep(now time.Time, ttl time.Duration) {
	if now.Sub(sh.lastSweep) < ttl {
		return
	}
	sh.lastSweep = now
	for id, consumedAt := range sh.consumed {
		if now.Sub(consumedAt) >= ttl {
			delete(sh.consumed, id)
		}
	}
}
