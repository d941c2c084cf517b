package visitor

import (
	"fmt"
	"testing"
	"time"
)

func TestReplaySetReserveThenSeen(t *testing.T) {
	s := NewReplaySet(10 * time.Minute)
	now := time.Now()

	if s.Seen("att-1", now) {
		t.Fatal("unreserved id must not be seen")
	}
	if !s.TryReserve("att-1", now) {
		t.Fatal("first reservation must succeed")
	}
	if !s.Seen("att-1", now) {
		t.Fatal("reserved id must be seen")
	}
	if s.TryReserve("att-1", now) {
		t.Fatal("second reservation of the same id must fail")
	}
	if s.Seen("att-2", now) {
		t.Fatal("other ids must be unaffected")
	}
}

func TestReplaySetReleaseFreesID(t *testing.T) {
	s := NewReplaySet(10 * time.Minute)
	now := time.Now()

	if !s.TryReserve("att-1", now) {
		t.Fatal("first reservation must succeed")
	}
	s.Release("att-1")
	if s.Seen("att-1", now) {
		t.Fatal("released id must not be seen")
	}
	if !s.TryReserve("att-1", now) {
		t.Fatal("released id must be claimable again")
	}
}

func TestReplaySetEntryExpires(t *testing.T) {
	s := NewReplaySet(10 * time.Minute)
	start := time.Now()

	s.TryReserve("att-1", start)
	if !s.Seen("att-1", start.Add(10*time.Minute-time.Second)) {
		t.Fatal("id must stay seen inside the TTL")
	}
	if s.Seen("att-1", start.Add(10*time.Minute)) {
		t.Fatal("id must expire at the TTL")
	}
	if !s.TryReserve("att-1", start.Add(10*time.Minute)) {
		t.Fatal("expired id must be claimable again")
	}
}

func TestReplaySetEmptyID(t *testing.T) {
	s := NewReplaySet(time.Minute)
	if !s.TryReserve("", time.Now()) {
		t.Fatal("empty id must always be claimable")
	}
	if s.Seen("", time.Now()) {
		t.Fatal("empty id must never register")
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %d", s.Len())
	}
}

func TestReplaySetStaysBounded(t *testing.T) {
	s := NewReplaySet(time.Minute)
	start := time.Now()

	for i := 0; i < 1000; i++ {
		s.TryReserve(fmt.Sprintf("att-%d", i), start)
	}
	if s.Len() != 1000 {
		t.Fatalf("expected 1000 retained, got %d", s.Len())
	}

	// Accesses one TTL later sweep each touched shard; consuming a fresh
	// batch must not accumulate on top of the expired one.
	later := start.Add(2 * time.Minute)
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("att-%d", i)
		s.Seen(id, later)
	}
	if got := s.Len(); got != 0 {
		t.Fatalf("expired entries should be swept, %d retained", got)
	}
}
