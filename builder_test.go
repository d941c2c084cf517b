package fpgate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestBuilderRefusesReuse(t *testing.T) {
	b := New().WithSigningKey(testSigningKey)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("second build on the same builder must fail")
	}
}

func TestBuilderRedisBackedEngine(t *testing.T) {
	mr, rdb := newTestRedis(t)

	engine, err := New().WithConfig(testConfig()).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)

	anchor := time.Now()
	engine.now = func() time.Time { return anchor }

	mustIssue(t, engine, cleanRequest("fp-1", anchor))

	// The record landed in Redis under the store prefix.
	keys := mr.Keys()
	found := false
	for _, k := range keys {
		if k == "fpg:rec:fp-1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("record key missing, keys = %v", keys)
	}

	// Collision state is shared through Redis: a different fingerprint id
	// with the same environment is farming.
	mustReject(t, engine, cleanRequest("fp-2", anchor), ReasonSuspiciousNewFingerprint)
}

func TestBuilderCustomStoreWins(t *testing.T) {
	_, rdb := newTestRedis(t)
	custom := &recordingStore{}

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithFingerprintStore(custom).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)

	anchor := time.Now()
	engine.now = func() time.Time { return anchor }

	mustIssue(t, engine, cleanRequest("fp-1", anchor))
	if custom.puts == 0 {
		t.Fatal("custom store was not used")
	}
}

// recordingStore counts Put calls and otherwise behaves like an empty store.
type recordingStore struct {
	puts int
}

func (s *recordingStore) Get(context.Context, string) (*FingerprintRecord, error) { return nil, nil }

func (s *recordingStore) Put(_ context.Context, _ *FingerprintRecord) error {
	s.puts++
	return nil
}

func (s *recordingStore) FindSimilar(context.Context, string, string, string, string, string, string) ([]*FingerprintRecord, error) {
	return nil, nil
}

func (s *recordingStore) FindByCanvasOrAudio(context.Context, string, string, string) ([]*FingerprintRecord, error) {
	return nil, nil
}
