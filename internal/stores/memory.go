package stores

import (
	"context"
	"strings"
	"sync"

	"github.com/vunm/fpgate/internal/fingerprint"
)

// MemoryFingerprints is the in-process fingerprint store used when no Redis
// client is wired. Inverted indexes keep the collision lookups O(bucket)
// instead of scanning every record.
type MemoryFingerprints struct {
	mu       sync.RWMutex
	records  map[string]*fingerprint.Record
	byEnv    map[string]map[string]struct{}
	byCanvas map[string]map[string]struct{}
	byAudio  map[string]map[string]struct{}
}

// NewMemoryFingerprints creates an empty in-memory store.
func NewMemoryFingerprints() *MemoryFingerprints {
	return &MemoryFingerprints{
		records:  make(map[string]*fingerprint.Record),
		byEnv:    make(map[string]map[string]struct{}),
		byCanvas: make(map[string]map[string]struct{}),
		byAudio:  make(map[string]map[string]struct{}),
	}
}

func envKey(userAgent, platform, screenResolution, timezone, language string) string {
	return strings.Join([]string{userAgent, platform, screenResolution, timezone, language}, "\x1f")
}

// Get returns a copy of the record for fp, or nil when unseen.
func (s *MemoryFingerprints) Get(_ context.Context, fp string) (*fingerprint.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[fp]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

// Put overwrites the record for its fingerprint key and refreshes the
// inverted indexes.
func (s *MemoryFingerprints) Put(_ context.Context, record *fingerprint.Record) error {
	clone := *record

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.records[clone.Fingerprint]; ok {
		s.unindex(old)
	}
	s.records[clone.Fingerprint] = &clone
	s.index(&clone)
	return nil
}

// FindSimilar returns records sharing the full environment tuple under a
// different fingerprint id.
func (s *MemoryFingerprints) FindSimilar(_ context.Context, userAgent, platform, screenResolution, timezone, language, excludeFP string) ([]*fingerprint.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byEnv[envKey(userAgent, platform, screenResolution, timezone, language)], excludeFP), nil
}

// FindByCanvasOrAudio returns records reusing either hash under a different
// fingerprint id. Empty hashes never match; the heuristic layer rejects
// empty-hash submissions before this lookup matters.
func (s *MemoryFingerprints) FindByCanvasOrAudio(_ context.Context, canvas, audio, excludeFP string) ([]*fingerprint.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var out []*fingerprint.Record
	appendBucket := func(bucket map[string]struct{}) {
		for fp := range bucket {
			if fp == excludeFP {
				continue
			}
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
			clone := *s.records[fp]
			out = append(out, &clone)
		}
	}
	if canvas != "" {
		appendBucket(s.byCanvas[canvas])
	}
	if audio != "" {
		appendBucket(s.byAudio[audio])
	}
	return out, nil
}

// Len returns the number of stored records. Test hook.
func (s *MemoryFingerprints) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryFingerprints) collect(bucket map[string]struct{}, excludeFP string) []*fingerprint.Record {
	var out []*fingerprint.Record
	for fp := range bucket {
		if fp == excludeFP {
			continue
		}
		clone := *s.records[fp]
		out = append(out, &clone)
	}
	return out
}

func (s *MemoryFingerprints) index(r *fingerprint.Record) {
	addTo(s.byEnv, envKey(r.UserAgent, r.Platform, r.ScreenResolution, r.Timezone, r.Language), r.Fingerprint)
	if r.Canvas != "" {
		addTo(s.byCanvas, r.Canvas, r.Fingerprint)
	}
	if r.Audio != "" {
		addTo(s.byAudio, r.Audio, r.Fingerprint)
	}
}

func (s *MemoryFingerprints) unindex(r *fingerprint.Record) {
	dropFrom(s.byEnv, envKey(r.UserAgent, r.Platform, r.ScreenResolution, r.Timezone, r.Language), r.Fingerprint)
	dropFrom(s.byCanvas, r.Canvas, r.Fingerprint)
	dropFrom(s.byAudio, r.Audio, r.Fingerprint)
}

func addTo(index map[string]map[string]struct{}, key, fp string) {
	bucket, ok := index[key]
	if !ok {
		bucket = make(map[string]struct{})
		index[key] = bucket
	}
	bucket[fp] = struct{}{}
}

func dropFrom(index map[string]map[string]struct{}, key, fp string) {
	bucket, ok := index[key]
	if !ok {
		return
	}
	delete(bucket, fp)
	if len(bucket) == 0 {
		delete(index, key)
	}
}
