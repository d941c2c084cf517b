package stores

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vunm/fpgate/internal/fingerprint"
)

// ErrStoreUnavailable indicates the Redis backend is unreachable or
// returned malformed data.
var ErrStoreUnavailable = errors.New("fingerprint store backend unavailable")

// RedisFingerprints is the Redis-backed fingerprint store. Records are
// JSON-encoded under a per-fingerprint key; three set-based secondary
// indexes serve the collision lookups without scans.
type RedisFingerprints struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisFingerprints creates a store over the given Redis client.
func NewRedisFingerprints(redisClient redis.UniversalClient, prefix string) *RedisFingerprints {
	if prefix == "" {
		prefix = "fpg"
	}
	return &RedisFingerprints{redis: redisClient, prefix: prefix}
}

func (s *RedisFingerprints) recordKey(fp string) string {
	return s.prefix + ":rec:" + fp
}

func (s *RedisFingerprints) envIndexKey(userAgent, platform, screenResolution, timezone, language string) string {
	sum := sha256.Sum256([]byte(envKey(userAgent, platform, screenResolution, timezone, language)))
	return s.prefix + ":idx:env:" + hex.EncodeToString(sum[:16])
}

func (s *RedisFingerprints) canvasIndexKey(canvas string) string {
	return s.prefix + ":idx:canvas:" + canvas
}

func (s *RedisFingerprints) audioIndexKey(audio string) string {
	return s.prefix + ":idx:audio:" + audio
}

// Get fetches and decodes the record for fp, or nil when unseen.
func (s *RedisFingerprints) Get(ctx context.Context, fp string) (*fingerprint.Record, error) {
	data, err := s.redis.Get(ctx, s.recordKey(fp)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var record fingerprint.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &record, nil
}

// Put overwrites the record and keeps the secondary indexes in step. Index
// maintenance and the record write go through one pipeline so a partial
// failure cannot strand the record outside its indexes.
func (s *RedisFingerprints) Put(ctx context.Context, record *fingerprint.Record) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	old, err := s.Get(ctx, record.Fingerprint)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if old != nil {
			pipe.SRem(ctx, s.envIndexKey(old.UserAgent, old.Platform, old.ScreenResolution, old.Timezone, old.Language), old.Fingerprint)
			if old.Canvas != "" {
				pipe.SRem(ctx, s.canvasIndexKey(old.Canvas), old.Fingerprint)
			}
			if old.Audio != "" {
				pipe.SRem(ctx, s.audioIndexKey(old.Audio), old.Fingerprint)
			}
		}

		pipe.Set(ctx, s.recordKey(record.Fingerprint), encoded, 0)
		pipe.SAdd(ctx, s.envIndexKey(record.UserAgent, record.Platform, record.ScreenResolution, record.Timezone, record.Language), record.Fingerprint)
		if record.Canvas != "" {
			pipe.SAdd(ctx, s.canvasIndexKey(record.Canvas), record.Fingerprint)
		}
		if record.Audio != "" {
			pipe.SAdd(ctx, s.audioIndexKey(record.Audio), record.Fingerprint)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// FindSimilar returns records sharing the full environment tuple under a
// different fingerprint id.
func (s *RedisFingerprints) FindSimilar(ctx context.Context, userAgent, platform, screenResolution, timezone, language, excludeFP string) ([]*fingerprint.Record, error) {
	members, err := s.redis.SMembers(ctx, s.envIndexKey(userAgent, platform, screenResolution, timezone, language)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.fetch(ctx, members, excludeFP, nil)
}

// FindByCanvasOrAudio returns records reusing either hash under a different
// fingerprint id. Empty hashes never match.
func (s *RedisFingerprints) FindByCanvasOrAudio(ctx context.Context, canvas, audio, excludeFP string) ([]*fingerprint.Record, error) {
	var members []string
	if canvas != "" {
		found, err := s.redis.SMembers(ctx, s.canvasIndexKey(canvas)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		members = append(members, found...)
	}
	if audio != "" {
		found, err := s.redis.SMembers(ctx, s.audioIndexKey(audio)).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		members = append(members, found...)
	}

	seen := make(map[string]struct{}, len(members))
	return s.fetch(ctx, members, excludeFP, seen)
}

// fetch loads records for the given fingerprint ids, skipping the excluded
// id, duplicates, and index entries whose record has vanished.
func (s *RedisFingerprints) fetch(ctx context.Context, fps []string, excludeFP string, seen map[string]struct{}) ([]*fingerprint.Record, error) {
	var out []*fingerprint.Record
	for _, fp := range fps {
		if fp == excludeFP {
			continue
		}
		if seen != nil {
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
		}
		record, err := s.Get(ctx, fp)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}
