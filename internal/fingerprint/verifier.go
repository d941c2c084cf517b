package fingerprint

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

const stripeCount = 64

// Status is the outcome of one verification pass.
type Status uint8

const (
	// Accepted means the sighting passed and the record was persisted.
	Accepted Status = iota
	// InvalidInput means the fingerprint key was absent.
	InvalidInput
	// BotDetected means the merged verdict or the stored record marks the
	// visitor as a bot.
	BotDetected
	// SuspiciousNew means a first sighting tripped the heuristic rule set
	// or a collision check; nothing was persisted.
	SuspiciousNew
	// CriticalMismatch means the canvas or audio hash changed.
	CriticalMismatch
	// HardwareDrift means too many rarely-changing components changed at
	// once.
	HardwareDrift
	// LowScore means the update was clean but the accumulated score is
	// below the acceptance floor.
	LowScore
)

// Result carries the verification outcome, the post-update score, and the
// heuristic rule that fired (first sightings only), for the audit trail.
type Result struct {
	Status Status
	Score  int
	Rule   string
}

// Config holds verifier policy knobs.
type Config struct {
	MinAcceptScore          int
	BotProbabilityThreshold float64
}

// Verifier runs the consistency state machine against a record store.
// Record read-modify-write is serialized per fingerprint key through
// striped locks, so score adjustments are never lost to interleaving and
// distinct fingerprints rarely contend.
type Verifier struct {
	store   Store
	config  Config
	stripes [stripeCount]sync.Mutex
}

// NewVerifier creates a verifier over the given record store.
func NewVerifier(store Store, cfg Config) *Verifier {
	return &Verifier{store: store, config: cfg}
}

func (v *Verifier) lock(fp string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fp))
	return &v.stripes[h.Sum32()%stripeCount]
}

// Verify runs one verification pass for a sighting of fp with components c.
// Any store fault is returned as an error; the engine downgrades those to a
// generic verification failure.
func (v *Verifier) Verify(ctx context.Context, fp string, c Components, now time.Time) (Result, error) {
	if fp == "" {
		return Result{Status: InvalidInput}, nil
	}

	// Verdict-flagged bots are rejected before any record work; the next
	// sighting of an already-stored fingerprint picks the flag up through
	// the copy-forward below.
	if c.IsBot {
		return Result{Status: BotDetected}, nil
	}

	mu := v.lock(fp)
	mu.Lock()
	defer mu.Unlock()

	existing, err := v.store.Get(ctx, fp)
	if err != nil {
		return Result{}, err
	}

	if existing == nil {
		return v.admitNew(ctx, fp, c, now)
	}
	return v.updateExisting(ctx, existing, c, now)
}

// admitNew handles a first sighting: heuristic rules, then the collision
// checks, then persistence with a full initial score.
func (v *Verifier) admitNew(ctx context.Context, fp string, c Components, now time.Time) (Result, error) {
	record := NewRecord(fp, c)

	if record.BotProbability > v.config.BotProbabilityThreshold {
		return Result{Status: SuspiciousNew, Rule: "high-bot-probability"}, nil
	}

	if suspicious, rule := SuspiciousPattern(record); suspicious {
		return Result{Status: SuspiciousNew, Rule: rule}, nil
	}

	// Distinct fingerprint ids reporting an identical environment, or
	// reusing another id's canvas/audio hashes, indicate farming.
	similar, err := v.store.FindSimilar(ctx,
		record.UserAgent, record.Platform, record.ScreenResolution,
		record.Timezone, record.Language, fp)
	if err != nil {
		return Result{}, err
	}
	if len(similar) > 0 {
		return Result{Status: SuspiciousNew, Rule: "environment-collision"}, nil
	}

	matching, err := v.store.FindByCanvasOrAudio(ctx, record.Canvas, record.Audio, fp)
	if err != nil {
		return Result{}, err
	}
	if len(matching) > 0 {
		return Result{Status: SuspiciousNew, Rule: "canvas-audio-collision"}, nil
	}

	record.FirstSeenAt = now.UnixMilli()
	record.LastSeenAt = now.UnixMilli()
	record.ConsistencyScore = MaxScore
	if err := v.store.Put(ctx, record); err != nil {
		return Result{}, err
	}

	return Result{Status: Accepted, Score: record.ConsistencyScore}, nil
}

// updateExisting runs the consistency update procedure. The mutated record
// is persisted on every path, accept or reject, so the score history
// survives rejected sightings.
func (v *Verifier) updateExisting(ctx context.Context, existing *Record, c Components, now time.Time) (Result, error) {
	existing.Touch(now)

	if c.BotProbability > 0 {
		existing.BotProbability = c.BotProbability
	}
	if c.BotType != "" {
		existing.BotType = c.BotType
	}
	if c.IsBot {
		existing.IsBot = true
	}

	if existing.IsBot {
		existing.Penalize(botPenalty)
		if err := v.store.Put(ctx, existing); err != nil {
			return Result{}, err
		}
		return Result{Status: BotDetected, Score: existing.ConsistencyScore}, nil
	}

	// Canvas and audio hashes are stable per physical device; any change
	// means spoofing or a different device behind the same id.
	if existing.Canvas != c.Canvas || existing.Audio != c.Audio {
		existing.Penalize(criticalPenalty)
		if err := v.store.Put(ctx, existing); err != nil {
			return Result{}, err
		}
		return Result{Status: CriticalMismatch, Score: existing.ConsistencyScore}, nil
	}

	changes := 0
	if existing.WebglRenderer != c.WebglRenderer {
		changes++
	}
	if existing.WebglVendor != c.WebglVendor {
		changes++
	}
	if existing.CPUCores != c.CPUCores {
		changes++
	}
	if existing.HardwareConcurrency != c.HardwareConcurrency {
		changes++
	}
	if existing.ColorDepth != c.ColorDepth {
		changes++
	}
	if existing.PixelRatio != c.PixelRatio {
		changes++
	}

	// Legitimate driver or hardware updates change one or two of these at
	// a time; broad simultaneous drift suggests rotation.
	if changes > maxHardwareDrift {
		existing.Penalize(driftPenalty)
		if err := v.store.Put(ctx, existing); err != nil {
			return Result{}, err
		}
		return Result{Status: HardwareDrift, Score: existing.ConsistencyScore}, nil
	}

	existing.Reward(cleanReward)
	if err := v.store.Put(ctx, existing); err != nil {
		return Result{}, err
	}

	if existing.ConsistencyScore < v.config.MinAcceptScore {
		return Result{Status: LowScore, Score: existing.ConsistencyScore}, nil
	}
	return Result{Status: Accepted, Score: existing.ConsistencyScore}, nil
}
