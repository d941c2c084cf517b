package fingerprint

import (
	"context"
	"time"
)

// Score bounds and adjustment magnitudes. The score always stays within
// [MinScore, MaxScore] regardless of how many penalties accumulate.
const (
	MinScore = 0
	MaxScore = 100

	botPenalty      = 50
	criticalPenalty = 20
	driftPenalty    = 10
	cleanReward     = 1

	// maxHardwareDrift is how many of the rarely-changing hardware
	// components may differ in a single sighting before the update is
	// treated as spoofing.
	maxHardwareDrift = 2
)

// Record is the stored state for one fingerprint key.
type Record struct {
	Fingerprint string `json:"fingerprint"`
	Components  string `json:"components"`

	UserAgent           string `json:"userAgent"`
	Platform            string `json:"platform"`
	ScreenResolution    string `json:"screenResolution"`
	Timezone            string `json:"timezone"`
	Language            string `json:"language"`
	WebglSupported      bool   `json:"webglSupported"`
	WebglRenderer       string `json:"webglRenderer"`
	WebglVendor         string `json:"webglVendor"`
	CPUCores            string `json:"cpuCores"`
	DeviceMemory        string `json:"deviceMemory"`
	HardwareConcurrency string `json:"hardwareConcurrency"`
	TouchSupport        string `json:"touchSupport"`
	ColorDepth          string `json:"colorDepth"`
	PixelRatio          string `json:"pixelRatio"`
	Fonts               string `json:"fonts"`
	Audio               string `json:"audio"`
	Canvas              string `json:"canvas"`

	BotProbability float64 `json:"botProbability,omitempty"`
	BotType        string  `json:"botType,omitempty"`
	IsBot          bool    `json:"isBot,omitempty"`

	FirstSeenAt      int64 `json:"firstSeenAt"`
	LastSeenAt       int64 `json:"lastSeenAt"`
	ConsistencyScore int   `json:"consistencyScore"`
}

// NewRecord builds a record snapshot from parsed components. The sighting
// timestamps and initial score are set by the verifier, not here.
func NewRecord(fp string, c Components) *Record {
	return &Record{
		Fingerprint:         fp,
		Components:          c.Raw,
		UserAgent:           c.UserAgent,
		Platform:            c.Platform,
		ScreenResolution:    c.ScreenResolution,
		Timezone:            c.Timezone,
		Language:            c.Language,
		WebglSupported:      c.WebglSupported,
		WebglRenderer:       c.WebglRenderer,
		WebglVendor:         c.WebglVendor,
		CPUCores:            c.CPUCores,
		DeviceMemory:        c.DeviceMemory,
		HardwareConcurrency: c.HardwareConcurrency,
		TouchSupport:        c.TouchSupport,
		ColorDepth:          c.ColorDepth,
		PixelRatio:          c.PixelRatio,
		Fonts:               c.Fonts,
		Audio:               c.Audio,
		Canvas:              c.Canvas,
		BotProbability:      c.BotProbability,
		BotType:             c.BotType,
		IsBot:               c.IsBot,
	}
}

// Penalize lowers the score by n, floored at MinScore.
func (r *Record) Penalize(n int) {
	r.ConsistencyScore -= n
	if r.ConsistencyScore < MinScore {
		r.ConsistencyScore = MinScore
	}
}

// Reward raises the score by n, capped at MaxScore.
func (r *Record) Reward(n int) {
	r.ConsistencyScore += n
	if r.ConsistencyScore > MaxScore {
		r.ConsistencyScore = MaxScore
	}
}

// Touch refreshes the last-seen timestamp.
func (r *Record) Touch(now time.Time) {
	r.LastSeenAt = now.UnixMilli()
}

// Store is the persistence contract the verifier requires. Implementations
// live under internal/stores; they must treat Put as an unconditional
// overwrite of the record for its fingerprint key.
type Store interface {
	Get(ctx context.Context, fp string) (*Record, error)
	Put(ctx context.Context, record *Record) error
	FindSimilar(ctx context.Context, userAgent, platform, screenResolution, timezone, language, excludeFP string) ([]*Record, error)
	FindByCanvasOrAudio(ctx context.Context, canvas, audio, excludeFP string) ([]*Record, error)
}
