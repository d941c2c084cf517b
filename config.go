package fpgate

import (
	"errors"
	"time"
)

// Config defines a public type used by fpgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token          TokenConfig
	RateLimit      RateLimitConfig
	FailedAttempts FailedAttemptConfig
	Consistency    ConsistencyConfig
	Visitor        VisitorConfig
	Audit          AuditConfig
	Metrics        MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by fpgate APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// TTL is the lifetime of issued app tokens.
	TTL time.Duration
	// SigningKey is the symmetric HS256 key. Required; never logged.
	SigningKey []byte
	// Issuer, when set, is stamped and enforced on every token.
	Issuer string
	// TimestampTolerance bounds |now - request.timestamp| for replay
	// rejection. The bound is inclusive.
	TimestampTolerance time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by fpgate APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	// ScopePerIP keys counters by fingerprint+IP instead of fingerprint
	// alone.
	ScopePerIP bool
}

// FailedAttemptConfig defines a public type used by fpgate APIs.
//
// FailedAttemptConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FailedAttemptConfig struct {
	MaxFailures int
	Window      time.Duration
	ScopePerIP  bool
}

/*
====================================
CONSISTENCY CONFIG
====================================
*/

// ConsistencyConfig defines a public type used by fpgate APIs.
//
// ConsistencyConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ConsistencyConfig struct {
	// MinAcceptScore is the lowest consistency score that still passes
	// verification after a clean update.
	MinAcceptScore int
}

/*
====================================
VISITOR CONFIG
====================================
*/

// VisitorConfig defines a public type used by fpgate APIs.
//
// VisitorConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VisitorConfig struct {
	// BotProbabilityThreshold rejects verdicts whose bot probability
	// exceeds this value.
	BotProbabilityThreshold float64
	// AttestationTTL bounds how long a consumed attestation id is retained
	// for replay detection before eviction.
	AttestationTTL time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by fpgate APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by fpgate APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline policy: hourly token TTL, 100 requests
// per fingerprint per hour, lockout after 5 failures per hour, 120s timestamp
// tolerance, and accept score 50.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:                time.Hour,
			TimestampTolerance: 120 * time.Second,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 100,
			Window:      time.Hour,
		},
		FailedAttempts: FailedAttemptConfig{
			MaxFailures: 5,
			Window:      time.Hour,
		},
		Consistency: ConsistencyConfig{
			MinAcceptScore: 50,
		},
		Visitor: VisitorConfig{
			BotProbabilityThreshold: 0.7,
			AttestationTTL:          10 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Token.SigningKey) == 0 {
		return errors.New("token signing key required")
	}
	if len(cfg.Token.SigningKey) < 32 {
		return errors.New("token signing key must be at least 32 bytes")
	}
	if cfg.Token.TTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if cfg.Token.TimestampTolerance < 0 {
		return errors.New("timestamp tolerance must not be negative")
	}
	if cfg.RateLimit.MaxRequests <= 0 || cfg.RateLimit.Window <= 0 {
		return errors.New("rate limit window configuration invalid")
	}
	if cfg.FailedAttempts.MaxFailures <= 0 || cfg.FailedAttempts.Window <= 0 {
		return errors.New("failed attempt window configuration invalid")
	}
	if cfg.Consistency.MinAcceptScore < 0 || cfg.Consistency.MinAcceptScore > 100 {
		return errors.New("minimum accept score must be within [0,100]")
	}
	if cfg.Visitor.BotProbabilityThreshold < 0 || cfg.Visitor.BotProbabilityThreshold > 1 {
		return errors.New("bot probability threshold must be within [0,1]")
	}
	if cfg.Visitor.AttestationTTL <= 0 {
		return errors.New("attestation TTL must be positive")
	}
	return nil
}
