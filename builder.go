package fpgate

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/vunm/fpgate/internal/audit"
	"github.com/vunm/fpgate/internal/fingerprint"
	"github.com/vunm/fpgate/internal/limiters"
	"github.com/vunm/fpgate/internal/stores"
	"github.com/vunm/fpgate/internal/visitor"
	"github.com/vunm/fpgate/jwt"
)

// Builder defines a public type used by fpgate APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	store    FingerprintStore
	provider VerdictProvider
	sink     AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New returns a builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig replaces the full configuration; unset fields are validated, not defaulted, by Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSigningKey describes the withsigningkey operation and its observable behavior.
//
// WithSigningKey sets only the token signing key, keeping the rest of the configuration intact.
func (b *Builder) WithSigningKey(key []byte) *Builder {
	b.config.Token.SigningKey = key
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis backs the fingerprint record store with the given Redis client.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithFingerprintStore describes the withfingerprintstore operation and its observable behavior.
//
// WithFingerprintStore supplies a custom record store, overriding both the Redis and in-memory defaults.
func (b *Builder) WithFingerprintStore(store FingerprintStore) *Builder {
	b.store = store
	return b
}

// WithVerdictProvider describes the withverdictprovider operation and its observable behavior.
//
// WithVerdictProvider wires the external bot-detection collaborator. Without one, the pipeline runs
// on local consistency scoring alone.
func (b *Builder) WithVerdictProvider(p VerdictProvider) *Builder {
	b.provider = p
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink directs audit records to the given sink; the default drops them.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	codec, err := jwt.NewManager(jwt.Config{
		TTL:        b.config.Token.TTL,
		SigningKey: b.config.Token.SigningKey,
		Issuer:     b.config.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	var store fingerprint.Store
	switch {
	case b.store != nil:
		store = b.store
	case b.redis != nil:
		store = stores.NewRedisFingerprints(b.redis, "fpg")
	default:
		store = stores.NewMemoryFingerprints()
	}

	engine := &Engine{
		config: b.config,
		rateLimiter: limiters.NewWindowLimiter(limiters.WindowConfig{
			MaxRequests: b.config.RateLimit.MaxRequests,
			Window:      b.config.RateLimit.Window,
		}),
		failures: limiters.NewFailureTracker(limiters.FailureConfig{
			MaxFailures: b.config.FailedAttempts.MaxFailures,
			Window:      b.config.FailedAttempts.Window,
		}),
		verifier: fingerprint.NewVerifier(store, fingerprint.Config{
			MinAcceptScore:          b.config.Consistency.MinAcceptScore,
			BotProbabilityThreshold: b.config.Visitor.BotProbabilityThreshold,
		}),
		store:   store,
		codec:   codec,
		audit:   internalaudit.NewDispatcher(auditDispatcherConfig(b.config.Audit), b.sink),
		metrics: NewMetrics(b.config.Metrics),
		now:     time.Now,
	}

	if b.provider != nil {
		engine.visitors = visitor.NewVerifier(
			b.provider,
			visitor.NewReplaySet(b.config.Visitor.AttestationTTL),
			visitor.Config{BotProbabilityThreshold: b.config.Visitor.BotProbabilityThreshold},
		)
	}

	return engine, nil
}

func auditDispatcherConfig(cfg AuditConfig) internalaudit.Config {
	return internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
	}
}
