package fpgate

import (
	"time"

	internalaudit "github.com/vunm/fpgate/internal/audit"
	"github.com/vunm/fpgate/internal/fingerprint"
	"github.com/vunm/fpgate/internal/limiters"
	"github.com/vunm/fpgate/internal/visitor"
	"github.com/vunm/fpgate/jwt"
)

// Engine defines a public type used by fpgate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config      Config
	rateLimiter *limiters.WindowLimiter
	failures    *limiters.FailureTracker
	verifier    *fingerprint.Verifier
	visitors    *visitor.Verifier
	store       fingerprint.Store
	codec       *jwt.Manager
	audit       *internalaudit.Dispatcher
	metrics     *Metrics

	// now is the engine clock; tests substitute it to drive windows.
	now func() time.Time
}

// Close describes the close operation and its observable behavior.
//
// Close drains the audit dispatcher; it is safe to call more than once and on a nil receiver.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// rateKey and failureKey scope the window counters per the configured
// identity: fingerprint alone, or fingerprint+IP.
func (e *Engine) rateKey(fp, ip string) string {
	if e.config.RateLimit.ScopePerIP && ip != "" {
		return fp + "|" + ip
	}
	return fp
}

func (e *Engine) failureKey(fp, ip string) string {
	if e.config.FailedAttempts.ScopePerIP && ip != "" {
		return fp + "|" + ip
	}
	return fp
}
