package fpgate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vunm/fpgate/internal/fingerprint"
	"github.com/vunm/fpgate/internal/visitor"
	"github.com/vunm/fpgate/jwt"
)

const (
	requestTypeToken    = "TOKEN_REQUEST"
	requestTypeValidate = "TOKEN_VALIDATE"
)

// IssueToken runs the full gating pipeline for one request and, when every
// check passes, mints a signed app token bound to the fingerprint.
//
// Checks run in a fixed order — failed-attempt lockout, external verdict,
// consistency verification, rate limit, timestamp — and the first failure
// rejects. Every outcome, accepted or rejected, is emitted to the audit
// trail; rejection reasons never leave the audit path. Any unexpected
// internal fault is contained and reported as a verification-error
// rejection, never a panic across the engine boundary.
func (e *Engine) IssueToken(ctx context.Context, req TokenRequest) (token *AppToken, rejection *Rejection) {
	if e == nil || e.codec == nil {
		return nil, &Rejection{Reason: ReasonVerificationError}
	}

	now := e.now()

	defer func() {
		if r := recover(); r != nil {
			rejection = e.reject(ctx, req, now, ReasonVerificationError, false, 0)
			token = nil
		}
	}()

	if e.failures.TooManyFailures(e.failureKey(req.Fingerprint, req.ClientIP), now) {
		return nil, e.reject(ctx, req, now, ReasonTooManyFailedAttempts, false, 0)
	}

	if req.Fingerprint == "" || req.Components == nil {
		return nil, e.reject(ctx, req, now, ReasonInvalidFingerprint, false, 0)
	}

	components := req.Components
	if e.visitors != nil {
		verdict, reason := e.checkVerdict(ctx, req.AttestationID, now)
		if reason != "" {
			return nil, e.reject(ctx, req, now, reason, true, 0)
		}
		components = mergeVerdict(components, verdict)
	}

	result, err := e.verifier.Verify(ctx, req.Fingerprint, fingerprint.Parse(components), now)
	if err != nil {
		return nil, e.reject(ctx, req, now, ReasonVerificationError, false, 0)
	}
	if result.Status != fingerprint.Accepted {
		reason, suspectedBot := consistencyReason(result.Status)
		return nil, e.reject(ctx, req, now, reason, suspectedBot, result.Score)
	}

	if !e.rateLimiter.TryConsume(e.rateKey(req.Fingerprint, req.ClientIP), now) {
		return nil, e.reject(ctx, req, now, ReasonRateLimitExceeded, true, result.Score)
	}

	skew := now.Unix() - req.Timestamp
	if skew < 0 {
		skew = -skew
	}
	if skew > int64(e.config.Token.TimestampTolerance/time.Second) {
		return nil, e.reject(ctx, req, now, ReasonInvalidTimestamp, false, result.Score)
	}

	signed, err := e.codec.Issue(req.Fingerprint, jwt.TokenMeta{
		DeviceID:  req.VisitorID,
		IP:        req.ClientIP,
		UserAgent: req.UserAgent,
	}, now)
	if err != nil {
		return nil, e.reject(ctx, req, now, ReasonVerificationError, false, result.Score)
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, req, now, AuditRecord{
		Success: true,
		Score:   result.Score,
	})

	return &AppToken{
		Token:       signed,
		Fingerprint: req.Fingerprint,
		ExpiresAt:   now.Add(e.config.Token.TTL).Unix(),
	}, nil
}

// checkVerdict resolves the one-time attestation against the external
// collaborator. An empty reason means the verdict passed.
func (e *Engine) checkVerdict(ctx context.Context, attestationID string, now time.Time) (*Verdict, Reason) {
	if attestationID == "" {
		return nil, ReasonAttestationNotFound
	}

	verdict, err := e.visitors.Verify(ctx, attestationID, now)
	switch {
	case err == nil:
		return verdict, ""
	case errors.Is(err, visitor.ErrReplayed):
		return nil, ReasonReplayedAttestation
	case errors.Is(err, visitor.ErrVerdictNotFound):
		return nil, ReasonAttestationNotFound
	case errors.Is(err, visitor.ErrBotDetected):
		return nil, ReasonBotDetected
	default:
		return nil, ReasonVerificationError
	}
}

// mergeVerdict folds the external verdict's scalar fields into a copy of
// the submitted component map, so the consistency verifier stores them with
// the record. The caller's map is never mutated.
func mergeVerdict(components map[string]any, verdict *Verdict) map[string]any {
	if verdict == nil {
		return components
	}
	merged := make(map[string]any, len(components)+3)
	for k, v := range components {
		merged[k] = v
	}
	merged["botProbability"] = verdict.BotProbability
	merged["botType"] = verdict.BotType
	merged["isBot"] = verdict.IsBot
	return merged
}

func consistencyReason(status fingerprint.Status) (Reason, bool) {
	switch status {
	case fingerprint.InvalidInput:
		return ReasonInvalidFingerprint, false
	case fingerprint.BotDetected:
		return ReasonBotDetected, true
	case fingerprint.SuspiciousNew:
		return ReasonSuspiciousNewFingerprint, true
	case fingerprint.CriticalMismatch:
		return ReasonCriticalComponentMismatch, false
	case fingerprint.HardwareDrift:
		return ReasonExcessiveHardwareDrift, false
	default:
		return ReasonLowConsistencyScore, false
	}
}

// reject records the failed attempt, bumps the per-reason counters, emits
// the audit record, and returns the rejection. Failed attempts are recorded
// once per rejected request, here and nowhere else on the issuance path.
func (e *Engine) reject(ctx context.Context, req TokenRequest, now time.Time, reason Reason, suspectedBot bool, score int) *Rejection {
	switch reason {
	case ReasonTooManyFailedAttempts:
		e.metricInc(MetricLockoutHit)
	case ReasonBotDetected:
		e.metricInc(MetricBotDetected)
	case ReasonReplayedAttestation:
		e.metricInc(MetricReplayDetected)
	case ReasonAttestationNotFound:
		e.metricInc(MetricAttestationNotFound)
	case ReasonSuspiciousNewFingerprint:
		e.metricInc(MetricSuspiciousNewFingerprint)
	case ReasonCriticalComponentMismatch, ReasonExcessiveHardwareDrift, ReasonLowConsistencyScore:
		e.metricInc(MetricConsistencyRejected)
	case ReasonRateLimitExceeded:
		e.metricInc(MetricRateLimitHit)
	case ReasonInvalidTimestamp:
		e.metricInc(MetricTimestampRejected)
	case ReasonVerificationError:
		e.metricInc(MetricVerificationError)
	}

	e.failures.RecordFailure(e.failureKey(req.Fingerprint, req.ClientIP), now)
	e.emitAudit(ctx, req, now, AuditRecord{
		Success:      false,
		Reason:       string(reason),
		SuspectedBot: suspectedBot,
		Score:        score,
	})
	return &Rejection{Reason: reason, SuspectedBot: suspectedBot}
}

// emitAudit fills the request context into the partially-built record and
// hands it to the dispatcher. Fire-and-forget.
func (e *Engine) emitAudit(ctx context.Context, req TokenRequest, now time.Time, record AuditRecord) {
	if e.audit == nil {
		return
	}
	record.ID = uuid.NewString()
	record.Timestamp = now
	record.RequestType = requestTypeToken
	record.Fingerprint = req.Fingerprint
	record.VisitorID = req.VisitorID
	record.IP = req.ClientIP
	record.UserAgent = req.UserAgent
	e.audit.Emit(ctx, record)
}
