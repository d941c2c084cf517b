package fpgate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vunm/fpgate/internal/visitor"
)

// ValidateToken checks a previously issued token against the fingerprint the
// caller presents now. The token must parse, carry a valid signature, be
// unexpired, and have been issued for exactly this fingerprint. Validation
// failures count toward the lockout tracker so a stolen token cannot be
// probed against fingerprints indefinitely.
func (e *Engine) ValidateToken(ctx context.Context, tokenStr, fp string) bool {
	if e == nil || e.codec == nil {
		return false
	}
	now := e.now()

	claims, err := e.codec.Parse(tokenStr)
	if err != nil {
		e.validateFailed(ctx, fp, now, ReasonInvalidToken)
		return false
	}
	if fp == "" || claims.Subject != fp {
		e.validateFailed(ctx, fp, now, ReasonFingerprintMismatch)
		return false
	}

	e.metricInc(MetricValidateSuccess)
	e.emitValidateAudit(ctx, fp, now, true, "")
	return true
}

func (e *Engine) validateFailed(ctx context.Context, fp string, now time.Time, reason Reason) {
	e.metricInc(MetricValidateFailure)
	if fp != "" {
		e.failures.RecordFailure(e.failureKey(fp, ""), now)
	}
	e.emitValidateAudit(ctx, fp, now, false, reason)
}

func (e *Engine) emitValidateAudit(ctx context.Context, fp string, now time.Time, success bool, reason Reason) {
	if e.audit == nil {
		return
	}
	e.audit.Emit(ctx, AuditRecord{
		ID:          uuid.NewString(),
		Timestamp:   now,
		RequestType: requestTypeValidate,
		Fingerprint: fp,
		Success:     success,
		Reason:      string(reason),
	})
}

// VisitorInfo resolves the external verdict for an attestation id without
// consuming it. It serves dashboards and support tooling; the issuance path
// never calls it.
func (e *Engine) VisitorInfo(ctx context.Context, attestationID string) (*VisitorInfo, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.visitors == nil {
		return nil, ErrNoVerdictProvider
	}
	if attestationID == "" {
		return nil, ErrAttestationUnknown
	}

	verdict, err := e.visitors.Lookup(ctx, attestationID)
	if err != nil {
		if errors.Is(err, visitor.ErrVerdictNotFound) {
			return nil, ErrAttestationUnknown
		}
		return nil, err
	}

	return &VisitorInfo{
		AttestationID:  attestationID,
		BotProbability: verdict.BotProbability,
		BotType:        verdict.BotType,
		IsBot:          verdict.IsBot,
		IsIncognito:    verdict.IsIncognito,
		IPAddress:      verdict.IPAddress,
		Browser:        verdict.BrowserDetails.Browser,
		OS:             verdict.BrowserDetails.OS,
		Device:         verdict.BrowserDetails.Device,
	}, nil
}
