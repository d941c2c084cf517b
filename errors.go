package fpgate

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the token gate engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrStoreUnavailable is an exported constant or variable used by the token gate engine.
	ErrStoreUnavailable = errors.New("fingerprint store unavailable")
	// ErrTokenInvalid is an exported constant or variable used by the token gate engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrInvalidConfig is an exported constant or variable used by the token gate engine.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoVerdictProvider is an exported constant or variable used by the token gate engine.
	ErrNoVerdictProvider = errors.New("no verdict provider configured")
	// ErrAttestationUnknown is an exported constant or variable used by the token gate engine.
	ErrAttestationUnknown = errors.New("attestation not found")
)

// Reason identifies why the pipeline refused to mint a token. Reasons are
// recorded in the audit trail and never returned to the HTTP caller; callers
// only observe accept or reject.
type Reason string

const (
	// ReasonTooManyFailedAttempts is an exported constant or variable used by the token gate engine.
	ReasonTooManyFailedAttempts Reason = "too-many-failed-attempts"
	// ReasonInvalidFingerprint is an exported constant or variable used by the token gate engine.
	ReasonInvalidFingerprint Reason = "invalid-fingerprint"
	// ReasonBotDetected is an exported constant or variable used by the token gate engine.
	ReasonBotDetected Reason = "bot-detected"
	// ReasonReplayedAttestation is an exported constant or variable used by the token gate engine.
	ReasonReplayedAttestation Reason = "replayed-attestation"
	// ReasonAttestationNotFound is an exported constant or variable used by the token gate engine.
	ReasonAttestationNotFound Reason = "attestation-not-found"
	// ReasonCriticalComponentMismatch is an exported constant or variable used by the token gate engine.
	ReasonCriticalComponentMismatch Reason = "critical-component-mismatch"
	// ReasonExcessiveHardwareDrift is an exported constant or variable used by the token gate engine.
	ReasonExcessiveHardwareDrift Reason = "excessive-hardware-drift"
	// ReasonLowConsistencyScore is an exported constant or variable used by the token gate engine.
	ReasonLowConsistencyScore Reason = "low-consistency-score"
	// ReasonSuspiciousNewFingerprint is an exported constant or variable used by the token gate engine.
	ReasonSuspiciousNewFingerprint Reason = "suspicious-new-fingerprint"
	// ReasonRateLimitExceeded is an exported constant or variable used by the token gate engine.
	ReasonRateLimitExceeded Reason = "rate-limit-exceeded"
	// ReasonInvalidTimestamp is an exported constant or variable used by the token gate engine.
	ReasonInvalidTimestamp Reason = "invalid-timestamp"
	// ReasonVerificationError is an exported constant or variable used by the token gate engine.
	ReasonVerificationError Reason = "verification-error"
	// ReasonInvalidToken is an exported constant or variable used by the token gate engine.
	ReasonInvalidToken Reason = "invalid-token"
	// ReasonFingerprintMismatch is an exported constant or variable used by the token gate engine.
	ReasonFingerprintMismatch Reason = "fingerprint-mismatch"
)

// Rejection is the engine-side record of a refused issuance. It carries the
// audit reason; transport layers should translate any Rejection into an
// opaque 400 with no body.
type Rejection struct {
	Reason       Reason
	SuspectedBot bool
}
