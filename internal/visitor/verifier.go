package visitor

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrVerdictNotFound means the provider has no record for the
	// attestation id; the id was likely fabricated.
	ErrVerdictNotFound = errors.New("attestation not found")
	// ErrReplayed means the attestation id was already consumed.
	ErrReplayed = errors.New("attestation replayed")
	// ErrBotDetected means the verdict marks the visitor as a bot.
	ErrBotDetected = errors.New("bot detected by verdict provider")
)

// BrowserDetails is identification metadata attached to a verdict.
type BrowserDetails struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
}

// Verdict is the opaque decision consumed from the external bot-detection
// collaborator.
type Verdict struct {
	BotProbability float64        `json:"botProbability"`
	BotType        string         `json:"botType"`
	IsBot          bool           `json:"isBot"`
	IsIncognito    bool           `json:"isIncognito"`
	IPAddress      string         `json:"ipAddress"`
	BrowserDetails BrowserDetails `json:"browserDetails"`
}

// Provider resolves a one-time attestation id to a verdict. Implementations
// return [ErrVerdictNotFound] when the id is unknown; any other error is an
// infrastructure fault.
type Provider interface {
	GetVerdict(ctx context.Context, attestationID string) (*Verdict, error)
}

// Config holds verdict policy knobs.
type Config struct {
	BotProbabilityThreshold float64
}

// Verifier converts provider verdicts into decisions with replay
// protection.
type Verifier struct {
	provider Provider
	consumed *ReplaySet
	config   Config
}

// NewVerifier creates a verdict verifier. The replay set is shared
// process-wide by the owning engine.
func NewVerifier(provider Provider, consumed *ReplaySet, cfg Config) *Verifier {
	return &Verifier{provider: provider, consumed: consumed, config: cfg}
}

// Verify resolves the attestation and decides. The id is reserved in the
// consumed set before the provider round trip, so two concurrent requests
// cannot both redeem the same attestation; the reservation is rolled back
// on every rejection, keeping the set limited to successful, non-bot
// verdicts.
func (v *Verifier) Verify(ctx context.Context, attestationID string, now time.Time) (*Verdict, error) {
	if !v.consumed.TryReserve(attestationID, now) {
		return nil, ErrReplayed
	}

	verdict, err := v.provider.GetVerdict(ctx, attestationID)
	if err != nil {
		v.consumed.Release(attestationID)
		return nil, err
	}
	if verdict == nil {
		v.consumed.Release(attestationID)
		return nil, ErrVerdictNotFound
	}

	if verdict.IsBot || verdict.BotProbability > v.config.BotProbabilityThreshold {
		v.consumed.Release(attestationID)
		return verdict, ErrBotDetected
	}

	return verdict, nil
}

// Lookup resolves a verdict without consuming the attestation. Serves the
// read-only visitor-info path.
func (v *Verifier) Lookup(ctx context.Context, attestationID string) (*Verdict, error) {
	verdict, err := v.provider.GetVerdict(ctx, attestationID)
	if err != nil {
		return nil, err
	}
	if verdict == nil {
		return nil, ErrVerdictNotFound
	}
	return verdict, nil
}
