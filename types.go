package fpgate

import (
	"context"
	"io"

	internalaudit "github.com/vunm/fpgate/internal/audit"
	"github.com/vunm/fpgate/internal/fingerprint"
	"github.com/vunm/fpgate/internal/visitor"
)

// FingerprintRecord is the stored state for one fingerprint key: extracted
// components, bot-verdict fields, sighting timestamps, and the consistency
// score.
type FingerprintRecord = fingerprint.Record

// TokenRequest is one token-issuance attempt as received from the
// transport. Timestamp is the client-reported epoch-seconds value checked
// against the tolerance window; ClientIP and UserAgent come from the
// transport layer, not the request body.
type TokenRequest struct {
	Fingerprint   string         `json:"fingerprint"`
	VisitorID     string         `json:"visitorId"`
	Timestamp     int64          `json:"timestamp"`
	Components    map[string]any `json:"components,omitempty"`
	AttestationID string         `json:"requestId,omitempty"`

	ClientIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// AppToken is the issued artifact. Immutable once issued; ExpiresAt is
// absolute epoch seconds.
type AppToken struct {
	Token       string `json:"token"`
	Fingerprint string `json:"fingerprint"`
	ExpiresAt   int64  `json:"expiresAt"`
}

// VisitorInfo is the read-only view of an external verdict returned by
// [Engine.VisitorInfo]. Looking it up does not consume the attestation.
type VisitorInfo struct {
	AttestationID  string
	BotProbability float64
	BotType        string
	IsBot          bool
	IsIncognito    bool
	IPAddress      string
	Browser        string
	OS             string
	Device         string
}

// VerdictProvider resolves a one-time attestation id against the external
// bot-detection collaborator. Implementations return a nil verdict when the
// id is unknown; any error is treated as an infrastructure fault.
type VerdictProvider = visitor.Provider

// Verdict is the opaque decision consumed from the external bot-detection
// collaborator.
type Verdict = visitor.Verdict

// BrowserDetails is identification metadata attached to a [Verdict].
type BrowserDetails = visitor.BrowserDetails

// FingerprintStore is the record persistence contract. The engine defaults
// to the in-memory implementation; wire Redis through [Builder.WithRedis].
type FingerprintStore interface {
	Get(ctx context.Context, fp string) (*FingerprintRecord, error)
	Put(ctx context.Context, record *FingerprintRecord) error
	FindSimilar(ctx context.Context, userAgent, platform, screenResolution, timezone, language, excludeFP string) ([]*FingerprintRecord, error)
	FindByCanvasOrAudio(ctx context.Context, canvas, audio, excludeFP string) ([]*FingerprintRecord, error)
}

// AuditRecord is a structured audit entry emitted by the engine.
type AuditRecord = internalaudit.Record

// AuditSink receives [AuditRecord] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all records.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded records to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
