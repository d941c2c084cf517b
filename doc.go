// Package fpgate provides a browser-fingerprint gating engine that decides,
// per request, whether a client is trustworthy enough to receive a short-lived
// signed access token.
//
// The decision pipeline runs failed-attempt lockout, external bot-verdict
// verification, fingerprint consistency scoring, sliding-window rate limiting,
// and a timestamp replay check, in that fixed order, before minting a token.
// Every outcome — accepted or rejected — is emitted to the audit trail.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// fpgate is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (TokenRequest, AppToken, Rejection, MetricsSnapshot). All
// internal coordination — window counters, consistency scoring, attestation
// replay tracking, audit dispatch — lives under internal/ and is never
// exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or scoring internals in its
//     public API.
//   - Leak rejection reasons to untrusted callers; reasons go to the audit
//     trail only.
//   - Import any sub-package that re-imports fpgate (no import cycles).
//
// # Performance contract
//
// ValidateToken is the hot path. It must complete without store round-trips.
// IssueToken is allowed one verdict-provider call and one fingerprint-store
// read-modify-write per call.
package fpgate
