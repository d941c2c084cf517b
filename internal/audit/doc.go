// Package audit implements async record dispatching for token issuance and
// validation outcomes.
//
// # Components
//
//   - [Sink] — interface for record consumers (channel, JSON writer, no-op).
//   - [Dispatcher] — buffered async relay with drop-if-full / block-if-full
//     semantics.
//   - [Record] — structured audit entry with fingerprint, visitor id, IP,
//     user agent, request category, outcome, and rejection reason.
//
// Emission is fire-and-forget: a full buffer or a slow sink can never block
// or fail the issuance path.
//
// # Architecture boundaries
//
// This package owns record buffering and sink delivery. It does NOT decide
// which records to emit — that responsibility belongs to the Engine.
//
// # What this package must NOT do
//
//   - Filter or suppress records based on business logic.
//   - Import fpgate or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
