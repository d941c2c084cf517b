// Package visitor adapts external bot-detection verdicts into accept/reject
// decisions with one-time attestation semantics.
//
// # Components
//
//   - [Provider] — the collaborator contract: resolve an attestation id to
//     a verdict, or report that the id is unknown.
//   - [Verifier] — consumes verdicts, rejecting replays, unknown
//     attestations, and bot-flagged visitors.
//   - [ReplaySet] — sharded, time-evicted set of consumed attestation ids.
//
// An attestation id is claimed atomically before the provider lookup and
// released again if the verdict is rejected, so only successfully redeemed
// non-bot ids stay in the consumed set and concurrent redemptions of one
// id cannot both succeed. Ids older than the attestation validity window
// are evicted so memory stays bounded.
//
// # What this package must NOT do
//
//   - Import fpgate or any sibling internal package.
//   - Implement a provider; transports supply one (or none, in which case
//     the engine skips this stage).
package visitor
