// Package stores provides the fingerprint record store implementations
// behind the consistency verifier.
//
// # Stores
//
//   - [MemoryFingerprints] — mutex-guarded in-process store with inverted
//     indexes; the default backend.
//   - [RedisFingerprints] — go-redis backed store: JSON-encoded records
//     keyed by fingerprint, with set-based secondary indexes for the
//     environment tuple and for canvas/audio hashes.
//
// Both satisfy the fingerprint.Store contract: Get, unconditional Put, and
// the two collision lookups. Records are copied on the way in and out so
// callers can mutate their snapshots freely.
//
// # Architecture boundaries
//
// Each store owns its own key namespace and error wrapping. Retention
// policy is deliberately absent: this layer never deletes records.
//
// # What this package must NOT do
//
//   - Import fpgate or any sibling internal package except
//     internal/fingerprint.
//   - Make scoring decisions — stores persist, the verifier decides.
package stores
