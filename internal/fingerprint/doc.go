// Package fingerprint implements consistency scoring for browser device
// fingerprints.
//
// # Components
//
//   - [Components] — typed view of the client-submitted component map, with
//     a raw-serialized fallback for unrecognized keys.
//   - [Record] — the stored per-fingerprint state: extracted components,
//     bot-verdict fields, sighting timestamps, and the consistency score.
//   - [Verifier] — the accept/reject state machine: first sightings pass
//     through the heuristic rule set, repeat sightings through the scored
//     consistency update.
//   - [Store] — the read/write contract the verifier requires from record
//     persistence.
//
// Score evolution is serialized per fingerprint key through striped locks;
// concurrent requests for the same fingerprint never lose an update.
// Requests for different fingerprints do not contend.
//
// # Architecture boundaries
//
// This package owns the scoring algorithm and the heuristic rule set. It
// does NOT talk to the external bot-verdict provider — the engine resolves
// the verdict first and hands any verdict fields in through Components.
//
// # What this package must NOT do
//
//   - Import fpgate or any sibling internal package.
//   - Delete records; retention is the store owner's concern.
package fingerprint
