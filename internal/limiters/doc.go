// Package limiters provides the in-memory sliding-window counters behind
// request rate limiting and failed-attempt lockout.
//
// # Limiters
//
//   - [WindowLimiter] — per-key request budget over a trailing window.
//   - [FailureTracker] — per-key failed-verification counter with an
//     independent window and threshold.
//
// Both are sharded: keys hash to one of a fixed set of shards, each with its
// own mutex, so unrelated keys never contend on a single lock and per-key
// increments are never lost to interleaving.
//
// Eviction is lazy. A shard sweeps its expired entries at most once per
// window during normal access; there is no background timer.
//
// All limiters are nil-safe: calling any method on a nil receiver denies.
//
// # Architecture boundaries
//
// Each limiter owns only counting. Policy thresholds come from Config
// structs supplied at construction time.
//
// # What this package must NOT do
//
//   - Import fpgate or any sibling internal package.
//   - Make policy decisions beyond counting — the engine decides
//     consequences.
package limiters
