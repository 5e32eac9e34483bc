// Package value provides the tagged column value representation used by
// the conversion validator.
//
// This package contains type definitions and pure functions only. All other
// internal packages import value; value imports nothing internal. This keeps
// it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Value is a sealed interface: Null, String, Number, Bool, Timestamp,
//     Other are the only kinds. No reflection in comparison paths.
//   - Equality is per-kind semantic equality; values of different kinds are
//     never equal and Other is incomparable.
//   - Canonical produces a deterministic, NFC-normalized string form used as
//     map key and sort key, so reports are stable across runs.
package value
