// Package keygen produces surrogate primary keys for tables that lack a
// natural one. Generators are applied by row index, so the same generator
// attached to the before and after tables yields matching keys as long as
// both tables are in the same row order.
package keygen

import (
	"github.com/google/uuid"

	"github.com/wharton/dfcv/internal/value"
)

// Generator computes the surrogate key for the row at rowIndex.
type Generator func(rowIndex int) value.Value

// Sequence returns a generator producing monotonically increasing integer
// keys starting at start. This is the usual choice for surrogate keys: it
// is deterministic, so applying it to the before and after tables produces
// identical keys for identical row positions.
func Sequence(start int64) Generator {
	return func(rowIndex int) value.Value {
		return value.Number(float64(start + int64(rowIndex)))
	}
}

// UUIDv7 returns a generator producing time-sortable UUIDv7 keys.
//
// UUIDv7 keys are NOT reproducible across calls; use them only when the
// key is generated once, before conversion, and carried through to the
// after table. For matching independently-ordered tables use Sequence.
//
// Uses github.com/google/uuid for RFC 4122 compliant UUIDs.
// Panics if UUID generation fails (should never happen in practice).
func UUIDv7() Generator {
	return func(int) value.Value {
		return value.String(uuid.Must(uuid.NewV7()).String())
	}
}

// Fixed returns a generator that yields predetermined keys by row index.
// It enables deterministic tests with known key values.
//
// Panics when asked for a row beyond the provided keys; this fail-fast
// behavior catches fixture misconfiguration.
func Fixed(keys ...value.Value) Generator {
	return func(rowIndex int) value.Value {
		if rowIndex < 0 || rowIndex >= len(keys) {
			panic("keygen: no fixed key for row index")
		}
		return keys[rowIndex]
	}
}
