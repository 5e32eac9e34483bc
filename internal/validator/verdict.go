package validator

import (
	"github.com/wharton/dfcv/internal/value"
)

// Verdict classifies one column of one aligned row pair.
// The set is closed; Compare returns nothing else.
type Verdict string

const (
	// VerdictAlreadyNull: null before and after. Not a regression.
	VerdictAlreadyNull Verdict = "ALREADY_NULL"

	// VerdictValueLost: non-null before, null after. The defect this
	// system exists to catch.
	VerdictValueLost Verdict = "VALUE_LOST"

	// VerdictTypeMismatch: the after value is non-null but cannot be
	// interpreted as the expected converted kind, or the pair is
	// fundamentally incomparable.
	VerdictTypeMismatch Verdict = "TYPE_MISMATCH"

	// VerdictUnchanged: equal under the column's comparison rule.
	VerdictUnchanged Verdict = "UNCHANGED"

	// VerdictChangedNonNull: changed but still non-null. Acceptable;
	// the conversion is supposed to change representations.
	VerdictChangedNonNull Verdict = "CHANGED_NONNULL"
)

// Problem reports whether the verdict counts against the report.
func (v Verdict) Problem() bool {
	return v == VerdictValueLost || v == VerdictTypeMismatch
}

// Comparator classifies before/after cell pairs. It is pure: a verdict is
// a function of the two values, the column's expected kind, and the
// empty-as-null option, nothing else.
type Comparator struct {
	expected    map[string]value.Kind
	emptyAsNull bool
}

// NewComparator creates a Comparator. expected maps column name to the
// kind the conversion should have produced; columns absent from the map
// skip the type check. May be nil.
func NewComparator(expected map[string]value.Kind, treatEmptyAsNull bool) *Comparator {
	return &Comparator{expected: expected, emptyAsNull: treatEmptyAsNull}
}

// Compare classifies one cell pair. Rules, in priority order:
//
//  1. Null on both sides: ALREADY_NULL.
//  2. Non-null before, null after: VALUE_LOST.
//  3. Non-null after that cannot be interpreted as the column's expected
//     kind (when one is configured): TYPE_MISMATCH.
//  4. Equal under value.Equal: UNCHANGED.
//  5. Otherwise: CHANGED_NONNULL.
//
// When treat_empty_as_null is set, the empty string and NaN are
// normalized to null on BOTH sides before rule 1 runs. So an empty-string
// before and a null after classify as ALREADY_NULL with the flag on, and
// as VALUE_LOST with it off. The flag changes what counts as null going
// in; it never changes the rules themselves.
//
// A pair with unmodeled kinds on both sides is incomparable; it degrades
// to TYPE_MISMATCH rather than failing, so one exotic column cannot abort
// the run. An unmodeled kind on one side only is an ordinary non-equal
// pair (CHANGED_NONNULL): the value is still there, just changed.
func (c *Comparator) Compare(column string, before, after value.Value) Verdict {
	if c.emptyAsNull {
		before = nullIfEmpty(before)
		after = nullIfEmpty(after)
	}

	beforeNull := value.IsNull(before)
	afterNull := value.IsNull(after)

	switch {
	case beforeNull && afterNull:
		return VerdictAlreadyNull
	case !beforeNull && afterNull:
		return VerdictValueLost
	}

	// after is non-null from here on.
	if k, ok := c.expected[column]; ok && !value.Is(after, k) {
		return VerdictTypeMismatch
	}

	// Incomparable: unmodeled kinds on both sides.
	if value.KindOf(before) == value.KindOther && value.KindOf(after) == value.KindOther {
		return VerdictTypeMismatch
	}

	if value.Equal(before, after) {
		return VerdictUnchanged
	}
	return VerdictChangedNonNull
}

func nullIfEmpty(v value.Value) value.Value {
	if value.IsEmpty(v) {
		return value.Null{}
	}
	return v
}
