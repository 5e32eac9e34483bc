package value

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface representing a single table cell.
// Only Null, String, Number, Bool, Timestamp, and Other implement it.
type Value interface {
	columnValue() // Sealed - only these types implement it
}

// Null represents a missing cell value.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) columnValue() {}

// String represents a textual cell value.
type String string

func (String) columnValue() {}

// Number represents a numeric cell value.
// Always float64; integer columns are lifted losslessly up to 2^53.
type Number float64

func (Number) columnValue() {}

// Bool represents a boolean cell value.
type Bool bool

func (Bool) columnValue() {}

// Timestamp represents a point-in-time cell value.
type Timestamp time.Time

func (Timestamp) columnValue() {}

// Other wraps a cell value of a kind the validator does not model.
// Other is incomparable: it never equals anything, including itself.
type Other struct {
	Raw any
}

func (Other) columnValue() {}

// Kind identifies the runtime kind of a Value.
type Kind string

const (
	KindNull      Kind = "null"
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindBool      Kind = "bool"
	KindTimestamp Kind = "timestamp"
	KindOther     Kind = "other"
)

// ParseKind converts a configuration string into a Kind.
// KindNull and KindOther are not accepted: neither is a meaningful
// expected type for a converted column.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindString, KindNumber, KindBool, KindTimestamp:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown value kind %q (want string, number, bool, or timestamp)", s)
	}
}

// KindOf returns the kind tag for a Value.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Null:
		return KindNull
	case String:
		return KindString
	case Number:
		return KindNumber
	case Bool:
		return KindBool
	case Timestamp:
		return KindTimestamp
	default:
		return KindOther
	}
}

// IsNull reports whether v is the Null value.
// A nil interface is treated as Null so callers lifting sparse rows
// do not need to special-case missing cells.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// FromAny lifts an arbitrary Go value into a Value.
// nil becomes Null; unrecognized types become Other.
func FromAny(raw any) Value {
	switch val := raw.(type) {
	case nil:
		return Null{}
	case Value:
		return val
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case float32:
		return Number(val)
	case int:
		return Number(val)
	case int32:
		return Number(val)
	case int64:
		return Number(val)
	case time.Time:
		return Timestamp(val)
	case []byte:
		return String(val)
	default:
		return Other{Raw: raw}
	}
}

// Equal reports per-kind semantic equality.
// Rules:
//   - Null equals Null.
//   - Values of different kinds are never equal.
//   - Strings compare byte-wise, numbers by float64 ==, bools by ==,
//     timestamps by time.Equal (instant, not representation).
//   - Other is incomparable and never equal, even to itself.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch av := a.(type) {
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Timestamp:
		bv, ok := b.(Timestamp)
		return ok && time.Time(av).Equal(time.Time(bv))
	default:
		return false
	}
}

// Is reports whether v can be interpreted as the expected kind.
// Null satisfies every kind (nullness is classified before type checks).
// Other satisfies no kind.
func Is(v Value, k Kind) bool {
	if IsNull(v) {
		return true
	}
	return KindOf(v) == k
}

// IsEmpty reports whether v is a type-specific empty sentinel:
// the empty string or a NaN number. Null itself is not "empty".
func IsEmpty(v Value) bool {
	switch val := v.(type) {
	case String:
		return val == ""
	case Number:
		return math.IsNaN(float64(val))
	default:
		return false
	}
}

// Canonical returns a deterministic string form of v, prefixed with a
// kind tag so values of different kinds never collide. Strings are NFC
// normalized so byte-distinct encodings of the same text produce the
// same key. The result is used for map keys and for stable sort order
// in reports; it is not a serialization format.
func Canonical(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return "s:" + norm.NFC.String(string(val))
	case Number:
		return "n:" + strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return "b:" + strconv.FormatBool(bool(val))
	case Timestamp:
		return "t:" + time.Time(val).UTC().Format(time.RFC3339Nano)
	case Other:
		return fmt.Sprintf("o:%v", val.Raw)
	default:
		return fmt.Sprintf("o:%v", v)
	}
}

// Display returns the human-readable form of v for report output.
// Unlike Canonical it carries no kind tag.
func Display(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return string(val)
	case Number:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Timestamp:
		return time.Time(val).UTC().Format(time.RFC3339)
	case Other:
		return fmt.Sprintf("%v", val.Raw)
	default:
		return fmt.Sprintf("%v", v)
	}
}
