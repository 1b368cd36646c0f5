package dynrec

import "strconv"

// Kind identifies the type of a field value. The kind set is closed: these
// four are the only types the mapper moves between records and table columns.
type Kind int

const (
	// Invalid is the zero Kind, it is never held by a stored field.
	Invalid Kind = iota
	// Text is a string field.
	Text
	// Int32 is a 32-bit signed integer field.
	Int32
	// Int64 is a 64-bit signed integer field.
	Int64
	// Float64 is a 64-bit floating point field.
	Float64
)

// String returns the kind name as used in error messages.
func (k Kind) String() string {
	switch k {
	case Text:
		return "Text"
	case Int32:
		return "Int32"
	case Int64:
		return "Int64"
	case Float64:
		return "Float64"
	default:
		return "Invalid"
	}
}

// Value is one field value tagged with its Kind. The zero Value has Kind
// Invalid and carries no payload. Values are built through the XxxValue
// constructors, so the payload always matches the tag.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
}

// TextValue returns a Text Value holding v.
func TextValue(v string) Value {
	return Value{kind: Text, s: v}
}

// Int32Value returns an Int32 Value holding v.
func Int32Value(v int32) Value {
	return Value{kind: Int32, i: int64(v)}
}

// Int64Value returns an Int64 Value holding v.
func Int64Value(v int64) Value {
	return Value{kind: Int64, i: v}
}

// Float64Value returns a Float64 Value holding v.
func Float64Value(v float64) Value {
	return Value{kind: Float64, f: v}
}

// Kind returns the kind tag.
func (v Value) Kind() Kind {
	return v.kind
}

// Text returns the payload of a Text value, "" for any other kind.
func (v Value) Text() string {
	if v.kind == Text {
		return v.s
	}
	return ""
}

// Int32 returns the payload of an Int32 value, 0 for any other kind.
func (v Value) Int32() int32 {
	if v.kind == Int32 {
		return int32(v.i)
	}
	return 0
}

// Int64 returns the payload of an Int64 value, 0 for any other kind.
func (v Value) Int64() int64 {
	if v.kind == Int64 {
		return v.i
	}
	return 0
}

// Float64 returns the payload of a Float64 value, 0 for any other kind.
func (v Value) Float64() float64 {
	if v.kind == Float64 {
		return v.f
	}
	return 0
}

// Interface returns the payload boxed as interface{}, nil for the zero Value.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Text:
		return v.s
	case Int32:
		return int32(v.i)
	case Int64:
		return v.i
	case Float64:
		return v.f
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	return v == other
}

// String renders the payload as plain text, without SQL quoting.
func (v Value) String() string {
	switch v.kind {
	case Text:
		return v.s
	case Int32, Int64:
		return strconv.FormatInt(v.i, 10)
	case Float64:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return ""
	}
}

// newValue converts a dynamically typed value into a tagged Value. Plain int
// widens to Int64 and float32 to Float64, every other type is rejected.
func newValue(value interface{}) (Value, bool) {
	switch v := value.(type) {
	case string:
		return TextValue(v), true
	case int32:
		return Int32Value(v), true
	case int64:
		return Int64Value(v), true
	case int:
		return Int64Value(int64(v)), true
	case float64:
		return Float64Value(v), true
	case float32:
		return Float64Value(float64(v)), true
	default:
		return Value{}, false
	}
}
