package store

import (
	"fmt"
	"strconv"
)

// Kind enumerates scalar value kinds.
type Kind int

const (
	// KindString is a string scalar; only strings are subject to
	// placeholder expansion.
	KindString Kind = iota
	// KindInt is a 64-bit signed integer scalar.
	KindInt
	// KindFloat is a 64-bit float scalar.
	KindFloat
	// KindBool is a boolean scalar.
	KindBool
	// KindRandom is an opaque marker normalized to a fresh concrete value
	// on every lookup.
	KindRandom
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindRandom:
		return "Random"
	default:
		return "Unknown"
	}
}

// Rand identifies which random marker a KindRandom value carries.
type Rand int

// Random marker kinds published by the random source.
const (
	RandU8 Rand = iota
	RandU16
	RandU32
	RandU64
	RandI8
	RandI16
	RandI32
	RandI64
	RandUUID
)

// Value is a scalar configuration value.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	b    bool
	rnd  Rand
}

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int creates an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float creates a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool creates a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Random creates a random marker value.
func Random(r Rand) Value { return Value{kind: KindRandom, rnd: r} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload of a KindString value.
func (v Value) Str() string { return v.str }

// IntVal returns the integer payload of a KindInt value.
func (v Value) IntVal() int64 { return v.i }

// FloatVal returns the float payload of a KindFloat value.
func (v Value) FloatVal() float64 { return v.f }

// BoolVal returns the boolean payload of a KindBool value.
func (v Value) BoolVal() bool { return v.b }

// RandVal returns the marker of a KindRandom value.
func (v Value) RandVal() Rand { return v.rnd }

// Of converts a Go scalar into a Value. Supported inputs: Value, string,
// bool, all int/uint widths and float32/64. Anything else is rendered with
// strconv-quality formatting as a string.
func Of(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Int(int64(x))
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint64:
		return String(strconv.FormatUint(x, 10))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	default:
		return String(fmt.Sprint(v))
	}
}
