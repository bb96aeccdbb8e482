package elements

import (
	"math"
	"strconv"
)

type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

func (obj ValueKind) String() string {
	switch obj {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a scalar field value. It is comparable so it can be used
// directly as a grouping key.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

func NullValue() Value {
	return Value{kind: KindNull}
}

func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func (obj Value) Kind() ValueKind { return obj.kind }
func (obj Value) IsNull() bool    { return obj.kind == KindNull }

func (obj Value) Str() (string, bool) {
	return obj.str, obj.kind == KindString
}

func (obj Value) Number() (float64, bool) {
	return obj.num, obj.kind == KindNumber
}

func (obj Value) Bool() (bool, bool) {
	return obj.b, obj.kind == KindBool
}

// IsInteger reports whether the value is a number with no fractional part
// that survives a round trip through int64 and float64.
func (obj Value) IsInteger() bool {
	if obj.kind != KindNumber {
		return false
	}
	if math.IsInf(obj.num, 0) || math.IsNaN(obj.num) {
		return false
	}
	return obj.num == math.Trunc(obj.num) && math.Abs(obj.num) <= 1<<53
}

// Text renders the value the way it appears in string typed columns.
// Null renders as the empty string.
func (obj Value) Text() string {
	switch obj.kind {
	case KindString:
		return obj.str
	case KindNumber:
		return strconv.FormatFloat(obj.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(obj.b)
	default:
		return ""
	}
}

func (obj Value) String() string {
	if obj.kind == KindNull {
		return "null"
	}
	return obj.Text()
}
