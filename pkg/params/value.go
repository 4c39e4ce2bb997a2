// Package params models the dynamically-typed parameter values supplied with
// a query request as a closed tagged union, so validation and binding are
// exhaustive over the four supported kinds.
package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the concrete type held by a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindInteger
	KindBoolean
	KindDate // date-like string; structural, not calendar-validated
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is one request parameter value. The zero value is the empty string.
type Value struct {
	kind Kind
	s    string
	i    int64
	b    bool
}

// String constructs a string-kind Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Integer constructs an integer-kind Value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Boolean constructs a boolean-kind Value.
func Boolean(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Date constructs a date-kind Value from its string form.
func Date(s string) Value { return Value{kind: KindDate, s: s} }

// FromAny converts a decoded JSON value into a Value. JSON numbers arrive as
// float64; integral numbers become integers, anything else keeps its textual
// form as a string.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return String("")
	case bool:
		return Boolean(t)
	case string:
		return String(t)
	case int:
		return Integer(int64(t))
	case int64:
		return Integer(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return Integer(int64(t))
		}
		return String(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// FromMap converts a decoded JSON object into a parameter set.
func FromMap(m map[string]any) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}

// Kind returns the tag of the union.
func (v Value) Kind() Kind { return v.kind }

// Text returns the canonical string form of the value. Used for cache-key
// canonicalization and logging.
func (v Value) Text() string {
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// Truthy reports whether the value enables a conditional template block.
// Empty strings, zero integers and false booleans are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindInteger:
		return v.i != 0
	case KindBoolean:
		return v.b
	default:
		return v.s != ""
	}
}

// AsInt converts the value to an integer where possible. Booleans coerce to
// 0/1, string forms are parsed.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInteger:
		return v.i, true
	case KindBoolean:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		i, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	}
}

// IsStringLike reports whether the value carries textual content
// (string or date kinds).
func (v Value) IsStringLike() bool {
	return v.kind == KindString || v.kind == KindDate
}

// Bind returns the native Go value handed to the database driver.
func (v Value) Bind() any {
	switch v.kind {
	case KindInteger:
		return v.i
	case KindBoolean:
		return v.b
	default:
		return v.s
	}
}
