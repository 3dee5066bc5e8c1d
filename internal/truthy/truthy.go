// Package truthy converts loosely typed feature-flag values into strict
// booleans.
//
// Answers arrive from prompts, answer files and environment variables as a
// mix of booleans, numbers and free text ("Yes", "No", "0", "false", ...).
// IsTruthy normalizes them with a fixed, enumerable rule table for text and
// plain coercion for everything else.
package truthy

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Kind identifies which member of the Value union is set.
type Kind int

const (
	KindBool Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a raw flag value: a bool, a number or a piece of text.
// The zero Value is Bool(false).
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func Text(s string) Value    { return Value{kind: KindText, s: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return fmt.Sprint(v.n)
	case KindText:
		return v.s
	default:
		return fmt.Sprint(v.b)
	}
}

// FromAny maps a decoded YAML/JSON/TOML value onto the union. Strings become
// Text, numeric kinds become Number and collections collapse to Bool of
// their emptiness. nil is Bool(false).
func FromAny(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Bool(false)
	case Value:
		return x
	case bool:
		return Bool(x)
	case string:
		return Text(x)
	case fmt.Stringer:
		return Text(x.String())
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.String:
		return Text(rv.String())
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return Bool(rv.Len() > 0)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Bool(false)
		}
		return FromAny(rv.Elem().Interface())
	default:
		return Bool(true)
	}
}

// IsTruthy reports whether v counts as "on".
func IsTruthy(v Value) bool {
	switch v.kind {
	case KindNumber:
		return v.n != 0
	case KindText:
		_, falsy := FalsyRule(v.s)
		return !falsy
	default:
		return v.b
	}
}

// Of is shorthand for IsTruthy(FromAny(raw)).
func Of(raw any) bool {
	return IsTruthy(FromAny(raw))
}

// textRule is one row of the text rule table: when match reports true the
// text is falsy.
type textRule struct {
	name  string
	match func(s string) bool
}

var textRules = []textRule{
	{"empty", func(s string) bool { return s == "" }},
	{"two", func(s string) bool { return s == "2" }},
	{"contains-false", func(s string) bool { return strings.Contains(strings.ToLower(s), "false") }},
	{"starts-with-n", func(s string) bool { return strings.HasPrefix(strings.ToLower(s), "n") }},
	{"zero", isZeroDigits},
}

// FalsyRule returns the name of the first text rule that makes s falsy.
func FalsyRule(s string) (string, bool) {
	for _, r := range textRules {
		if r.match(s) {
			return r.name, true
		}
	}
	return "", false
}

// isZeroDigits reports whether s is a non-empty run of decimal digits, in
// any script, whose numeric value is zero.
func isZeroDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if d, ok := digitValue(r); !ok || d != 0 {
			return false
		}
	}
	return true
}

// digitValue returns the value of a Unicode decimal digit. Decimal digits
// are encoded in contiguous runs of ten starting at zero, so the value is
// the offset within its range modulo ten.
func digitValue(r rune) (int, bool) {
	for _, rng := range unicode.Nd.R16 {
		lo, hi := rune(rng.Lo), rune(rng.Hi)
		if r >= lo && r <= hi {
			return int((r-lo)/rune(rng.Stride)) % 10, true
		}
	}
	for _, rng := range unicode.Nd.R32 {
		lo, hi := rune(rng.Lo), rune(rng.Hi)
		if r >= lo && r <= hi {
			return int((r-lo)/rune(rng.Stride)) % 10, true
		}
	}
	return 0, false
}
