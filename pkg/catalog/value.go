package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueType is the declared type of a setting.
type ValueType string

const (
	// TypeBoolean is a true/false preference
	TypeBoolean ValueType = "boolean"
	// TypeNumber is an integer or decimal preference
	TypeNumber ValueType = "number"
	// TypeString is a free-form string preference
	TypeString ValueType = "string"
)

// Value is a tagged union holding exactly one of a boolean, a number or a string.
// The zero Value is invalid and reports an empty Type.
type Value struct {
	kind ValueType
	b    bool
	n    float64
	s    string
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: TypeBoolean, b: b}
}

// Number returns a numeric Value.
func Number(n float64) Value {
	return Value{kind: TypeNumber, n: n}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: TypeString, s: s}
}

// ValueOf converts a decoded JSON or YAML scalar into a Value.
// Maps, slices and nil are rejected.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		if !x.IsValid() {
			return Value{}, fmt.Errorf("invalid value")
		}
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", x, err)
		}
		return finite(f)
	case nil:
		return Value{}, fmt.Errorf("null is not a boolean, number or string")
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

// FiniteNumber returns Number(n), or ErrNonFinite for NaN and infinities,
// which have no user.js literal.
func FiniteNumber(n float64) (Value, error) {
	return finite(n)
}

func finite(n float64) (Value, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}, fmt.Errorf("%w: %s", ErrNonFinite, formatNumber(n))
	}
	return Number(n), nil
}

// Check reports whether the value can be rendered as a literal: it must hold
// something, and numbers must be finite.
func (v Value) Check() error {
	if !v.IsValid() {
		return fmt.Errorf("value is empty")
	}
	if v.kind == TypeNumber && (math.IsNaN(v.n) || math.IsInf(v.n, 0)) {
		return fmt.Errorf("%w: %s", ErrNonFinite, formatNumber(v.n))
	}
	return nil
}

// Type returns the kind held by the value.
func (v Value) Type() ValueType {
	return v.kind
}

// IsValid reports whether the value holds anything.
func (v Value) IsValid() bool {
	return v.kind != ""
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == TypeBoolean
}

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == TypeNumber
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == TypeString
}

// Interface returns the value as a plain Go scalar (bool, float64 or string).
func (v Value) Interface() any {
	switch v.kind {
	case TypeBoolean:
		return v.b
	case TypeNumber:
		return v.n
	case TypeString:
		return v.s
	}
	return nil
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case TypeBoolean:
		return v.b == o.b
	case TypeNumber:
		return v.n == o.n
	case TypeString:
		return v.s == o.s
	}
	return true
}

// String renders the value for humans: numbers in canonical form, strings unquoted.
func (v Value) String() string {
	switch v.kind {
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeNumber:
		return formatNumber(v.n)
	case TypeString:
		return v.s
	}
	return "<invalid>"
}

// Literal renders the value as a user.js literal. Strings are quoted with
// QuoteString. Writers call Check first; a non-finite number renders as NaN
// or Inf, never as a substitute value.
func (v Value) Literal() string {
	switch v.kind {
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	case TypeNumber:
		return formatNumber(v.n)
	case TypeString:
		return QuoteString(v.s)
	}
	return "null"
}

// QuoteString wraps s in double quotes, escaping " and \ with a leading
// backslash. Line breaks become \n and \r so every literal stays on one line.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatNumber renders n in canonical decimal form. Non-finite numbers come
// out as NaN, +Inf or -Inf, which Check rejects before any literal is written.
func formatNumber(n float64) string {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// MarshalJSON encodes the value as a bare JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid value")
	}
	if v.kind == TypeNumber {
		if math.IsInf(v.n, 0) || math.IsNaN(v.n) {
			return nil, fmt.Errorf("cannot marshal non-finite number")
		}
		return []byte(formatNumber(v.n)), nil
	}
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a bare JSON scalar.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes the value as a YAML scalar.
func (v Value) MarshalYAML() (any, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid value")
	}
	return v.Interface(), nil
}

// UnmarshalYAML decodes a YAML scalar node.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = parsed
	return nil
}
