package filter

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tickergrid/screener/internal/domain"
)

// Operator is a caller-facing comparison operator.
type Operator string

// Supported operators.
const (
	Greater        Operator = "greater"
	Less           Operator = "less"
	GreaterOrEqual Operator = "greater_or_equal"
	LessOrEqual    Operator = "less_or_equal"
	Equal          Operator = "equal"
	NotEqual       Operator = "not_equal"
	InRange        Operator = "in_range"
	NotInRange     Operator = "not_in_range"
	Crosses        Operator = "crosses"
	CrossesAbove   Operator = "crosses_above"
	CrossesBelow   Operator = "crosses_below"
	Match          Operator = "match"
)

// operators maps each operator to its scanner operation code.
// Most codes match the operator name; the inclusive comparisons and
// not_equal use the scanner's own spelling.
var operators = map[Operator]string{
	Greater:        "greater",
	Less:           "less",
	GreaterOrEqual: "egreater",
	LessOrEqual:    "eless",
	Equal:          "equal",
	NotEqual:       "nequal",
	InRange:        "in_range",
	NotInRange:     "not_in_range",
	Crosses:        "crosses",
	CrossesAbove:   "crosses_above",
	CrossesBelow:   "crosses_below",
	Match:          "match",
}

// operatorOrder fixes the enumeration order for error messages.
var operatorOrder = []Operator{
	Greater, Less, GreaterOrEqual, LessOrEqual, Equal, NotEqual,
	InRange, NotInRange, Crosses, CrossesAbove, CrossesBelow, Match,
}

// IsValid reports whether the operator is in the fixed operator table.
func (o Operator) IsValid() bool {
	_, ok := operators[o]
	return ok
}

// Code returns the scanner operation code for the operator.
func (o Operator) Code() string { return operators[o] }

// Names returns every valid operator name in declaration order.
func Names() []string {
	names := make([]string, len(operatorOrder))
	for i, o := range operatorOrder {
		names[i] = string(o)
	}
	return names
}

// Kind classifies the shape of a filter value.
type Kind int

// Value kinds.
const (
	Number Kind = iota
	Text
	Bool
	Range
	List
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "string"
	case Bool:
		return "boolean"
	case Range:
		return "range"
	case List:
		return "string list"
	}
	return "unknown"
}

// Value is a filter comparison value: a number, a string (scalar or
// sibling-field reference), a boolean, a [min, max] range, or a string list.
// The raw form is carried unchanged so it reaches the scanner verbatim.
type Value struct {
	kind Kind
	raw  any
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value { return Value{kind: Number, raw: n} }

// NewText creates a string value. A field name compares against that field.
func NewText(s string) Value { return Value{kind: Text, raw: s} }

// NewBool creates a boolean value.
func NewBool(b bool) Value { return Value{kind: Bool, raw: b} }

// NewRange creates a [min, max] range value.
func NewRange(min, max float64) Value {
	return Value{kind: Range, raw: []any{min, max}}
}

// NewList creates a string-list value for membership filters.
func NewList(items []string) Value {
	raw := make([]any, len(items))
	for i, s := range items {
		raw[i] = s
	}
	return Value{kind: List, raw: raw}
}

// ParseValue classifies a decoded JSON value.
func ParseValue(v any) (Value, error) {
	switch t := v.(type) {
	case float64:
		return NewNumber(t), nil
	case int:
		return NewNumber(float64(t)), nil
	case string:
		return NewText(t), nil
	case bool:
		return NewBool(t), nil
	case []any:
		return parseArrayValue(t)
	}
	return Value{}, fmt.Errorf("unsupported value type %s", jsonTypeName(v))
}

// parseArrayValue distinguishes a two-number range from a string list.
func parseArrayValue(arr []any) (Value, error) {
	if len(arr) == 0 {
		return Value{}, fmt.Errorf("array value must not be empty")
	}
	switch arr[0].(type) {
	case float64, int:
		if len(arr) != 2 {
			return Value{}, fmt.Errorf("range value must be [min, max], got %d elements", len(arr))
		}
		for _, e := range arr {
			switch e.(type) {
			case float64, int:
			default:
				return Value{}, fmt.Errorf("range value must contain numbers, got %s", jsonTypeName(e))
			}
		}
		return Value{kind: Range, raw: arr}, nil
	case string:
		for _, e := range arr {
			if _, ok := e.(string); !ok {
				return Value{}, fmt.Errorf("list value must contain strings, got %s", jsonTypeName(e))
			}
		}
		return Value{kind: List, raw: arr}, nil
	}
	return Value{}, fmt.Errorf("array value must contain numbers or strings, got %s", jsonTypeName(arr[0]))
}

// Kind returns the value classification.
func (v Value) Kind() Kind { return v.kind }

// Raw returns the wire form, passed through to the scanner unchanged.
func (v Value) Raw() any { return v.raw }

// MarshalJSON emits the raw wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw) //nolint:wrapcheck // raw is plain decoded JSON
}

// Filter is a single validated screening predicate.
type Filter struct {
	field string
	op    Operator
	value Value
}

// New validates and creates a Filter. The value shape must match the
// operator: range operators take a [min, max] pair or a string list,
// match takes a string or string list, comparisons take a scalar.
func New(field string, op Operator, value Value) (Filter, error) {
	if field == "" {
		return Filter{}, fmt.Errorf("filter field is required")
	}
	if !op.IsValid() {
		return Filter{}, unknownOperatorError(string(op))
	}

	switch op {
	case InRange, NotInRange:
		if value.kind != Range && value.kind != List {
			return Filter{}, fmt.Errorf(
				"operator %q expects a [min, max] range or string list, got %s", op, value.kind)
		}
	case Match:
		if value.kind != Text && value.kind != List {
			return Filter{}, fmt.Errorf(
				"operator %q expects a string or string list, got %s", op, value.kind)
		}
	default:
		if value.kind != Number && value.kind != Text && value.kind != Bool {
			return Filter{}, fmt.Errorf(
				"operator %q expects a number, string, or boolean, got %s", op, value.kind)
		}
	}

	return Filter{field: field, op: op, value: value}, nil
}

// Field returns the field name.
func (f Filter) Field() string { return f.field }

// Operator returns the caller-facing operator.
func (f Filter) Operator() Operator { return f.op }

// Value returns the comparison value.
func (f Filter) Value() Value { return f.value }

// MarshalJSON emits the canonical {field, operator, value} form used in
// cache-key serialization.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct { //nolint:wrapcheck // plain struct marshal
		Field    string `json:"field"`
		Operator string `json:"operator"`
		Value    any    `json:"value"`
	}{f.field, string(f.op), f.value.raw})
}

// ParseList validates a list of decoded JSON filters and converts each to a
// Filter. Fails fast on the first invalid entry, citing its index.
// Validation order per entry: structure, property presence (a value of 0 or
// false is present), operator, value shape.
func ParseList(raw []any) ([]Filter, error) {
	filters := make([]Filter, 0, len(raw))
	for i, rf := range raw {
		f, err := parseOne(rf)
		if err != nil {
			return nil, fmt.Errorf("%w at index %d: %w", domain.ErrInvalidFilter, i, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseOne(rf any) (Filter, error) {
	m, ok := rf.(map[string]any)
	if !ok {
		return Filter{}, fmt.Errorf(
			"expected object with {field, operator, value}, got %s", jsonTypeName(rf))
	}

	field, hasField := m["field"]
	op, hasOp := m["operator"]
	value, hasValue := m["value"]
	if !hasField || !hasOp || !hasValue {
		return Filter{}, fmt.Errorf(
			"missing required properties (field: %s, operator: %s, value: %s)",
			describeProperty(field, hasField),
			describeProperty(op, hasOp),
			describeProperty(value, hasValue))
	}

	fieldStr, ok := field.(string)
	if !ok {
		return Filter{}, fmt.Errorf("field must be a string, got %s", jsonTypeName(field))
	}
	opStr, ok := op.(string)
	if !ok {
		return Filter{}, fmt.Errorf("operator must be a string, got %s", jsonTypeName(op))
	}
	if !Operator(opStr).IsValid() {
		return Filter{}, unknownOperatorError(opStr)
	}

	val, err := ParseValue(value)
	if err != nil {
		return Filter{}, err
	}
	return New(fieldStr, Operator(opStr), val)
}

func unknownOperatorError(op string) error {
	return fmt.Errorf("unknown operator %q, valid operators: %s",
		op, strings.Join(Names(), ", "))
}

// describeProperty renders a property for missing-property errors,
// distinguishing absent keys from present falsy values like 0 and false.
func describeProperty(v any, present bool) string {
	if !present {
		return "missing"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// jsonTypeName names a decoded JSON value's type in user-facing errors.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, int:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
