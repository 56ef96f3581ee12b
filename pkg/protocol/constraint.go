package protocol

import (
	"fmt"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"
)

// ConstraintKind is the catalog name of an extra constraint.
type ConstraintKind string

const (
	ConstraintRange            ConstraintKind = "Range"
	ConstraintAny              ConstraintKind = "Any"
	ConstraintLength           ConstraintKind = "Length"
	ConstraintAlternatingSigns ConstraintKind = "alternating_signs"
	ConstraintBinaryString     ConstraintKind = "binary_string"
	ConstraintPronto           ConstraintKind = "proto_pronto"
)

var constraintKinds = []ConstraintKind{
	ConstraintRange,
	ConstraintAny,
	ConstraintLength,
	ConstraintPronto,
	ConstraintAlternatingSigns,
	ConstraintBinaryString,
}

// ConstraintNames returns the names accepted in an argument's schema block.
func ConstraintNames() []string {
	out := make([]string, len(constraintKinds))
	for i, k := range constraintKinds {
		out[i] = string(k)
	}
	return out
}

// Constraint is the closed set of extra constraint variants. Each variant
// carries its already-checked parameters.
type Constraint interface {
	Kind() ConstraintKind
	isConstraint()
}

// RangeConstraint bounds a numeric value. A nil bound is open.
type RangeConstraint struct {
	Min, Max                 *big.Rat
	MinIncluded, MaxIncluded bool
	Msg                      string
}

// OneOfConstraint requires the value to equal one of Values.
type OneOfConstraint struct {
	Values []any
	Msg    string
}

// LengthConstraint bounds the rune count of a string or the element count
// of a list. A nil bound is open.
type LengthConstraint struct {
	Min, Max *int
	Msg      string
}

// AlternatingSignsConstraint requires consecutive list elements to differ
// in sign; zero counts as non-negative.
type AlternatingSignsConstraint struct{}

// BinaryStringConstraint requires a string made only of '0' and '1'.
type BinaryStringConstraint struct{}

// ProntoConstraint reserves the name for Pronto hex validation. It accepts
// any value unchanged.
type ProntoConstraint struct{}

func (RangeConstraint) Kind() ConstraintKind            { return ConstraintRange }
func (OneOfConstraint) Kind() ConstraintKind            { return ConstraintAny }
func (LengthConstraint) Kind() ConstraintKind           { return ConstraintLength }
func (AlternatingSignsConstraint) Kind() ConstraintKind { return ConstraintAlternatingSigns }
func (BinaryStringConstraint) Kind() ConstraintKind     { return ConstraintBinaryString }
func (ProntoConstraint) Kind() ConstraintKind           { return ConstraintPronto }

func (RangeConstraint) isConstraint()            {}
func (OneOfConstraint) isConstraint()            {}
func (LengthConstraint) isConstraint()           {}
func (AlternatingSignsConstraint) isConstraint() {}
func (BinaryStringConstraint) isConstraint()     {}
func (ProntoConstraint) isConstraint()           {}

// ParseConstraint checks a declared constraint's parameters and returns the
// typed variant.
func ParseConstraint(spec ConstraintSpec) (Constraint, error) {
	switch ConstraintKind(spec.Name) {
	case ConstraintRange:
		return parseRange(spec)
	case ConstraintAny:
		return parseOneOf(spec)
	case ConstraintLength:
		return parseLength(spec)
	case ConstraintAlternatingSigns:
		return parameterless(spec, AlternatingSignsConstraint{})
	case ConstraintBinaryString:
		return parameterless(spec, BinaryStringConstraint{})
	case ConstraintPronto:
		return parameterless(spec, ProntoConstraint{})
	}
	return nil, fmt.Errorf("unknown constraint %q, expected one of: %s", spec.Name, strings.Join(ConstraintNames(), ", "))
}

func parameterless(spec ConstraintSpec, c Constraint) (Constraint, error) {
	if spec.Args != nil || spec.Kwargs != nil {
		return nil, fmt.Errorf("%s takes no parameters", spec.Name)
	}
	return c, nil
}

// bindParams maps positional and keyword parameters onto names, in the
// style of a call with keyword arguments.
func bindParams(spec ConstraintSpec, names []string) (map[string]any, error) {
	if len(spec.Args) > len(names) {
		return nil, fmt.Errorf("%s takes at most %d positional parameters, got %d", spec.Name, len(names), len(spec.Args))
	}
	bound := make(map[string]any, len(names))
	for i, v := range spec.Args {
		bound[names[i]] = v
	}
	keys := make([]string, 0, len(spec.Kwargs))
	for k := range spec.Kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !contains(names, k) {
			return nil, fmt.Errorf("%s: unknown parameter %q", spec.Name, k)
		}
		if _, dup := bound[k]; dup {
			return nil, fmt.Errorf("%s: got multiple values for parameter %q", spec.Name, k)
		}
		bound[k] = spec.Kwargs[k]
	}
	return bound, nil
}

func contains(names []string, s string) bool {
	for _, n := range names {
		if n == s {
			return true
		}
	}
	return false
}

func parseRange(spec ConstraintSpec) (Constraint, error) {
	p, err := bindParams(spec, []string{"min", "max", "min_included", "max_included", "msg"})
	if err != nil {
		return nil, err
	}
	c := RangeConstraint{MinIncluded: true, MaxIncluded: true}
	if c.Min, err = optionalRat(spec.Name, "min", p["min"]); err != nil {
		return nil, err
	}
	if c.Max, err = optionalRat(spec.Name, "max", p["max"]); err != nil {
		return nil, err
	}
	if c.MinIncluded, err = optionalBool(spec.Name, "min_included", p["min_included"], true); err != nil {
		return nil, err
	}
	if c.MaxIncluded, err = optionalBool(spec.Name, "max_included", p["max_included"], true); err != nil {
		return nil, err
	}
	if c.Msg, err = optionalString(spec.Name, "msg", p["msg"]); err != nil {
		return nil, err
	}
	if c.Min != nil && c.Max != nil && c.Min.Cmp(c.Max) > 0 {
		return nil, fmt.Errorf("%s: min %s is greater than max %s", spec.Name, ratString(c.Min), ratString(c.Max))
	}
	return c, nil
}

func parseOneOf(spec ConstraintSpec) (Constraint, error) {
	p, err := bindParams(ConstraintSpec{Name: spec.Name, Kwargs: spec.Kwargs}, []string{"msg"})
	if err != nil {
		return nil, err
	}
	if len(spec.Args) == 0 {
		return nil, fmt.Errorf("%s requires at least one allowed value", spec.Name)
	}
	for i, v := range spec.Args {
		switch reflect.ValueOf(v).Kind() {
		case reflect.Map, reflect.Slice, reflect.Array:
			return nil, fmt.Errorf("%s: allowed value %d must be a scalar", spec.Name, i)
		}
	}
	c := OneOfConstraint{Values: append([]any(nil), spec.Args...)}
	if c.Msg, err = optionalString(spec.Name, "msg", p["msg"]); err != nil {
		return nil, err
	}
	return c, nil
}

func parseLength(spec ConstraintSpec) (Constraint, error) {
	p, err := bindParams(spec, []string{"min", "max", "msg"})
	if err != nil {
		return nil, err
	}
	var c LengthConstraint
	if c.Min, err = optionalLength(spec.Name, "min", p["min"]); err != nil {
		return nil, err
	}
	if c.Max, err = optionalLength(spec.Name, "max", p["max"]); err != nil {
		return nil, err
	}
	if c.Msg, err = optionalString(spec.Name, "msg", p["msg"]); err != nil {
		return nil, err
	}
	if c.Min != nil && c.Max != nil && *c.Min > *c.Max {
		return nil, fmt.Errorf("%s: min %d is greater than max %d", spec.Name, *c.Min, *c.Max)
	}
	return c, nil
}

func optionalRat(constraint, name string, v any) (*big.Rat, error) {
	if v == nil {
		return nil, nil
	}
	r, ok := toRat(v)
	if !ok {
		return nil, fmt.Errorf("%s: %s must be a number, got %s", constraint, name, describeValue(v))
	}
	return r, nil
}

func optionalLength(constraint, name string, v any) (*int, error) {
	if v == nil {
		return nil, nil
	}
	r, ok := toRat(v)
	if !ok || !r.IsInt() || r.Sign() < 0 || !r.Num().IsInt64() {
		return nil, fmt.Errorf("%s: %s must be a non-negative integer, got %s", constraint, name, describeValue(v))
	}
	n := int(r.Num().Int64())
	return &n, nil
}

func optionalBool(constraint, name string, v any, def bool) (bool, error) {
	if v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%s: %s must be a boolean, got %s", constraint, name, describeValue(v))
	}
	return b, nil
}

func optionalString(constraint, name string, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: %s must be a string, got %s", constraint, name, describeValue(v))
	}
	return s, nil
}

// check returns a failure message, or "" when v is in range.
func (c RangeConstraint) check(v any) string {
	r, ok := toRat(v)
	if !ok {
		return "invalid value or type (must be a finite number)"
	}
	msg := ""
	switch {
	case c.Min != nil && c.MinIncluded && r.Cmp(c.Min) < 0:
		msg = "value must be at least " + ratString(c.Min)
	case c.Min != nil && !c.MinIncluded && r.Cmp(c.Min) <= 0:
		msg = "value must be higher than " + ratString(c.Min)
	case c.Max != nil && c.MaxIncluded && r.Cmp(c.Max) > 0:
		msg = "value must be at most " + ratString(c.Max)
	case c.Max != nil && !c.MaxIncluded && r.Cmp(c.Max) >= 0:
		msg = "value must be lower than " + ratString(c.Max)
	}
	if msg != "" && c.Msg != "" {
		return c.Msg
	}
	return msg
}

func (c OneOfConstraint) check(v any) string {
	for _, allowed := range c.Values {
		if valuesEqual(v, allowed) {
			return ""
		}
	}
	if c.Msg != "" {
		return c.Msg
	}
	parts := make([]string, len(c.Values))
	for i, allowed := range c.Values {
		parts[i] = formatValue(allowed)
	}
	return "value must be one of: " + strings.Join(parts, ", ")
}

func (c LengthConstraint) check(v any) string {
	var n int
	switch x := v.(type) {
	case string:
		n = utf8.RuneCountInString(x)
	case []any:
		n = len(x)
	default:
		return "value has no length"
	}
	msg := ""
	switch {
	case c.Min != nil && n < *c.Min:
		msg = fmt.Sprintf("length of value must be at least %d", *c.Min)
	case c.Max != nil && n > *c.Max:
		msg = fmt.Sprintf("length of value must be at most %d", *c.Max)
	}
	if msg != "" && c.Msg != "" {
		return c.Msg
	}
	return msg
}

func (AlternatingSignsConstraint) check(v any) error {
	items, ok := v.([]any)
	if !ok {
		return constraintError(ConstraintAlternatingSigns, "expected a list of numbers", -1)
	}
	lastNegative := false
	for i, item := range items {
		r, ok := toRat(item)
		if !ok {
			return constraintError(ConstraintAlternatingSigns, "expected a number", i)
		}
		negative := r.Sign() < 0
		if i > 0 && negative == lastNegative {
			return constraintError(ConstraintAlternatingSigns,
				fmt.Sprintf("values must alternate between being positive and negative, see index %d and %d", i-1, i), i)
		}
		lastNegative = negative
	}
	return nil
}

func (BinaryStringConstraint) check(v any) (any, error) {
	s, err := coerceString(v)
	if err != nil {
		return nil, err
	}
	for _, ch := range s.(string) {
		if ch != '0' && ch != '1' {
			return nil, constraintError(ConstraintBinaryString,
				fmt.Sprintf("string must be all binary digits, but got '%c'", ch), -1)
		}
	}
	return s, nil
}

func constraintError(kind ConstraintKind, msg string, index int) *ArgumentConstraintError {
	return &ArgumentConstraintError{Constraint: string(kind), Message: msg, Index: index}
}

// valuesEqual compares a coerced value with a catalog literal. Numbers
// compare by value regardless of their Go type.
func valuesEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		ra, okA := toRat(a)
		rb, okB := toRat(b)
		return okA && okB && ra.Cmp(rb) == 0
	}
	return reflect.DeepEqual(a, b)
}
