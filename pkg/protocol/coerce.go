package protocol

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// Coerce applies the base coercion rule of t to a raw value and returns the
// canonical representation: int64 for signed integers, uint64 for unsigned
// ones, float64, bool, string, or []any for array types.
func Coerce(t ArgType, v any) (any, error) {
	if !t.Array {
		return coerceScalar(t.Scalar, v)
	}
	items := coerceList(v)
	out := make([]any, len(items))
	for i, item := range items {
		c, err := coerceScalar(t.Scalar, item)
		if err != nil {
			if te, ok := err.(*ArgumentTypeError); ok {
				te.Index = i
			}
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func coerceScalar(t ScalarType, v any) (any, error) {
	info, ok := scalarTypes[t]
	if !ok {
		return nil, typeError(t, v, "unknown type")
	}
	switch info.kind {
	case kindSigned, kindUnsigned:
		return coerceInteger(t, info, v)
	case kindFloat:
		return coerceFloat(v)
	case kindBool:
		return coerceBool(v)
	default:
		return coerceString(v)
	}
}

func typeError(t ScalarType, v any, format string, args ...any) *ArgumentTypeError {
	return &ArgumentTypeError{Type: string(t), Value: v, Reason: fmt.Sprintf(format, args...), Index: -1}
}

func coerceInteger(t ScalarType, info scalarInfo, v any) (any, error) {
	var n *big.Int
	switch x := v.(type) {
	case bool:
		return nil, typeError(t, v, "expected integer, got boolean")
	case string:
		s := strings.ToLower(unquoteToken(x))
		base := 10
		if strings.HasPrefix(s, "0x") {
			base = 16
			s = s[2:]
			if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
				return nil, typeError(t, v, "expected integer, but cannot parse %q as an integer", x)
			}
		}
		parsed, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, typeError(t, v, "expected integer, but cannot parse %q as an integer", x)
		}
		n = parsed
	case float32, float64:
		f, _ := toFloat64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return nil, typeError(t, v, "only integers with no fractional part are accepted")
		}
		n, _ = big.NewFloat(f).Int(nil)
	default:
		r, ok := toRat(v)
		if !ok {
			return nil, typeError(t, v, "expected integer, got %s", kindName(v))
		}
		n = r.Num()
	}
	if n.Cmp(info.min) < 0 || n.Cmp(info.max) > 0 {
		return nil, typeError(t, v, "value must be between %s and %s (inclusive)", info.min, info.max)
	}
	if info.kind == kindSigned {
		return n.Int64(), nil
	}
	return n.Uint64(), nil
}

func coerceFloat(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return nil, typeError(TypeFloat, v, "expected float, got boolean")
	case string:
		f, err := strconv.ParseFloat(unquoteToken(x), 64)
		if err != nil {
			return nil, typeError(TypeFloat, v, "expected float, but cannot parse %q as a number", x)
		}
		return f, nil
	}
	if f, ok := toFloat64(v); ok {
		return f, nil
	}
	return nil, typeError(TypeFloat, v, "expected float, got %s", kindName(v))
}

func coerceBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(unquoteToken(x)) {
		case "1", "true", "yes", "on", "enable":
			return true, nil
		case "0", "false", "no", "off", "disable":
			return false, nil
		}
		return nil, typeError(TypeBool, v, "expected boolean, %q is ambiguous", x)
	}
	if r, ok := toRat(v); ok {
		return r.Sign() != 0, nil
	}
	return nil, typeError(TypeBool, v, "expected boolean, got %s", kindName(v))
}

func coerceString(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, typeError(TypeString, v, "string value is null")
	case bool:
		return nil, typeError(TypeString, v, "auto-converted this value to boolean, please wrap the value in quotes")
	case string:
		if inner, ok := unquote(strings.TrimSpace(x)); ok {
			return inner, nil
		}
		return x, nil
	}
	if isNumber(v) {
		return formatNumber(v), nil
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return nil, typeError(TypeString, v, "string value cannot be a mapping or list")
	}
	return fmt.Sprint(v), nil
}

// coerceList normalises a raw array value: lists pass through, null is the
// empty list, strings are split on commas and any other scalar becomes a
// one-element list. A string wrapped in quotes as a whole loses them before
// the split; the elements keep theirs for the element coercion.
func coerceList(v any) []any {
	switch x := v.(type) {
	case nil:
		return []any{}
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case string:
		tokens := splitTokens(unquoteToken(x), ',', false)
		out := make([]any, len(tokens))
		for i, s := range tokens {
			out[i] = s
		}
		return out
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

func kindName(v any) string {
	if v == nil {
		return "null"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map:
		return "mapping"
	case reflect.Slice, reflect.Array:
		return "list"
	}
	return fmt.Sprintf("%T", v)
}
