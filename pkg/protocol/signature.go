package protocol

import (
	"strconv"
	"strings"
)

// Signature renders def in command syntax:
//
//	nec:<uint16 address>:<uint16 command>:<uint16 repeat?=1>
//
// The "_t" width decoration is dropped from type names and optional
// arguments show their default.
func Signature(def ProtocolDefinition) string {
	parts := make([]string, 0, len(def.Args)+1)
	parts = append(parts, def.Name)
	for _, arg := range def.Args {
		decl := displayType(arg.Type) + " " + arg.Name
		if arg.HasDefault {
			decl += "?=" + formatValue(arg.Default)
		}
		parts = append(parts, "<"+decl+">")
	}
	return strings.Join(parts, ":")
}

func displayType(t ArgType) string {
	s := strings.TrimSuffix(string(t.Scalar), "_t")
	if t.Array {
		s += arraySuffix
	}
	return s
}

// FormatValue renders a coerced value as a command token.
func FormatValue(v any) string { return formatValue(v) }

// formatValue quotes strings holding a delimiter so that ParseCommand reads
// them back as one token. Empty strings and lists render as "" so they are
// not mistaken for an unset value.
func formatValue(v any) string {
	items, ok := v.([]any)
	if !ok {
		return formatScalar(v, ",:")
	}
	if len(items) == 0 {
		return `""`
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = formatScalar(item, ",")
	}
	joined := strings.Join(parts, ",")
	if _, quoted := unquote(joined); quoted {
		return wrapQuotes(joined)
	}
	return quoteIfContains(joined, ":")
}

func formatScalar(v any, special string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if _, quoted := unquote(strings.TrimSpace(x)); x == "" || quoted {
			return wrapQuotes(x)
		}
		return quoteIfContains(x, special)
	case bool:
		return strconv.FormatBool(x)
	}
	if isNumber(v) {
		return formatNumber(v)
	}
	s, err := coerceString(v)
	if err != nil {
		return describeValue(v)
	}
	return s.(string)
}

func quoteIfContains(s, special string) string {
	if !strings.ContainsAny(s, special) {
		return s
	}
	return wrapQuotes(s)
}

func wrapQuotes(s string) string {
	q := `"`
	if strings.Contains(s, q) {
		q = "'"
	}
	return q + s + q
}
