package protocol

import "strings"

// QuotedSplit splits text on delim, ignoring delimiters inside single or
// double quoted runs. A backslash-escaped quote does not close a run.
//
//   - tokens are trimmed of surrounding whitespace
//   - a token that is exactly one quoted run loses its outer quotes
//   - consecutive delimiters produce empty tokens
//   - an empty text produces no tokens, and so does a trailing delimiter
//
// QuotedSplit(`a,"b,c",d`, ',') returns ["a", "b,c", "d"].
func QuotedSplit(text string, delim rune) []string {
	return splitTokens(text, delim, true)
}

// splitTokens is QuotedSplit with optional quote stripping. Raw tokens keep
// their quotes so that callers can tell a quoted empty string from a missing
// value.
func splitTokens(text string, delim rune, strip bool) []string {
	rs := []rune(text)
	tokens := []string{}
	for len(rs) > 0 {
		n := scanToken(rs, delim)
		tok := strings.TrimSpace(string(rs[:n]))
		if strip {
			tok = unquoteToken(tok)
		}
		tokens = append(tokens, tok)
		if n >= len(rs) {
			break
		}
		rs = rs[n+1:]
	}
	return tokens
}

// scanToken returns the length of the token at the start of rs: quoted runs
// are consumed whole, anything else one rune at a time up to delim.
func scanToken(rs []rune, delim rune) int {
	i := 0
	for i < len(rs) {
		if end, ok := scanQuoted(rs, i); ok {
			i = end
			continue
		}
		if rs[i] == delim {
			break
		}
		i++
	}
	return i
}

// scanQuoted tries to match optional whitespace, a quoted run and trailing
// whitespace starting at start. It returns the end offset of the match.
func scanQuoted(rs []rune, start int) (int, bool) {
	j := skipSpace(rs, start)
	if j >= len(rs) || !isQuote(rs[j]) {
		return 0, false
	}
	q := rs[j]
	for j++; j < len(rs); j++ {
		if rs[j] == '\\' && j+1 < len(rs) && rs[j+1] == q {
			j++
			continue
		}
		if rs[j] == q {
			return skipSpace(rs, j+1), true
		}
	}
	return 0, false
}

func skipSpace(rs []rune, i int) int {
	for i < len(rs) && (rs[i] == ' ' || rs[i] == '\t' || rs[i] == '\n' || rs[i] == '\r') {
		i++
	}
	return i
}

func isQuote(r rune) bool { return r == '"' || r == '\'' }

// unquote strips one layer of matching quotes from s when s is a single
// quoted run in its entirety. Escapes inside the run are kept verbatim.
func unquote(s string) (string, bool) {
	rs := []rune(s)
	if len(rs) < 2 || !isQuote(rs[0]) || rs[len(rs)-1] != rs[0] {
		return s, false
	}
	end, ok := scanQuoted(rs, 0)
	if !ok || end != len(rs) {
		return s, false
	}
	return string(rs[1 : len(rs)-1]), true
}

// unquoteToken trims s and strips one layer of quotes if present.
func unquoteToken(s string) string {
	s = strings.TrimSpace(s)
	if inner, ok := unquote(s); ok {
		return inner
	}
	return s
}
