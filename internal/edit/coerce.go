package edit

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// number coerces a transport value to a finite float64. Strings are parsed
// after trimming; booleans, nulls, objects and non-finite values fail.
func number(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// str returns v as a trimmed string. Non-string values are not stringified.
func str(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// EscapeText escapes text for the drawtext option parser, where a bare colon
// separates parameters and a backslash escapes the next character. An
// existing \: pair is kept as one escaped colon, so colons are never escaped
// twice; any other backslash is doubled.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, `:\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s) && s[i+1] == ':':
			b.WriteString(`\:`)
			i++
		case c == '\\':
			b.WriteString(`\\`)
		case c == ':':
			b.WriteString(`\:`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
