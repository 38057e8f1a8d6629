package banking

import (
	"fmt"
	"strings"
)

// Date layouts accepted from the model.
const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// numberArg tolerates both float64 (JSON numbers) and integer-typed values.
func numberArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func intArg(args map[string]any, key string) (int, bool) {
	f, ok := numberArg(args, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	// Insert thousands separators into the integer part.
	dot := strings.Index(s, ".")
	intPart, frac := s[:dot], s[dot:]
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	var b strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := "$" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
