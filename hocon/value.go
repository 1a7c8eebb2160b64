// FILE: lixenwraith/config/hocon/value.go
package hocon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// literal converts a literal value token into its typed value.
func literal(tok Token) (any, error) {
	switch tok.Type {
	case TokenNumeric:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: integer %q: %w", ErrInvalidValue, tok.Value, err)
		}
		return n, nil

	case TokenDecimal:
		d, err := decimal.NewFromString(tok.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: decimal %q: %w", ErrInvalidValue, tok.Value, err)
		}
		return d, nil

	case TokenDouble:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: number %q: %w", ErrInvalidValue, tok.Value, err)
		}
		return decimal.NewFromFloat(f), nil

	case TokenBoolean:
		return ParseBool(tok.Value), nil

	case TokenString:
		return strings.ReplaceAll(tok.Value, `""`, `"`), nil

	default:
		return tok.Value, nil
	}
}

// ParseBool reports whether s is one of the true literals: on, true, yes or
// enabled, compared case-insensitively. Everything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "enabled":
		return true
	default:
		return false
	}
}

// FormatValue renders a value the way the writer emits it.
func FormatValue(value any) string {
	var b strings.Builder
	writeValue(&b, value)
	return b.String()
}

func writeValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case []any:
		// An object copied into a list by substitution has no list syntax and
		// carries no values of its own, so it is left out.
		b.WriteByte('[')
		n := 0
		for _, item := range v {
			if IsNode(item) {
				continue
			}
			if n > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item)
			n++
		}
		b.WriteByte(']')
	case []string:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, item)
		}
		b.WriteByte(']')
	case string:
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case decimal.Decimal:
		// Integral decimals keep a fraction so they read back as decimals.
		s := v.String()
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		b.WriteString(s)
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	default:
		fmt.Fprintf(b, "%v", v)
	}
}
