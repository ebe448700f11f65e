package monitor

import (
	"strconv"
	"strings"
)

// FormatAmount renders a token amount for humans: fixed 10-digit precision
// to hide floating point noise, trailing zeros stripped, and the integer
// part grouped with spaces every three digits. The decimal part is never
// grouped.
func FormatAmount(v float64) string {
	if v == 0 {
		return "0"
	}

	s := strconv.FormatFloat(v, 'f', 10, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, decPart, hasDec := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(intPart[i])
	}
	if hasDec && decPart != "" {
		b.WriteByte('.')
		b.WriteString(decPart)
	}
	return b.String()
}
