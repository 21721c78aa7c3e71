package form

import "strings"

// SanitizeBill keeps the digits and the first decimal point after a digit and
// drops everything else, so "Rs. 15,000/=" and "15,000 LKR" both become
// "15000". Points before the first digit belong to a currency prefix.
func SanitizeBill(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	seenDigit, seenPoint := false, false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '.' && seenDigit && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return b.String()
}
