package util

import "strings"

// SanitizeName reduces s to the character set remote resource display names
// accept: lowercase letters, digits and dashes.
func SanitizeName(s string) string {
	s = strings.ToLower(s)

	var builder strings.Builder
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9', r == '-':
			builder.WriteRune(r)
		case r == ' ', r == '_', r == '.':
			builder.WriteRune('-')
		}
	}

	return builder.String()
}
