package registry

import (
	"fmt"
	"strings"
	"unicode"
)

const maxIDLen = 128

// normalizeID validates a service identifier. Identifiers double as unit and
// Windows service names, so '@' and '$' are allowed in addition to the usual
// separators.
func normalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", fmt.Errorf("service id must not be empty")
	}
	if len(id) > maxIDLen {
		return "", fmt.Errorf("service id %q is too long (max %d characters)", id, maxIDLen)
	}
	for _, r := range id {
		if isAllowedIDRune(r) {
			continue
		}
		return "", fmt.Errorf("service id %q contains invalid character %q (allowed: letters, digits, '.', '-', '_', '@', '$')", id, r)
	}
	return id, nil
}

func isAllowedIDRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '-', '_', '.', '@', '$':
		return true
	default:
		return false
	}
}
