package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Size limits
const (
	MaxBodySize     = 1 * 1024 * 1024 // 1MB - maximum request body
	MaxIDLength     = 128
	MaxPatternBytes = 256
)

// ValidateID checks an id taken from a URL path or query. Ids of hand
// edited settings may contain any printable text, so only length and
// control characters are checked.
func ValidateID(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%s exceeds maximum length %d", field, MaxIDLength)
	}
	if !utf8.ValidString(id) || strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

// ValidatePattern checks a name filter before it reaches the glob matcher
func ValidatePattern(pattern string) error {
	if len(pattern) > MaxPatternBytes {
		return fmt.Errorf("pattern exceeds maximum length %d", MaxPatternBytes)
	}
	if !utf8.ValidString(pattern) {
		return fmt.Errorf("pattern is not valid UTF-8")
	}
	return nil
}

// ValidateSize rejects terminal dimensions a PTY cannot take
func ValidateSize(cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols > 0xFFFF || rows > 0xFFFF {
		return fmt.Errorf("invalid terminal size %dx%d", cols, rows)
	}
	return nil
}
