package errors

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// ValidateNodeID validates a tree node identifier.
//
// IDs travel through URLs (toggle endpoints), cache keys and file names, so
// the rules are conservative:
//   - No empty IDs
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "node id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "node id %q contains whitespace or control characters", id)
		}
	}

	for _, pattern := range []string{"/", "\\", ".."} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "node id %q contains invalid sequence %q", id, pattern)
		}
	}

	return nil
}

// ValidateHours checks that an hour quantity is a finite, non-negative number.
func ValidateHours(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number, got %v", field, v)
	}
	if v < 0 {
		return New(ErrCodeInvalidInput, "%s must be non-negative, got %v", field, v)
	}
	return nil
}

// sessionIDRegex matches the canonical textual form of a UUID.
var sessionIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateSessionID validates a viewer session identifier taken from a cookie.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if !sessionIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "malformed session id")
	}
	return nil
}

// ValidateHexColor validates a "#rgb" or "#rrggbb" color string.
func ValidateHexColor(c string) error {
	if !strings.HasPrefix(c, "#") || (len(c) != 4 && len(c) != 7) {
		return New(ErrCodeInvalidStyle, "color %q must be #rgb or #rrggbb", c)
	}
	for _, r := range c[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return New(ErrCodeInvalidStyle, "color %q contains non-hex digit %q", c, r)
		}
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
// Matching is case-sensitive; callers lower-case user input first.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "output format cannot be empty")
	}
	if !slices.Contains(allowed, format) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of: %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}
