package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength caps URL paths in log lines
	MaxPathLength = 500
	// MaxUserIDLength caps user ids in log lines; real ids are 36-char UUIDs
	MaxUserIDLength = 128
	// MaxErrorMessageLength caps error messages in log lines
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength is the fallback cap for everything else
	MaxGeneralStringLength = 2000
)

// SanitizePath prepares a URL path for logging: strips control
// characters, repairs invalid UTF-8, and truncates.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeString strips control characters (keeping space, tab, newline
// and carriage return), repairs invalid UTF-8, and truncates to
// maxLength with an ellipsis. A non-positive maxLength falls back to
// MaxGeneralStringLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}

	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			builder.WriteRune(r)
		}
	}
	s = builder.String()

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

// SanitizeError prepares an error message for logging. Errors can embed
// request-supplied text, malformed id errors in particular.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeUserID prepares a request-supplied user id for logging.
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}
