// Package redact scrubs sensitive fragments from strings before they are
// logged: connection strings, credentials, JWT tokens, and email
// addresses. Error text from the database driver or the auth layer can
// carry any of these, so everything destined for a log line goes through
// Error or String first.
package redact

import "regexp"

// Placeholder inserted wherever a sensitive fragment was found.
const Placeholder = "[REDACTED]"

var patterns = []*regexp.Regexp{
	// Connection strings with inline credentials
	regexp.MustCompile(`(?i)(postgres|postgresql|mysql|redis|amqp)://[^@\s]+@`),
	// password=..., secret:..., token = ... style assignments
	regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key)['"]?\s*[:=]\s*['"]?[^'"&\s]{3,}`),
	// Three-part base64url JWT tokens
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
	// Email addresses
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
}

// String returns s with all recognized sensitive fragments replaced by
// the placeholder.
func String(s string) string {
	for _, p := range patterns {
		s = p.ReplaceAllString(s, Placeholder)
	}
	return s
}

// Error returns the redacted message of err, or an empty string for a
// nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
