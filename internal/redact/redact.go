// Package redact provides utilities for redacting sensitive information from
// strings before they are logged. Error messages can carry connection
// strings, API keys, tokens, and file paths; everything that reaches a log
// line goes through here first.
package redact

import (
	"regexp"
)

// Constants for redaction placeholders
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
)

// Precompiled redaction patterns, applied in order.
var redactions = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	// Database connection strings with embedded credentials
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|mysql|db|database)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},
	// Password assignments
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},
	// API keys, tokens, secrets
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	// OpenAI-style secret keys
	{
		regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`),
		RedactedKeyPlaceholder,
	},
	// JWT tokens (three base64url segments)
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		"[REDACTED_JWT]",
	},
	// Filesystem paths
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
	// Email addresses
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
		"[REDACTED_EMAIL]",
	},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range redactions {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
