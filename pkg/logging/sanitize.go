// Package logging contains helpers for logging statements and
// connection details without leaking credentials or flooding logs.
package logging

import "regexp"

const (
	// MaxQueryLogLength is the maximum length of a statement to log.
	MaxQueryLogLength = 200
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

var (
	// Matches password=xxx, pwd=xxx, pass=xxx up to the next delimiter.
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Matches user:pass@host credentials in URL-style connection strings.
	connStringPattern = regexp.MustCompile(`://[^:/]+:[^@]+@[^/\s]+`)
)

// RedactConnectionString removes credentials from a connection string.
// Use this before logging any connection string.
func RedactConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	redacted := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(redacted, "://"+RedactedText+"@"+RedactedText)
}

// TruncateQuery shortens a statement for logging. Statement text can
// embed caller-supplied literals, so logs keep only a prefix.
func TruncateQuery(query string) string {
	if len(query) > MaxQueryLogLength {
		return query[:MaxQueryLogLength] + "..."
	}
	return query
}
