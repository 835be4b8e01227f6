// Package sqlcheck screens caller-supplied values for SQL injection
// patterns. Dialect sanitization remains the enforcement layer; this is
// observability, so suspicious input is visible in logs before it ever
// reaches a statement.
package sqlcheck

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// Finding describes one value that matched an injection pattern.
type Finding struct {
	Column      string // column the value was supplied for
	Fingerprint string // libinjection fingerprint of the pattern
	Value       any
}

// CheckValue screens a single value. Only strings are checked; numbers,
// booleans and other types cannot carry injection patterns and return
// nil. Returns nil when the value is clean.
func CheckValue(column string, value any) *Finding {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if !isSQLi {
		return nil
	}
	return &Finding{
		Column:      column,
		Fingerprint: string(fingerprint),
		Value:       value,
	}
}

// CheckValues screens every value in a column map. Returns one Finding
// per suspicious value; empty when all values are clean.
func CheckValues(values map[string]any) []*Finding {
	var findings []*Finding
	for column, value := range values {
		if f := CheckValue(column, value); f != nil {
			findings = append(findings, f)
		}
	}
	return findings
}
