// Package executor defines the single I/O seam between the statement
// synthesis core and a physical database, plus a registry of driver
// backed implementations. The core hands finished statement text to a
// QueryExecutor and returns its tabular result unmodified.
package executor

import "context"

// QueryExecutor executes one statement against a database.
// Implementations own their connection lifecycle and pooling and are
// safe for concurrent callers. Failures are surfaced verbatim; the
// core never interprets, wraps semantically, or retries them.
type QueryExecutor interface {
	// Execute runs a statement and returns its tabular result. For
	// statements producing no rows the result carries only the
	// rows-affected count.
	Execute(ctx context.Context, statement string) (*Result, error)

	// Close releases the underlying connection pool.
	Close() error
}

// Result holds the raw tabular outcome of one statement.
type Result struct {
	Columns      []string         `json:"columns,omitempty"`
	Rows         []map[string]any `json:"rows,omitempty"`
	RowCount     int              `json:"row_count"`
	RowsAffected int64            `json:"rows_affected"`
}

// Empty returns a result with no rows and no columns.
func Empty() *Result {
	return &Result{Rows: []map[string]any{}}
}
