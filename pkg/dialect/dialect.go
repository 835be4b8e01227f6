package dialect

import (
	"fmt"
	"strings"
	"time"

	"github.com/bridgeline-data/sqlbridge/pkg/apperrors"
)

// Kind identifies a supported SQL dialect. It is fixed at client
// construction time and drives every formatting and pagination decision.
type Kind string

const (
	KindSQLServer Kind = "sqlserver"
	KindMySQL     Kind = "mysql"
)

// SelectRequest carries the pre-validated pieces of a SELECT statement.
// Fields are already sanitized, Where is a compiled predicate fragment
// (empty means no WHERE clause), and OrderBy is a full "ORDER BY ..."
// clause supplied verbatim by the caller.
type SelectRequest struct {
	Table      string
	Fields     []string
	Where      string
	OrderBy    string
	Start      *int
	MaxResults *int
}

// FieldList renders the field list, defaulting to * when none was given.
func (r SelectRequest) FieldList() string {
	if len(r.Fields) == 0 {
		return "*"
	}
	return strings.Join(r.Fields, ", ")
}

// InsertPlan is the rendered insert statement plus a flag telling the
// caller whether the inserted row must be fetched with a follow-up
// SELECT by primary key (dialects without an inline output clause).
type InsertPlan struct {
	Statement  string
	NeedsFetch bool
}

// Dialect groups every dialect-dependent decision behind one strategy:
// introspection query text, primary-key detection, literal and timestamp
// formatting, string sanitization, and statement rendering. Adding a
// dialect means adding one variant, not touching call sites.
type Dialect interface {
	Kind() Kind

	// TableNamesQuery returns the introspection query whose first result
	// column lists the base table names of the connected database.
	TableNamesQuery() string

	// ColumnsQuery returns the column-introspection query for one table.
	// Result columns are aliased to the canonical names column_name,
	// data_type, max_length, is_nullable and key_marker.
	ColumnsQuery(table string) string

	// IsPrimaryKeyMarker reports whether a key_marker value from the
	// columns query flags the column as part of the primary key.
	IsPrimaryKeyMarker(marker string) bool

	// Sanitize prepares a raw string for embedding in a quoted literal.
	// This is defense-in-depth escaping, not a substitute for
	// parameterized queries.
	Sanitize(s string) string

	FormatTimestamp(t time.Time) string
	FormatLiteral(v any) string

	RenderSelect(req SelectRequest) (string, error)
	RenderInsert(table string, columns, literals []string) InsertPlan
	RenderUpdate(table string, assignments []string, where string) string
	RenderDelete(table string, where string) string
	RenderTruncate(table string) string
}

// ForKind returns the dialect variant for a kind.
func ForKind(k Kind) (Dialect, error) {
	switch k {
	case KindSQLServer:
		return SQLServer{}, nil
	case KindMySQL:
		return MySQL{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported dialect %q", apperrors.ErrInvalidArgument, k)
	}
}

// hasExtendedChars reports whether s contains any byte outside the
// printable ASCII range. Such strings need a national-character literal
// on dialects that distinguish the two.
func hasExtendedChars(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return true
		}
	}
	return false
}
