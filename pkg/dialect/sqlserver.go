package dialect

import (
	"fmt"
	"strings"
	"time"

	"github.com/bridgeline-data/sqlbridge/pkg/apperrors"
)

// sqlServerTimestampLayout is part of the wire contract with existing
// stored procedures and tooling; it must not change.
const sqlServerTimestampLayout = "01/02/2006 03:04:05.0000000 PM"

// rowNumberAlias names the ranking column used for offset pagination.
const rowNumberAlias = "__row_num__"

// SQLServer renders Transact-SQL. Pagination uses a ROW_NUMBER() window
// because the target servers predate OFFSET/FETCH.
type SQLServer struct{}

func (SQLServer) Kind() Kind { return KindSQLServer }

func (SQLServer) TableNamesQuery() string {
	return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"
}

func (d SQLServer) ColumnsQuery(table string) string {
	return fmt.Sprintf(`SELECT c.COLUMN_NAME AS column_name, c.DATA_TYPE AS data_type, c.CHARACTER_MAXIMUM_LENGTH AS max_length, c.IS_NULLABLE AS is_nullable, k.CONSTRAINT_NAME AS key_marker FROM INFORMATION_SCHEMA.COLUMNS c LEFT JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k ON k.TABLE_NAME = c.TABLE_NAME AND k.COLUMN_NAME = c.COLUMN_NAME WHERE c.TABLE_NAME = '%s' ORDER BY c.ORDINAL_POSITION`, d.Sanitize(table))
}

// IsPrimaryKeyMarker matches the PK_* constraint naming convention.
// KEY_COLUMN_USAGE also lists foreign and unique constraints, which the
// prefix check filters out.
func (SQLServer) IsPrimaryKeyMarker(marker string) bool {
	return strings.HasPrefix(marker, "PK")
}

// Sanitize strips raw control bytes (except CR/LF), removes SQL comment
// sequences until none remain, then doubles embedded single quotes.
func (SQLServer) Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 && c != '\r' && c != '\n' {
			continue
		}
		b.WriteByte(c)
	}
	s = b.String()

	// Removal can splice new sequences together, so repeat to a fixpoint.
	for changed := true; changed; {
		changed = false
		for _, seq := range []string{"--", "/*", "*/"} {
			if strings.Contains(s, seq) {
				s = strings.ReplaceAll(s, seq, "")
				changed = true
			}
		}
	}

	return strings.ReplaceAll(s, "'", "''")
}

func (SQLServer) FormatTimestamp(t time.Time) string {
	return t.Format(sqlServerTimestampLayout)
}

func (d SQLServer) FormatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return "'" + d.FormatTimestamp(x) + "'"
	case string:
		if hasExtendedChars(x) {
			return "N'" + d.Sanitize(x) + "'"
		}
		return "'" + d.Sanitize(x) + "'"
	default:
		return "'" + d.Sanitize(fmt.Sprint(v)) + "'"
	}
}

func (d SQLServer) RenderSelect(req SelectRequest) (string, error) {
	fields := req.FieldList()

	if req.Start != nil {
		if strings.TrimSpace(req.OrderBy) == "" {
			return "", apperrors.ErrMissingOrderBy
		}

		var inner strings.Builder
		fmt.Fprintf(&inner, "SELECT %s, ROW_NUMBER() OVER (%s) AS %s FROM %s",
			fields, req.OrderBy, rowNumberAlias, req.Table)
		if req.Where != "" {
			inner.WriteString(" WHERE " + req.Where)
		}

		// A zero offset keeps a strict lower bound; nonzero offsets are
		// inclusive. Both match the row numbering the callers expect.
		lower := ">="
		if *req.Start == 0 {
			lower = ">"
		}
		bounds := fmt.Sprintf("%s %s %d", rowNumberAlias, lower, *req.Start)
		if req.MaxResults != nil {
			bounds += fmt.Sprintf(" AND %s <= %d", rowNumberAlias, *req.Start+*req.MaxResults)
		}

		return fmt.Sprintf("SELECT * FROM (%s) AS __paged__ WHERE %s ORDER BY %s",
			inner.String(), bounds, rowNumberAlias), nil
	}

	var sb strings.Builder
	if req.MaxResults != nil {
		fmt.Fprintf(&sb, "SELECT TOP (%d) %s FROM %s", *req.MaxResults, fields, req.Table)
	} else {
		fmt.Fprintf(&sb, "SELECT %s FROM %s", fields, req.Table)
	}
	if req.Where != "" {
		sb.WriteString(" WHERE " + req.Where)
	}
	if req.OrderBy != "" {
		sb.WriteString(" " + req.OrderBy)
	}
	return sb.String(), nil
}

// RenderInsert returns the inserted row inline via OUTPUT, so no
// follow-up fetch is needed.
func (SQLServer) RenderInsert(table string, columns, literals []string) InsertPlan {
	return InsertPlan{
		Statement: fmt.Sprintf("INSERT INTO %s (%s) OUTPUT INSERTED.* VALUES (%s)",
			table, strings.Join(columns, ", "), strings.Join(literals, ", ")),
	}
}

func (SQLServer) RenderUpdate(table string, assignments []string, where string) string {
	stmt := fmt.Sprintf("UPDATE %s SET %s OUTPUT INSERTED.*", table, strings.Join(assignments, ", "))
	if where != "" {
		stmt += " WHERE " + where
	}
	return stmt
}

func (SQLServer) RenderDelete(table string, where string) string {
	return fmt.Sprintf("DELETE FROM %s WITH (ROWLOCK) WHERE %s", table, where)
}

func (SQLServer) RenderTruncate(table string) string {
	return "TRUNCATE TABLE " + table
}

var _ Dialect = SQLServer{}
