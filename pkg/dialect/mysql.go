package dialect

import (
	"fmt"
	"strings"
	"time"
)

// mysqlTimestampLayout matches the server's microsecond DATETIME(6)
// literal form. Part of the wire contract; do not change.
const mysqlTimestampLayout = "2006-01-02 15:04:05.000000"

// MySQL renders MySQL-flavored SQL with native LIMIT pagination.
type MySQL struct{}

func (MySQL) Kind() Kind { return KindMySQL }

func (MySQL) TableNamesQuery() string {
	return "SHOW TABLES"
}

func (d MySQL) ColumnsQuery(table string) string {
	return fmt.Sprintf(`SELECT COLUMN_NAME AS column_name, DATA_TYPE AS data_type, CHARACTER_MAXIMUM_LENGTH AS max_length, IS_NULLABLE AS is_nullable, COLUMN_KEY AS key_marker FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = '%s' ORDER BY ORDINAL_POSITION`, d.Sanitize(table))
}

// IsPrimaryKeyMarker matches the COLUMN_KEY value INFORMATION_SCHEMA
// uses for primary-key membership.
func (MySQL) IsPrimaryKeyMarker(marker string) bool {
	return marker == "PRI"
}

// Sanitize applies the driver's canonical backslash escaping for the
// MySQL text protocol.
func (MySQL) Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 0x00:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case 0x1a:
			b.WriteString(`\Z`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (MySQL) FormatTimestamp(t time.Time) string {
	return t.Format(mysqlTimestampLayout)
}

func (d MySQL) FormatLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return "'" + d.FormatTimestamp(x) + "'"
	case string:
		return "'" + d.Sanitize(x) + "'"
	default:
		return "'" + d.Sanitize(fmt.Sprint(v)) + "'"
	}
}

func (MySQL) RenderSelect(req SelectRequest) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", req.FieldList(), req.Table)
	if req.Where != "" {
		sb.WriteString(" WHERE " + req.Where)
	}
	if req.OrderBy != "" {
		sb.WriteString(" " + req.OrderBy)
	}
	// A start offset without a row cap has no two-argument LIMIT form
	// here, so it is ignored.
	if req.MaxResults != nil {
		if req.Start != nil {
			fmt.Fprintf(&sb, " LIMIT %d,%d", *req.Start, *req.MaxResults)
		} else {
			fmt.Fprintf(&sb, " LIMIT %d", *req.MaxResults)
		}
	}
	return sb.String(), nil
}

// RenderInsert wraps the insert and the identity read in one
// transaction block so LAST_INSERT_ID() is read on the same session
// state the insert ran under. The caller still has to fetch the full
// row by primary key afterwards.
func (MySQL) RenderInsert(table string, columns, literals []string) InsertPlan {
	return InsertPlan{
		Statement: fmt.Sprintf(
			"START TRANSACTION; INSERT INTO %s (%s) VALUES (%s); SELECT LAST_INSERT_ID() AS last_insert_id; COMMIT;",
			table, strings.Join(columns, ", "), strings.Join(literals, ", ")),
		NeedsFetch: true,
	}
}

func (MySQL) RenderUpdate(table string, assignments []string, where string) string {
	stmt := fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assignments, ", "))
	if where != "" {
		stmt += " WHERE " + where
	}
	return stmt
}

func (MySQL) RenderDelete(table string, where string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s", table, where)
}

func (MySQL) RenderTruncate(table string) string {
	return "TRUNCATE TABLE " + table
}

var _ Dialect = MySQL{}
