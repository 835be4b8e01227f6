package executor

import (
	"database/sql"
	"fmt"
)

// Collect materializes sql.Rows into a Result. It walks every result
// set the statement produced and keeps the last one that returned
// columns, preferring a set with rows over an empty one; multi
// statement batches (transaction blocks ending in a SELECT) therefore
// yield the SELECT's rows. []byte values are converted to string so
// text columns read back as strings regardless of driver.
func Collect(rows *sql.Rows) (*Result, error) {
	result := Empty()

	for {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("get columns: %w", err)
		}

		set := make([]map[string]any, 0)
		for rows.Next() {
			values := make([]any, len(cols))
			valuePtrs := make([]any, len(cols))
			for i := range values {
				valuePtrs[i] = &values[i]
			}
			if err := rows.Scan(valuePtrs...); err != nil {
				return nil, fmt.Errorf("scan row: %w", err)
			}

			rowMap := make(map[string]any, len(cols))
			for i, col := range cols {
				val := values[i]
				if b, ok := val.([]byte); ok {
					val = string(b)
				}
				rowMap[col] = val
			}
			set = append(set, rowMap)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate rows: %w", err)
		}

		if len(cols) > 0 && (result.Columns == nil || len(set) > 0) {
			result.Columns = cols
			result.Rows = set
		}

		if !rows.NextResultSet() {
			break
		}
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
