// Package schema caches table and column metadata discovered from the
// connected database. The cache is read far more often than it changes,
// so loads serialize on a mutex while readers work lock-free against an
// immutable snapshot that is replaced wholesale on reload: a reader can
// observe a stale schema, never a half-updated one.
package schema

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/bridgeline-data/sqlbridge/pkg/adapters/executor"
	"github.com/bridgeline-data/sqlbridge/pkg/apperrors"
	"github.com/bridgeline-data/sqlbridge/pkg/dialect"
)

// snapshot is one immutable view of the schema. Every name in tables
// has exactly one entry in details, possibly empty.
type snapshot struct {
	tables  []string
	details map[string][]ColumnMetadata
}

// Cache holds the schema snapshot for one database.
type Cache struct {
	dialect dialect.Dialect
	exec    executor.QueryExecutor
	logger  *zap.Logger

	loadMu  sync.Mutex
	current atomic.Pointer[snapshot]
}

// NewCache creates an empty cache. Populate it with Refresh.
// If logger is nil, a no-op logger is used.
func NewCache(d dialect.Dialect, exec executor.QueryExecutor, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{dialect: d, exec: exec, logger: logger}
	c.current.Store(&snapshot{details: map[string][]ColumnMetadata{}})
	return c
}

// Refresh reloads table names and then per-table column details under
// the load lock, swapping in a new snapshot once both steps finish.
// Introspection failures are non-fatal: a failed or empty result keeps
// the prior state for the affected tables instead of wiping it, so a
// transient glitch never strands the client with no known tables. The
// returned error reports a failed table-name query; prior state is
// preserved either way.
func (c *Cache) Refresh(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	prior := c.current.Load()

	tables, namesErr := c.loadTableNames(ctx, prior)
	details := c.loadTableDetails(ctx, tables, prior)

	c.current.Store(&snapshot{tables: tables, details: details})
	return namesErr
}

// loadTableNames discovers base table names. Only a successful
// non-empty result replaces the prior list.
func (c *Cache) loadTableNames(ctx context.Context, prior *snapshot) ([]string, error) {
	res, err := c.exec.Execute(ctx, c.dialect.TableNamesQuery())
	if err != nil {
		c.logger.Warn("table name discovery failed, keeping prior table list",
			zap.Error(err))
		return prior.tables, fmt.Errorf("load table names: %w", err)
	}
	if len(res.Rows) == 0 || len(res.Columns) == 0 {
		c.logger.Warn("table name discovery returned no rows, keeping prior table list")
		return prior.tables, nil
	}

	nameCol := res.Columns[0]
	tables := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		if name := asString(row[nameCol]); name != "" {
			tables = append(tables, name)
		}
	}
	if len(tables) == 0 {
		return prior.tables, nil
	}
	return tables, nil
}

// loadTableDetails issues one column-introspection query per table and
// builds the complete replacement mapping. A table whose query fails
// keeps its prior entry so the snapshot invariant holds.
func (c *Cache) loadTableDetails(ctx context.Context, tables []string, prior *snapshot) map[string][]ColumnMetadata {
	details := make(map[string][]ColumnMetadata, len(tables))
	for _, table := range tables {
		res, err := c.exec.Execute(ctx, c.dialect.ColumnsQuery(table))
		if err != nil {
			c.logger.Warn("column discovery failed, keeping prior columns",
				zap.String("table", table),
				zap.Error(err))
			details[table] = prior.details[table]
			continue
		}
		details[table] = c.parseColumns(res)
	}
	return details
}

func (c *Cache) parseColumns(res *executor.Result) []ColumnMetadata {
	columns := make([]ColumnMetadata, 0, len(res.Rows))
	for _, row := range res.Rows {
		col := ColumnMetadata{
			Name:      asString(row["column_name"]),
			DataType:  asString(row["data_type"]),
			MaxLength: asInt(row["max_length"]),
			Nullable:  strings.EqualFold(asString(row["is_nullable"]), "YES"),
		}
		if marker := asString(row["key_marker"]); marker != "" {
			col.IsPrimaryKey = c.dialect.IsPrimaryKeyMarker(marker)
		}
		columns = append(columns, col)
	}
	return columns
}

// TableNames returns a snapshot copy of the known table names.
// Never nil.
func (c *Cache) TableNames() []string {
	snap := c.current.Load()
	out := make([]string, len(snap.tables))
	copy(out, snap.tables)
	return out
}

// Describe returns the column metadata for a table in discovery order.
func (c *Cache) Describe(table string) ([]ColumnMetadata, error) {
	snap := c.current.Load()
	cols, ok := snap.details[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, table)
	}
	out := make([]ColumnMetadata, len(cols))
	copy(out, cols)
	return out, nil
}

// ColumnNames returns the column names for a table in discovery order.
func (c *Cache) ColumnNames(table string) ([]string, error) {
	cols, err := c.Describe(table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names, nil
}

// PrimaryKeyColumn returns the name of the first column flagged as part
// of the primary key.
func (c *Cache) PrimaryKeyColumn(table string) (string, error) {
	cols, err := c.Describe(table)
	if err != nil {
		return "", err
	}
	for _, col := range cols {
		if col.IsPrimaryKey {
			return col.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", apperrors.ErrNoPrimaryKey, table)
}

// asString renders a driver value as a string. Drivers hand back text
// columns as string or []byte depending on protocol.
func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// asInt parses a driver value as an int. Unparseable values yield nil
// rather than an error; max lengths like "max" or -1 are not lengths.
func asInt(v any) *int {
	var n int
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		n = x
	case int32:
		n = int(x)
	case int64:
		n = int(x)
	case float64:
		n = int(x)
	case []byte:
		parsed, err := strconv.Atoi(string(x))
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		parsed, err := strconv.Atoi(x)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	if n < 0 {
		return nil
	}
	return &n
}
