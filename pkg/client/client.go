// Package client is the public facade: dialect-neutral CRUD operations
// backed by the statement builder, the schema cache and an injected
// query executor.
package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bridgeline-data/sqlbridge/pkg/adapters/executor"
	"github.com/bridgeline-data/sqlbridge/pkg/apperrors"
	"github.com/bridgeline-data/sqlbridge/pkg/builder"
	"github.com/bridgeline-data/sqlbridge/pkg/dialect"
	"github.com/bridgeline-data/sqlbridge/pkg/predicate"
	"github.com/bridgeline-data/sqlbridge/pkg/schema"
	"github.com/bridgeline-data/sqlbridge/pkg/sqlcheck"
)

// Config configures a Client. The dialect is fixed for the lifetime of
// the client; the executor is the sole I/O seam and owns its own
// connection lifecycle.
type Config struct {
	Dialect  dialect.Kind
	Executor executor.QueryExecutor
	Logger   *zap.Logger
}

// Client issues dialect-neutral CRUD operations against one database.
// Safe for concurrent use; only schema refreshes serialize internally.
type Client struct {
	dialect dialect.Dialect
	exec    executor.QueryExecutor
	schema  *schema.Cache
	builder *builder.Builder
	logger  *zap.Logger
}

// New validates the config and creates a client with an empty schema
// cache. Call RefreshSchema before issuing CRUD operations.
func New(cfg Config) (*Client, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("%w: executor is required", apperrors.ErrInvalidArgument)
	}
	d, err := dialect.ForKind(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cache := schema.NewCache(d, cfg.Executor, logger)
	return &Client{
		dialect: d,
		exec:    cfg.Executor,
		schema:  cache,
		builder: builder.New(d, cache),
		logger:  logger,
	}, nil
}

// RefreshSchema reloads table and column metadata from the database.
// Reloads are explicit only; unknown-table errors do not trigger one.
func (c *Client) RefreshSchema(ctx context.Context) error {
	return c.schema.Refresh(ctx)
}

// ListTables returns the cached table names. Never nil.
func (c *Client) ListTables() []string {
	return c.schema.TableNames()
}

// DescribeTable returns the cached column metadata for a table.
func (c *Client) DescribeTable(table string) ([]schema.ColumnMetadata, error) {
	return c.schema.Describe(table)
}

// ColumnNames returns the cached column names for a table.
func (c *Client) ColumnNames(table string) ([]string, error) {
	return c.schema.ColumnNames(table)
}

// PrimaryKeyColumn returns the table's primary-key column name.
func (c *Client) PrimaryKeyColumn(table string) (string, error) {
	return c.schema.PrimaryKeyColumn(table)
}

// Select runs a SELECT against the table with the given options.
func (c *Client) Select(ctx context.Context, table string, opts builder.SelectOptions) (*executor.Result, error) {
	if err := requireTable(table); err != nil {
		return nil, err
	}
	stmt, err := c.builder.Select(table, opts)
	if err != nil {
		return nil, err
	}
	return c.exec.Execute(ctx, stmt)
}

// Insert inserts one row and returns it. On dialects without an inline
// output clause the row is fetched back by primary key; when the
// generated identity cannot be determined from the insert result the
// returned result is empty, which means the insert succeeded but the
// identity is unknown.
func (c *Client) Insert(ctx context.Context, table string, values map[string]any) (*executor.Result, error) {
	if err := requireTable(table); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one column value is required", apperrors.ErrInvalidArgument)
	}
	c.screen(table, values)

	plan, err := c.builder.Insert(table, values)
	if err != nil {
		return nil, err
	}

	// Resolve the primary key up front so a missing key fails before
	// the insert runs, not after.
	var pk string
	if plan.NeedsFetch {
		pk, err = c.schema.PrimaryKeyColumn(table)
		if err != nil {
			return nil, err
		}
	}

	res, err := c.exec.Execute(ctx, plan.Statement)
	if err != nil {
		return nil, err
	}
	if !plan.NeedsFetch {
		return res, nil
	}

	id, ok := lastInsertID(res)
	if !ok {
		c.logger.Warn("insert succeeded but generated identity could not be determined",
			zap.String("table", table))
		return executor.Empty(), nil
	}

	stmt, err := c.builder.Select(table, builder.SelectOptions{
		Filter: predicate.Compare(pk, predicate.Equals, id),
	})
	if err != nil {
		return nil, err
	}
	return c.exec.Execute(ctx, stmt)
}

// Update updates rows matching the filter (all rows when the filter is
// nil) and returns the dialect's result: updated rows inline where the
// dialect supports an output clause, rows-affected otherwise.
func (c *Client) Update(ctx context.Context, table string, values map[string]any, filter *predicate.Expr) (*executor.Result, error) {
	if err := requireTable(table); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: at least one column value is required", apperrors.ErrInvalidArgument)
	}
	c.screen(table, values)

	stmt, err := c.builder.Update(table, values, filter)
	if err != nil {
		return nil, err
	}
	return c.exec.Execute(ctx, stmt)
}

// Delete removes rows matching the filter. The filter is mandatory.
func (c *Client) Delete(ctx context.Context, table string, filter *predicate.Expr) (*executor.Result, error) {
	if err := requireTable(table); err != nil {
		return nil, err
	}
	stmt, err := c.builder.Delete(table, filter)
	if err != nil {
		return nil, err
	}
	return c.exec.Execute(ctx, stmt)
}

// Truncate removes every row of the table.
func (c *Client) Truncate(ctx context.Context, table string) error {
	if err := requireTable(table); err != nil {
		return err
	}
	stmt, err := c.builder.Truncate(table)
	if err != nil {
		return err
	}
	_, err = c.exec.Execute(ctx, stmt)
	return err
}

// Raw executes a statement as-is, bypassing the builder entirely.
func (c *Client) Raw(ctx context.Context, statement string) (*executor.Result, error) {
	if strings.TrimSpace(statement) == "" {
		return nil, fmt.Errorf("%w: statement is empty", apperrors.ErrInvalidArgument)
	}
	return c.exec.Execute(ctx, statement)
}

// screen logs values that match SQL injection patterns. Sanitization in
// the dialect layer is the enforcement; this only makes attempts
// visible.
func (c *Client) screen(table string, values map[string]any) {
	for _, finding := range sqlcheck.CheckValues(values) {
		c.logger.Warn("value matches SQL injection pattern",
			zap.String("table", table),
			zap.String("column", finding.Column),
			zap.String("fingerprint", finding.Fingerprint))
	}
}

func requireTable(table string) error {
	if strings.TrimSpace(table) == "" {
		return fmt.Errorf("%w: table name is empty", apperrors.ErrInvalidArgument)
	}
	return nil
}

// lastInsertID extracts the generated identity from an insert result.
// The insert batch aliases it as last_insert_id; a missing column, an
// unparseable value, or zero (no auto-increment column) all report
// failure.
func lastInsertID(res *executor.Result) (string, bool) {
	for _, row := range res.Rows {
		for key, v := range row {
			if !strings.EqualFold(key, "last_insert_id") {
				continue
			}
			s := valueString(v)
			id, err := strconv.ParseUint(s, 10, 64)
			if err != nil || id == 0 {
				return "", false
			}
			return s, true
		}
	}
	return "", false
}

func valueString(v any) string {
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
