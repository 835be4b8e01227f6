// Package builder assembles dialect-correct statement text from CRUD
// intents, validating table and column references against the schema
// cache before anything is rendered. Every build is a pure function of
// its inputs plus the current schema snapshot; the builder keeps no
// state between calls and needs no locking.
package builder

import (
	"fmt"
	"sort"

	"github.com/bridgeline-data/sqlbridge/pkg/apperrors"
	"github.com/bridgeline-data/sqlbridge/pkg/dialect"
	"github.com/bridgeline-data/sqlbridge/pkg/predicate"
	"github.com/bridgeline-data/sqlbridge/pkg/schema"
)

// SelectOptions carries the optional parts of a select. Nil Start and
// MaxResults mean no pagination; an empty Fields slice selects all
// columns; a nil Filter matches all rows.
type SelectOptions struct {
	Start      *int
	MaxResults *int
	Fields     []string
	Filter     *predicate.Expr
	OrderBy    string
}

// Builder renders statements for one dialect against one schema cache.
type Builder struct {
	dialect dialect.Dialect
	schema  *schema.Cache
}

// New creates a statement builder.
func New(d dialect.Dialect, cache *schema.Cache) *Builder {
	return &Builder{dialect: d, schema: cache}
}

// Select builds a SELECT statement with optional filter, ordering and
// pagination.
func (b *Builder) Select(table string, opts SelectOptions) (string, error) {
	if _, err := b.schema.Describe(table); err != nil {
		return "", err
	}

	// Field sanitization is defensive; identifiers are validated by
	// schema membership elsewhere, never quoted.
	fields := make([]string, len(opts.Fields))
	for i, f := range opts.Fields {
		fields[i] = b.dialect.Sanitize(f)
	}

	return b.dialect.RenderSelect(dialect.SelectRequest{
		Table:      table,
		Fields:     fields,
		Where:      opts.Filter.Compile(b.dialect),
		OrderBy:    opts.OrderBy,
		Start:      opts.Start,
		MaxResults: opts.MaxResults,
	})
}

// Insert builds an INSERT statement for the given column values. Every
// key must name a known column of the table.
func (b *Builder) Insert(table string, values map[string]any) (dialect.InsertPlan, error) {
	columns, err := b.validColumns(table, values)
	if err != nil {
		return dialect.InsertPlan{}, err
	}

	literals := make([]string, len(columns))
	for i, col := range columns {
		literals[i] = b.dialect.FormatLiteral(values[col])
	}
	return b.dialect.RenderInsert(table, columns, literals), nil
}

// Update builds an UPDATE statement. A nil filter updates every row.
func (b *Builder) Update(table string, values map[string]any, filter *predicate.Expr) (string, error) {
	columns, err := b.validColumns(table, values)
	if err != nil {
		return "", err
	}

	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = col + "=" + b.dialect.FormatLiteral(values[col])
	}
	return b.dialect.RenderUpdate(table, assignments, filter.Compile(b.dialect)), nil
}

// Delete builds a DELETE statement. The filter is mandatory so that an
// unfiltered delete-all cannot be expressed through this path.
func (b *Builder) Delete(table string, filter *predicate.Expr) (string, error) {
	if _, err := b.schema.Describe(table); err != nil {
		return "", err
	}
	if filter == nil {
		return "", apperrors.ErrMissingFilter
	}
	return b.dialect.RenderDelete(table, filter.Compile(b.dialect)), nil
}

// Truncate builds a TRUNCATE statement.
func (b *Builder) Truncate(table string) (string, error) {
	if _, err := b.schema.Describe(table); err != nil {
		return "", err
	}
	return b.dialect.RenderTruncate(table), nil
}

// validColumns checks every supplied key against the table's known
// columns and returns the keys in deterministic (sorted) order.
func (b *Builder) validColumns(table string, values map[string]any) ([]string, error) {
	known, err := b.schema.ColumnNames(table)
	if err != nil {
		return nil, err
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, name := range known {
		knownSet[name] = struct{}{}
	}

	columns := make([]string, 0, len(values))
	for col := range values {
		if _, ok := knownSet[col]; !ok {
			return nil, fmt.Errorf("%w: %s.%s", apperrors.ErrUnknownColumn, table, col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, nil
}
