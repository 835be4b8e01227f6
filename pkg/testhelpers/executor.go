// Package testhelpers provides in-memory doubles for the executor seam
// so the synthesis core can be tested without a live database.
package testhelpers

import (
	"context"
	"strings"
	"sync"

	"github.com/bridgeline-data/sqlbridge/pkg/adapters/executor"
	"github.com/bridgeline-data/sqlbridge/pkg/dialect"
)

// FakeExecutor records every statement and answers through a
// caller-supplied responder. Safe for concurrent use.
type FakeExecutor struct {
	mu         sync.Mutex
	statements []string

	// Respond produces the result for a statement. When nil, every
	// statement succeeds with an empty result.
	Respond func(statement string) (*executor.Result, error)
}

func (f *FakeExecutor) Execute(_ context.Context, statement string) (*executor.Result, error) {
	f.mu.Lock()
	f.statements = append(f.statements, statement)
	respond := f.Respond
	f.mu.Unlock()

	if respond == nil {
		return executor.Empty(), nil
	}
	return respond(statement)
}

func (f *FakeExecutor) Close() error { return nil }

// Executed returns a copy of the statements seen so far.
func (f *FakeExecutor) Executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.statements))
	copy(out, f.statements)
	return out
}

// TabularResult builds an executor result from rows sharing the given
// column order.
func TabularResult(columns []string, rows ...map[string]any) *executor.Result {
	if rows == nil {
		rows = []map[string]any{}
	}
	return &executor.Result{Columns: columns, Rows: rows, RowCount: len(rows)}
}

// SchemaResponder answers the dialect's introspection queries with a
// fixed two-table schema: users (id primary key, name, age, created_at)
// and orders (no primary key). Everything else gets an empty result.
func SchemaResponder(d dialect.Dialect) func(string) (*executor.Result, error) {
	pkMarker := "PRI"
	if d.Kind() == dialect.KindSQLServer {
		pkMarker = "PK_users"
	}

	columnsCols := []string{"column_name", "data_type", "max_length", "is_nullable", "key_marker"}
	usersColumns := TabularResult(columnsCols,
		map[string]any{"column_name": "id", "data_type": "int", "max_length": nil, "is_nullable": "NO", "key_marker": pkMarker},
		map[string]any{"column_name": "name", "data_type": "varchar", "max_length": int64(50), "is_nullable": "NO", "key_marker": nil},
		map[string]any{"column_name": "age", "data_type": "int", "max_length": nil, "is_nullable": "YES", "key_marker": nil},
		map[string]any{"column_name": "created_at", "data_type": "datetime", "max_length": nil, "is_nullable": "YES", "key_marker": nil},
	)
	ordersColumns := TabularResult(columnsCols,
		map[string]any{"column_name": "ref", "data_type": "varchar", "max_length": int64(32), "is_nullable": "NO", "key_marker": nil},
		map[string]any{"column_name": "total", "data_type": "decimal", "max_length": nil, "is_nullable": "YES", "key_marker": nil},
	)

	return func(statement string) (*executor.Result, error) {
		switch {
		case statement == d.TableNamesQuery():
			return TabularResult([]string{"table_name"},
				map[string]any{"table_name": "users"},
				map[string]any{"table_name": "orders"},
			), nil
		case strings.Contains(statement, "'users'"):
			return usersColumns, nil
		case strings.Contains(statement, "'orders'"):
			return ordersColumns, nil
		default:
			return executor.Empty(), nil
		}
	}
}
