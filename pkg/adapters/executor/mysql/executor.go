// Package mysql provides the MySQL query executor.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/bridgeline-data/sqlbridge/pkg/adapters/executor"
	"github.com/bridgeline-data/sqlbridge/pkg/config"
	"github.com/bridgeline-data/sqlbridge/pkg/logging"
)

func init() {
	executor.Register("mysql", func(cfg *config.Connection, logger *zap.Logger) (executor.QueryExecutor, error) {
		return New(cfg, logger)
	})
}

// Executor executes statements against MySQL.
type Executor struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens a connection pool for the given config.
// If logger is nil, a no-op logger is used.
func New(cfg *config.Connection, logger *zap.Logger) (*Executor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := sql.Open("mysql", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open connection: %w", err)
	}
	return FromDB(db, logger), nil
}

// FromDB wraps an existing database handle. Used by tests.
func FromDB(db *sql.DB, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{db: db, logger: logger}
}

func buildDSN(cfg *config.Connection) string {
	mc := gomysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	// Insert statements run as a transaction block ending in a
	// LAST_INSERT_ID() read, which needs multi-statement support.
	mc.MultiStatements = true
	if cfg.ConnectionTimeout > 0 {
		mc.Timeout = time.Duration(cfg.ConnectionTimeout) * time.Second
	}
	return mc.FormatDSN()
}

// Execute runs a statement. Multi-statement batches are supported; the
// result carries the rows of the last result set the batch produced.
func (e *Executor) Execute(ctx context.Context, statement string) (*executor.Result, error) {
	e.logger.Debug("executing statement",
		zap.String("statement", logging.TruncateQuery(statement)))

	rows, err := e.db.QueryContext(ctx, statement)
	if err != nil {
		// Likely plain DML; run it for its side effect and report rows
		// affected.
		execResult, execErr := e.db.ExecContext(ctx, statement)
		if execErr != nil {
			return nil, fmt.Errorf("execute statement: %w", execErr)
		}
		rowsAffected, raErr := execResult.RowsAffected()
		if raErr != nil {
			return nil, fmt.Errorf("get rows affected: %w", raErr)
		}
		result := executor.Empty()
		result.RowsAffected = rowsAffected
		return result, nil
	}
	defer rows.Close()

	return executor.Collect(rows)
}

// Close releases the database connection.
func (e *Executor) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

var _ executor.QueryExecutor = (*Executor)(nil)
