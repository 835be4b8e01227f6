// Package sqlserver provides the SQL Server query executor.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/bridgeline-data/sqlbridge/pkg/adapters/executor"
	"github.com/bridgeline-data/sqlbridge/pkg/config"
	"github.com/bridgeline-data/sqlbridge/pkg/logging"
)

func init() {
	executor.Register("sqlserver", func(cfg *config.Connection, logger *zap.Logger) (executor.QueryExecutor, error) {
		return New(cfg, logger)
	})
}

// Executor executes statements against SQL Server.
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

	db, err := sql.Open("sqlserver", buildConnString(cfg))
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

func buildConnString(cfg *config.Connection) string {
	query := url.Values{}
	query.Add("database", cfg.Database)
	if cfg.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if cfg.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}
	if cfg.ConnectionTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectionTimeout))
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?%s",
		url.QueryEscape(cfg.Username),
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		query.Encode(),
	)
}

// Execute runs a statement. Statements that return rows (SELECT, DML
// with an OUTPUT clause) are collected into the result; for anything
// else the rows-affected count is reported instead.
func (e *Executor) Execute(ctx context.Context, statement string) (*executor.Result, error) {
	e.logger.Debug("executing statement",
		zap.String("statement", logging.TruncateQuery(statement)))

	rows, err := e.db.QueryContext(ctx, statement)
	if err != nil {
		// Likely a DML statement without OUTPUT; run it for its side
		// effect and report rows affected.
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
