package executor

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/bridgeline-data/sqlbridge/pkg/config"
)

// Factory opens a QueryExecutor for a validated connection config.
type Factory func(cfg *config.Connection, logger *zap.Logger) (QueryExecutor, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register is called by each adapter's init() function.
// Thread-safe for concurrent init() calls.
func Register(dialect string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[dialect] = f
}

// Open creates an executor for the configured dialect. The adapter
// package for that dialect must be linked in (blank import).
func Open(cfg *config.Connection, logger *zap.Logger) (QueryExecutor, error) {
	registryMu.RLock()
	f, ok := registry[cfg.Dialect]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %s (not compiled in)", cfg.Dialect)
	}
	return f(cfg, logger)
}

// Registered reports whether an adapter for the dialect is linked in.
func Registered(dialect string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[dialect]
	return ok
}
