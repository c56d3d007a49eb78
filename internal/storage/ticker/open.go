package ticker

import (
	"context"
	"fmt"

	"github.com/newthinker/tradelab/internal/core"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v4/stdlib"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options selects and configures a store backend.
type Options struct {
	Driver         string
	DSN            string
	MaxConnections int
}

// Open creates the store described by opts. An empty driver means memory.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return newSQLStore(ctx, sqliteDialect, opts.DSN, opts.MaxConnections, logger)
	case DriverPostgres:
		return newSQLStore(ctx, postgresDialect, opts.DSN, opts.MaxConnections, logger)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage driver %q", opts.Driver))
	}
}
