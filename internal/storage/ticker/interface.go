package ticker

import (
	"context"
	"time"

	"github.com/newthinker/tradelab/internal/core"
)

// Store defines the interface for ticker persistence.
type Store interface {
	// Create stores one record and returns it with its ID and creation time.
	// Callers validate and normalize input first.
	Create(ctx context.Context, in core.TickerInput) (core.Ticker, error)

	// CreateMany stores all records or none of them.
	CreateMany(ctx context.Context, in []core.TickerInput) ([]core.Ticker, error)

	// List returns records ordered by datetime ascending.
	List(ctx context.Context, filter ListFilter) ([]core.Ticker, error)

	// Count returns the total number of records.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every record and reports how many were removed.
	DeleteAll(ctx context.Context) (int, error)

	Close() error
}

// ListFilter defines criteria for listing records. Zero values disable
// the corresponding constraint; From and To are inclusive.
type ListFilter struct {
	Skip  int
	Limit int
	From  time.Time
	To    time.Time
}
