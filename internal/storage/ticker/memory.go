package ticker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newthinker/tradelab/internal/core"
)

// MemoryStore is an in-memory ticker store.
type MemoryStore struct {
	mu      sync.RWMutex
	records []core.Ticker // sorted by Datetime, then ID
	nextID  int64
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		now:    time.Now,
	}
}

// Create adds a record to the store.
func (m *MemoryStore) Create(ctx context.Context, in core.TickerInput) (core.Ticker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.insertLocked(in)
	return rec, nil
}

// CreateMany adds records to the store in one step.
func (m *MemoryStore) CreateMany(ctx context.Context, in []core.TickerInput) ([]core.Ticker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]core.Ticker, 0, len(in))
	for _, ti := range in {
		out = append(out, m.insertLocked(ti))
	}
	return out, nil
}

func (m *MemoryStore) insertLocked(in core.TickerInput) core.Ticker {
	rec := core.Ticker{
		ID:        m.nextID,
		Datetime:  in.Datetime.UTC(),
		Open:      in.Open,
		High:      in.High,
		Low:       in.Low,
		Close:     in.Close,
		Volume:    in.Volume,
		CreatedAt: m.now().UTC(),
	}
	m.nextID++

	// Insert after every record with an equal or earlier timestamp
	i := sort.Search(len(m.records), func(i int) bool {
		return m.records[i].Datetime.After(rec.Datetime)
	})
	m.records = append(m.records, core.Ticker{})
	copy(m.records[i+1:], m.records[i:])
	m.records[i] = rec

	return rec
}

// List returns records matching the filter.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]core.Ticker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []core.Ticker{}
	skipped := 0
	for _, rec := range m.records {
		if !matches(rec, filter) {
			continue
		}
		if skipped < filter.Skip {
			skipped++
			continue
		}
		result = append(result, rec)
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}

// Count returns the number of stored records.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// DeleteAll clears the store.
func (m *MemoryStore) DeleteAll(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.records)
	m.records = nil
	return n, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func matches(rec core.Ticker, filter ListFilter) bool {
	if !filter.From.IsZero() && rec.Datetime.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && rec.Datetime.After(filter.To) {
		return false
	}
	return true
}
