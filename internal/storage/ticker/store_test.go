package ticker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2023, 1, 1, 9, 30, 0, 0, time.UTC)

func input(day int, closePrice float64) core.TickerInput {
	return core.TickerInput{
		Datetime: base.AddDate(0, 0, day),
		Open:     closePrice,
		High:     closePrice + 1,
		Low:      closePrice - 1,
		Close:    closePrice,
		Volume:   int64(1000 + day),
	}
}

// stores returns every backend that can run without external services.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqlite, err := Open(ctx, Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "tickers.db"),
	}, nil)
	require.NoError(t, err)

	memory, err := Open(ctx, Options{Driver: DriverMemory}, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlite.Close()
		memory.Close()
	})
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func TestStore_CreateAndList(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			// Inserted out of order on purpose
			second, err := store.Create(ctx, input(1, 101))
			require.NoError(t, err)
			first, err := store.Create(ctx, input(0, 100))
			require.NoError(t, err)

			assert.NotZero(t, first.ID)
			assert.NotEqual(t, first.ID, second.ID)
			assert.False(t, first.CreatedAt.IsZero())

			list, err := store.List(ctx, ListFilter{})
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID)
			assert.Equal(t, second.ID, list[1].ID)

			assert.True(t, base.Equal(list[0].Datetime))
			assert.Equal(t, time.UTC, list[0].Datetime.Location())
			assert.Equal(t, 100.0, list[0].Close)
			assert.Equal(t, 101.0, list[0].High)
			assert.Equal(t, int64(1000), list[0].Volume)
		})
	}
}

func TestStore_CreateMany(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			batch := []core.TickerInput{input(0, 100), input(1, 101), input(2, 102)}
			created, err := store.CreateMany(ctx, batch)
			require.NoError(t, err)
			require.Len(t, created, 3)
			for i, rec := range created {
				assert.Equal(t, batch[i].Close, rec.Close)
			}

			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestStore_ListFilter(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			batch := make([]core.TickerInput, 10)
			for i := range batch {
				batch[i] = input(i, 100+float64(i))
			}
			_, err := store.CreateMany(ctx, batch)
			require.NoError(t, err)

			tests := []struct {
				name   string
				filter ListFilter
				want   []float64
			}{
				{"limit", ListFilter{Limit: 3}, []float64{100, 101, 102}},
				{"skip", ListFilter{Skip: 8}, []float64{108, 109}},
				{"skip and limit", ListFilter{Skip: 2, Limit: 2}, []float64{102, 103}},
				{"skip past end", ListFilter{Skip: 20}, []float64{}},
				{"range inclusive", ListFilter{From: base.AddDate(0, 0, 4), To: base.AddDate(0, 0, 6)}, []float64{104, 105, 106}},
				{"from with limit", ListFilter{From: base.AddDate(0, 0, 7), Limit: 5}, []float64{107, 108, 109}},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					list, err := store.List(ctx, tt.filter)
					require.NoError(t, err)

					got := make([]float64, len(list))
					for i, rec := range list {
						got[i] = rec.Close
					}
					assert.Equal(t, tt.want, got)
				})
			}
		})
	}
}

func TestStore_DeleteAll(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.CreateMany(ctx, []core.TickerInput{input(0, 1), input(1, 2)})
			require.NoError(t, err)

			n, err := store.DeleteAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			n, err = store.DeleteAll(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			count, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)

			list, err := store.List(ctx, ListFilter{})
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Empty(t, list)
		})
	}
}

func TestSQLStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "tickers.db")

	store, err := Open(ctx, Options{Driver: DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	_, err = store.Create(ctx, input(0, 42.1234))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(ctx, Options{Driver: DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	defer store.Close()

	list, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 42.1234, list[0].Close)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mysql"}, nil)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestDialect_Rebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a >= ? AND b <= ? LIMIT ?"
	assert.Equal(t, q, sqliteDialect.rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a >= $1 AND b <= $2 LIMIT $3", postgresDialect.rebind(q))
}
