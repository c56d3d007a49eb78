package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/newthinker/tradelab/internal/metrics"
	"github.com/newthinker/tradelab/internal/storage/archive"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExporter(t *testing.T) (*Exporter, *ingest.Service) {
	t.Helper()
	fs, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)

	svc := ingest.NewService(ticker.NewMemoryStore(), nil, nil, nil)
	return NewExporter(svc, fs, metrics.NewRegistry(), nil), svc
}

func TestPathFor(t *testing.T) {
	ts := time.Date(2024, 3, 7, 15, 4, 5, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "tickers/2024/03/07/tickers-1709820245.json", PathFor(ts))
}

func TestExporter_ExportRestore(t *testing.T) {
	exp, svc := newExporter(t)
	ctx := context.Background()

	_, err := svc.CreateMany(ctx, ingest.SourceSeed, ingest.SampleSeries(ingest.SampleStart, 10))
	require.NoError(t, err)

	exp.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	snap, err := exp.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Count)
	assert.Equal(t, PathFor(exp.now()), snap.Path)

	paths, err := exp.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{snap.Path}, paths)

	before, err := svc.Store().List(ctx, ticker.ListFilter{})
	require.NoError(t, err)

	_, err = svc.DeleteAll(ctx)
	require.NoError(t, err)

	n, err := exp.Restore(ctx, snap.Path)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	after, err := svc.Store().List(ctx, ticker.ListFilter{})
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.True(t, before[i].Datetime.Equal(after[i].Datetime))
		assert.Equal(t, before[i].Close, after[i].Close)
		assert.Equal(t, before[i].Volume, after[i].Volume)
	}
}

func TestExporter_ExportEmptyStore(t *testing.T) {
	exp, _ := newExporter(t)

	snap, err := exp.Export(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.Count)

	n, err := exp.Restore(context.Background(), snap.Path)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExporter_RestoreMissing(t *testing.T) {
	exp, _ := newExporter(t)

	_, err := exp.Restore(context.Background(), "tickers/none.json")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestExporter_Prune(t *testing.T) {
	exp, _ := newExporter(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var paths []string
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * 36 * time.Hour)
		exp.now = func() time.Time { return at }
		snap, err := exp.Export(ctx)
		require.NoError(t, err)
		paths = append(paths, snap.Path)
	}

	deleted, err := exp.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	left, err := exp.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, paths[2:], left)

	deleted, err = exp.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestScheduler(t *testing.T) {
	exp, _ := newExporter(t)

	_, err := NewScheduler(exp, "not a schedule", 0, nil)
	assert.Error(t, err)

	s, err := NewScheduler(exp, "@daily", 1, nil)
	require.NoError(t, err)

	s.Start()
	s.RunNow()
	s.RunNow()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	left, err := exp.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
