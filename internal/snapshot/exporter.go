// Package snapshot copies the ticker store to archive storage and back.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/ingest"
	"github.com/newthinker/tradelab/internal/metrics"
	"github.com/newthinker/tradelab/internal/storage/archive"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"go.uber.org/zap"
)

// Prefix is the archive directory holding ticker snapshots.
const Prefix = "tickers"

// Snapshot describes one exported file.
type Snapshot struct {
	Path      string    `json:"path"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Exporter writes the store contents to archive storage as JSON and
// restores them through the ingest service.
type Exporter struct {
	svc     *ingest.Service
	archive archive.Storage
	metrics *metrics.Registry
	logger  *zap.Logger
	now     func() time.Time
}

// NewExporter creates an Exporter. reg and logger may be nil.
func NewExporter(svc *ingest.Service, storage archive.Storage, reg *metrics.Registry, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		svc:     svc,
		archive: storage,
		metrics: reg,
		logger:  logger,
		now:     time.Now,
	}
}

// PathFor returns the archive path of a snapshot taken at t.
func PathFor(t time.Time) string {
	t = t.UTC()
	return path.Join(Prefix, t.Format("2006/01/02"), fmt.Sprintf("tickers-%d.json", t.Unix()))
}

// Export writes every stored record to a new snapshot file.
func (e *Exporter) Export(ctx context.Context) (Snapshot, error) {
	snap, err := e.export(ctx)
	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordSnapshot(status)
	}
	return snap, err
}

func (e *Exporter) export(ctx context.Context) (Snapshot, error) {
	records, err := e.svc.Store().List(ctx, ticker.ListFilter{})
	if err != nil {
		return Snapshot{}, err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return Snapshot{}, core.WrapError(core.ErrArchiveFailed, err)
	}

	created := e.now().UTC()
	snap := Snapshot{Path: PathFor(created), Count: len(records), CreatedAt: created}
	if err := e.archive.Write(ctx, snap.Path, data); err != nil {
		return Snapshot{}, core.WrapError(core.ErrArchiveFailed, err)
	}

	e.logger.Info("snapshot exported",
		zap.String("path", snap.Path),
		zap.Int("count", snap.Count),
	)
	return snap, nil
}

// List returns snapshot paths, oldest first.
func (e *Exporter) List(ctx context.Context) ([]string, error) {
	paths, err := e.archive.List(ctx, Prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}

	out := paths[:0]
	for _, p := range paths {
		if strings.HasSuffix(p, ".json") {
			out = append(out, p)
		}
	}
	return out, nil
}

// Restore loads a snapshot into the store and returns the number of
// records added. Existing records are kept.
func (e *Exporter) Restore(ctx context.Context, p string) (int, error) {
	data, err := e.archive.Read(ctx, p)
	if err != nil {
		return 0, err
	}

	var in []core.TickerInput
	if err := json.Unmarshal(data, &in); err != nil {
		return 0, core.WrapError(core.ErrArchiveFailed, fmt.Errorf("decode %s: %w", p, err))
	}

	recs, err := e.svc.CreateMany(ctx, ingest.SourceRestore, in)
	if err != nil {
		return 0, err
	}

	e.logger.Info("snapshot restored",
		zap.String("path", p),
		zap.Int("count", len(recs)),
	)
	return len(recs), nil
}

// Prune deletes the oldest snapshots so that at most keep remain. keep <= 0
// keeps everything.
func (e *Exporter) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	paths, err := e.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(paths) <= keep {
		return 0, nil
	}

	// Paths embed the date and Unix time, so lexical order is age order
	stale := paths[:len(paths)-keep]
	for _, p := range stale {
		if err := e.archive.Delete(ctx, p); err != nil {
			return 0, core.WrapError(core.ErrArchiveFailed, err)
		}
	}
	e.logger.Info("snapshots pruned", zap.Int("deleted", len(stale)))
	return len(stale), nil
}
