// Package ingest gets ticker records into the store: validation, bulk
// file loading, sample data and the change events that follow writes.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/newthinker/tradelab/internal/core"
	"github.com/newthinker/tradelab/internal/events"
	"github.com/newthinker/tradelab/internal/metrics"
	"github.com/newthinker/tradelab/internal/storage/ticker"
	"go.uber.org/zap"
)

// Sources label where records came from in metrics and logs.
const (
	SourceAPI     = "api"
	SourceImport  = "import"
	SourceSeed    = "seed"
	SourceRestore = "restore"
	SourceFetch   = "fetch"
)

// Prepare validates every record and returns the normalized batch. All
// field errors are reported at once, prefixed with the record index when
// the batch holds more than one record.
func Prepare(in []core.TickerInput) ([]core.TickerInput, error) {
	out := make([]core.TickerInput, len(in))
	var all core.ValidationErrors

	for i, rec := range in {
		if err := rec.Validate(); err != nil {
			var fe core.ValidationErrors
			if !errors.As(err, &fe) {
				return nil, err
			}
			for _, f := range fe {
				if len(in) > 1 {
					f.Field = fmt.Sprintf("[%d].%s", i, f.Field)
				}
				all = append(all, f)
			}
			continue
		}
		out[i] = rec.Normalize()
	}

	if len(all) > 0 {
		return nil, core.WrapError(core.ErrValidation, all)
	}
	return out, nil
}

// Service writes to the ticker store and announces each change.
type Service struct {
	store   ticker.Store
	emitter *events.Emitter
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewService creates a Service. emitter, reg and logger may be nil.
func NewService(store ticker.Store, emitter *events.Emitter, reg *metrics.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if emitter == nil {
		emitter = events.NewEmitter(nil, logger, reg)
	}
	return &Service{store: store, emitter: emitter, metrics: reg, logger: logger}
}

// Store returns the underlying ticker store.
func (s *Service) Store() ticker.Store {
	return s.store
}

// Create validates, normalizes and stores one record.
func (s *Service) Create(ctx context.Context, source string, in core.TickerInput) (core.Ticker, error) {
	prepared, err := Prepare([]core.TickerInput{in})
	if err != nil {
		return core.Ticker{}, err
	}

	rec, err := s.store.Create(ctx, prepared[0])
	if err != nil {
		return core.Ticker{}, err
	}

	s.stored(ctx, source, events.TypeCreated, 1)
	return rec, nil
}

// CreateMany validates the whole batch before storing any of it.
func (s *Service) CreateMany(ctx context.Context, source string, in []core.TickerInput) ([]core.Ticker, error) {
	prepared, err := Prepare(in)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return []core.Ticker{}, nil
	}

	recs, err := s.store.CreateMany(ctx, prepared)
	if err != nil {
		return nil, err
	}

	t := events.TypeCreated
	if source == SourceRestore {
		t = events.TypeRestored
	}
	s.stored(ctx, source, t, len(recs))
	return recs, nil
}

// DeleteAll empties the store.
func (s *Service) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.RecordDelete(n)
	}
	s.logger.Info("ticker data deleted", zap.Int("count", n))
	s.emitter.Emit(ctx, events.TypeDeleted, n)
	return n, nil
}

func (s *Service) stored(ctx context.Context, source string, t events.Type, n int) {
	if s.metrics != nil {
		s.metrics.RecordIngest(source, n)
	}
	s.logger.Debug("ticker data stored",
		zap.String("source", source),
		zap.Int("count", n),
	)
	s.emitter.Emit(ctx, t, n)
}
