// Package events announces changes to the ticker store.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/newthinker/tradelab/internal/metrics"
	"go.uber.org/zap"
)

// Type identifies what happened to the store.
type Type string

const (
	TypeCreated  Type = "tickers.created"
	TypeDeleted  Type = "tickers.deleted"
	TypeRestored Type = "tickers.restored"
)

// Event is the JSON payload published for each store change.
type Event struct {
	Type  Type      `json:"type"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi fans each event out to every publisher.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.Publish(ctx, e))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}

// Emitter publishes store events on a best-effort basis: failures are
// logged and counted, never returned to the caller.
type Emitter struct {
	pub     Publisher
	logger  *zap.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// NewEmitter wraps pub. A nil pub behaves like Nop; reg may be nil.
func NewEmitter(pub Publisher, logger *zap.Logger, reg *metrics.Registry) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{pub: pub, logger: logger, metrics: reg, now: time.Now}
}

// Emit publishes an event of type t covering count records.
func (e *Emitter) Emit(ctx context.Context, t Type, count int) {
	ev := Event{Type: t, Count: count, At: e.now().UTC()}

	status := "success"
	if err := e.pub.Publish(ctx, ev); err != nil {
		status = "error"
		e.logger.Warn("event publish failed",
			zap.String("type", string(t)),
			zap.Int("count", count),
			zap.Error(err),
		)
	}
	if e.metrics != nil {
		e.metrics.RecordEvent(string(t), status)
	}
}

// Close releases the underlying publisher.
func (e *Emitter) Close() error {
	return e.pub.Close()
}
