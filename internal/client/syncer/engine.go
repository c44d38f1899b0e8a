// Package syncer keeps a local copy of the signed-in user's invoices.
//
// The Engine polls the backend on a fixed period and replaces its cached
// list wholesale on every refresh. Readers get either the previous list or
// the new one, never a mix. When a fetch fails the cache is replaced with the
// demonstration dataset instead of being left empty.
package syncer

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
	"github.com/dmitrijs2005/invoicekeeper/internal/logging"
)

const DefaultInterval = 30 * time.Second

// Lister fetches the full invoice list. client.Client implements it.
type Lister interface {
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
}

type snapshot struct {
	invoices []models.Invoice
	demo     bool
	at       time.Time
}

type Engine struct {
	lister    Lister
	log       logging.Logger
	interval  time.Duration
	newTicker TickerFactory
	metrics   *Metrics

	current atomic.Pointer[snapshot]

	// guards the loop handle
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Engine)

// WithInterval sets the polling period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

func WithTicker(f TickerFactory) Option {
	return func(e *Engine) { e.newTicker = f }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func New(lister Lister, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		lister:    lister,
		log:       log.With("component", "sync"),
		interval:  DefaultInterval,
		newTicker: NewTimeTicker,
	}
	for _, o := range opts {
		o(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	e.current.Store(&snapshot{})
	return e
}

// Start launches the polling loop. A loop that is already running is
// stopped first, so at most one is ever active. Start does not refresh
// immediately; the first refresh happens one interval later.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()

	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	ticker := e.newTicker(e.interval)

	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()

		e.log.Info(ctx, "invoice sync started", "interval", e.interval.String())

		for {
			select {
			case <-ctx.Done():
				e.log.Info(ctx, "invoice sync stopped")
				return
			case <-ticker.C():
				// a refresh in flight is allowed to finish after Stop
				e.Refresh(context.WithoutCancel(ctx))
			}
		}
	}(e.done)
}

// Stop halts the polling loop and waits for it to exit. Safe to call when
// not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.done != nil {
		<-e.done
	}
	e.cancel, e.done = nil, nil
}

// Running reports whether the polling loop is alive. A loop ended by
// cancellation of the context given to Start is not running.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Refresh fetches the invoice list once and swaps it in. On failure the
// demonstration dataset is swapped in. Concurrent refreshes are not
// serialised; the last one to finish wins.
func (e *Engine) Refresh(ctx context.Context) {
	started := time.Now()
	list, err := e.lister.ListInvoices(ctx)
	e.metrics.duration.Observe(time.Since(started).Seconds())

	if err != nil {
		e.log.Warn(ctx, "invoice refresh failed, showing demonstration data", "error", err)
		e.metrics.refreshes.WithLabelValues(resultFallback).Inc()
		e.swap(models.DemoInvoices(), true)
		return
	}

	e.metrics.refreshes.WithLabelValues(resultOK).Inc()
	e.swap(list, false)
	e.log.Debug(ctx, "invoice refresh done", "count", len(list))
}

// LoadDemo replaces the cache with the demonstration dataset without
// contacting the backend.
func (e *Engine) LoadDemo() {
	e.swap(models.DemoInvoices(), true)
}

// Snapshot returns the cached invoices in server order. The slice is a copy.
func (e *Engine) Snapshot() []models.Invoice {
	return slices.Clone(e.current.Load().invoices)
}

// Demo reports whether the cache currently holds demonstration data.
func (e *Engine) Demo() bool {
	return e.current.Load().demo
}

// UpdatedAt is when the cache was last replaced; zero before the first swap.
func (e *Engine) UpdatedAt() time.Time {
	return e.current.Load().at
}

func (e *Engine) swap(list []models.Invoice, demo bool) {
	e.current.Store(&snapshot{invoices: slices.Clone(list), demo: demo, at: time.Now()})
	e.metrics.cached.Set(float64(len(list)))
}
