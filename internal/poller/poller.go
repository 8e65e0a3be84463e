// Package poller drives the fetch cycle: on a fixed interval (or an
// out-of-cycle refresh) it pulls the feed for one business, rebuilds the
// aggregated snapshot, and hands the visible callback page to the notifier.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/circuitbreaker"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/events"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/feed"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/metrics"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/notify"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/readstate"
)

// ErrNoSnapshot is returned when no fetch cycle has completed yet.
var ErrNoSnapshot = errors.New("no snapshot available yet")

// Fetcher retrieves the raw record batch for a business.
type Fetcher interface {
	FetchOrders(ctx context.Context, businessNumber string, pageSize int) ([]feed.RawRecord, error)
}

// EventPublisher publishes urgent-callback events downstream. Optional.
type EventPublisher interface {
	PublishBatch(ctx context.Context, evts []events.UrgentCallbackEvent) []string
}

// Config holds poller settings.
type Config struct {
	PollInterval time.Duration
	PageSize     int
}

// Poller runs the fetch cycle for one business. Cycles run one at a time;
// every successful cycle replaces the published snapshot wholesale, so
// readers always observe a complete, internally consistent view. A failed
// fetch keeps the previous snapshot.
type Poller struct {
	businessNumber string
	fetcher        Fetcher
	aggregator     *feed.Aggregator
	notifier       *notify.Notifier
	readState      *readstate.Tracker
	publisher      EventPublisher
	config         Config
	logger         *zap.Logger

	mu       sync.RWMutex
	snapshot *feed.Snapshot

	refresh chan struct{}
}

// New creates a poller for one business.
func New(businessNumber string, fetcher Fetcher, aggregator *feed.Aggregator, notifier *notify.Notifier, readState *readstate.Tracker, publisher EventPublisher, cfg Config, logger *zap.Logger) *Poller {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = 100
	}

	return &Poller{
		businessNumber: businessNumber,
		fetcher:        fetcher,
		aggregator:     aggregator,
		notifier:       notifier,
		readState:      readState,
		publisher:      publisher,
		config:         cfg,
		logger:         logger.With(zap.String("business_number", businessNumber)),
		refresh:        make(chan struct{}, 1),
	}
}

// Start runs the poll loop until the context is cancelled. The first cycle
// runs immediately rather than waiting out the first tick.
func (p *Poller) Start(ctx context.Context) {
	p.runCycle(ctx)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopping")
			return
		case <-ticker.C:
			p.runCycle(ctx)
		case <-p.refresh:
			p.runCycle(ctx)
		}
	}
}

// Refresh requests an out-of-cycle fetch (e.g. after a mark-read). Never
// blocks; if a refresh is already queued this is a no-op.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Snapshot returns the current aggregated snapshot, or ErrNoSnapshot before
// the first successful cycle.
func (p *Poller) Snapshot() (*feed.Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return nil, ErrNoSnapshot
	}
	return p.snapshot, nil
}

// ReadState exposes the tracker for the API layer.
func (p *Poller) ReadState() *readstate.Tracker {
	return p.readState
}

func (p *Poller) runCycle(ctx context.Context) {
	start := time.Now()

	raws, err := p.fetcher.FetchOrders(ctx, p.businessNumber, p.config.PageSize)
	if err != nil {
		outcome := "error"
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			outcome = "rejected"
		}
		metrics.RecordFetchCycle(p.businessNumber, outcome, 0)
		p.logger.Error("fetch cycle failed, keeping previous snapshot",
			zap.Error(err),
		)
		return
	}

	snap := p.aggregator.Build(p.businessNumber, raws)

	p.mu.Lock()
	p.snapshot = snap
	p.mu.Unlock()

	metrics.RecordFetchCycle(p.businessNumber, "ok", time.Since(start))

	p.notifyUrgent(ctx, snap)
}

// notifyUrgent runs the notifier against the first card page of callbacks
// and publishes downstream events for anything newly alerted.
func (p *Poller) notifyUrgent(ctx context.Context, snap *feed.Snapshot) {
	visible := feed.Page(snap.Callbacks, 1, feed.CardPageSize)

	alert, err := p.notifier.CheckVisible(ctx, p.businessNumber, visible, p.readState.Seen)
	if err != nil {
		p.logger.Error("urgent notification check failed", zap.Error(err))
		return
	}
	if alert == nil || p.publisher == nil {
		return
	}

	byID := make(map[string]feed.Callback, len(visible))
	for _, cb := range visible {
		byID[cb.ID] = cb
	}

	evts := make([]events.UrgentCallbackEvent, 0, len(alert.RecordIDs))
	for _, id := range alert.RecordIDs {
		cb := byID[id]
		evts = append(evts, events.UrgentCallbackEvent{
			RecordID:       id,
			BusinessNumber: p.businessNumber,
			CallbackNumber: cb.CallbackNumber,
			CustomerName:   cb.CustomerName,
			AlertID:        alert.ID,
		})
	}
	p.publisher.PublishBatch(ctx, evts)
}
