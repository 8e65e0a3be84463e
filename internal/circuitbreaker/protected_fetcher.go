package circuitbreaker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/feed"
)

// Fetcher mirrors the feed client's fetch method to avoid a circular import.
type Fetcher interface {
	FetchOrders(ctx context.Context, businessNumber string, pageSize int) ([]feed.RawRecord, error)
}

// ProtectedFetcher wraps a feed Fetcher with a CircuitBreaker. When the feed
// API starts failing, the circuit opens and fetches fail fast instead of
// piling up behind transport timeouts; the poller keeps serving its previous
// snapshot either way.
type ProtectedFetcher struct {
	fetcher Fetcher
	breaker *CircuitBreaker
	logger  *zap.Logger
}

// NewProtectedFetcher wraps a fetcher with breaker protection.
func NewProtectedFetcher(fetcher Fetcher, breaker *CircuitBreaker, logger *zap.Logger) *ProtectedFetcher {
	return &ProtectedFetcher{
		fetcher: fetcher,
		breaker: breaker,
		logger:  logger,
	}
}

// FetchOrders fetches through the breaker. If the circuit is open it returns
// ErrCircuitOpen immediately.
func (p *ProtectedFetcher) FetchOrders(ctx context.Context, businessNumber string, pageSize int) ([]feed.RawRecord, error) {
	if !p.breaker.Allow() {
		p.logger.Warn("circuit breaker rejected fetch",
			zap.String("breaker", p.breaker.config.Name),
			zap.String("business_number", businessNumber),
			zap.String("state", p.breaker.GetState().String()),
		)
		return nil, fmt.Errorf("%w: %s unavailable", ErrCircuitOpen, p.breaker.config.Name)
	}

	records, err := p.fetcher.FetchOrders(ctx, businessNumber, pageSize)
	if err != nil {
		p.breaker.RecordFailure()
		return nil, err
	}

	p.breaker.RecordSuccess()
	return records, nil
}

// Breaker exposes the underlying breaker for the monitoring endpoint.
func (p *ProtectedFetcher) Breaker() *CircuitBreaker {
	return p.breaker
}
