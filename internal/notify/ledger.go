// Package notify raises one-shot alerts for newly observed urgent callback
// requests. At-most-once delivery per record is enforced by a durable
// Ledger; which records are eligible is decided against the currently
// visible callback page only.
package notify

import (
	"context"
	"sync"
)

// Ledger tracks which record ids have already triggered an alert for a
// business. An id once recorded is never alerted again; the set only grows.
type Ledger interface {
	// Has reports whether the record id was already alerted.
	Has(ctx context.Context, businessNumber, recordID string) (bool, error)

	// Record marks the record ids as alerted.
	Record(ctx context.Context, businessNumber string, recordIDs []string) error
}

// MemoryLedger is a map-backed Ledger for tests and ledger-less dev runs.
// It is not durable across restarts.
type MemoryLedger struct {
	mu   sync.RWMutex
	seen map[string]map[string]struct{}
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{seen: make(map[string]map[string]struct{})}
}

// Has reports whether the id was recorded for the business.
func (l *MemoryLedger) Has(_ context.Context, businessNumber, recordID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids, ok := l.seen[businessNumber]
	if !ok {
		return false, nil
	}
	_, found := ids[recordID]
	return found, nil
}

// Record marks the ids as alerted for the business.
func (l *MemoryLedger) Record(_ context.Context, businessNumber string, recordIDs []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids, ok := l.seen[businessNumber]
	if !ok {
		ids = make(map[string]struct{})
		l.seen[businessNumber] = ids
	}
	for _, id := range recordIDs {
		ids[id] = struct{}{}
	}
	return nil
}
