// Package readstate tracks which feed records the operator has
// acknowledged. The local set is updated optimistically and synced to the
// feed API best-effort; a failed sync never rolls the local state back.
package readstate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/metrics"
)

// Acker performs the remote read acknowledgment for one record.
type Acker interface {
	MarkRead(ctx context.Context, recordID string) error
}

// AckResult is the remote acknowledgment outcome for one record id. The
// local read state does not depend on it.
type AckResult struct {
	ID  string
	Err error
}

// Tracker is the read-state tracker. The seen set only grows for the
// lifetime of the tracker.
type Tracker struct {
	mu     sync.RWMutex
	seen   map[string]struct{}
	acker  Acker
	logger *zap.Logger
}

// New creates a tracker syncing through the given acker.
func New(acker Acker, logger *zap.Logger) *Tracker {
	return &Tracker{
		seen:   make(map[string]struct{}),
		acker:  acker,
		logger: logger,
	}
}

// Seen reports whether the record id was already acknowledged locally.
func (t *Tracker) Seen(recordID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.seen[recordID]
	return ok
}

// MarkRead acknowledges the given record ids. Ids already in the set are
// skipped. The local set is updated before any network call; the remote
// acks then fan out in parallel and their per-id results are returned so
// callers can log failures. Nothing is retried or rolled back.
func (t *Tracker) MarkRead(ctx context.Context, recordIDs []string) []AckResult {
	fresh := t.claim(recordIDs)
	if len(fresh) == 0 {
		return nil
	}

	results := make([]AckResult, len(fresh))
	var wg sync.WaitGroup
	for i, id := range fresh {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			err := t.acker.MarkRead(ctx, id)
			results[i] = AckResult{ID: id, Err: err}
			if err != nil {
				metrics.RecordReadAck("error")
				t.logger.Warn("read acknowledgment failed",
					zap.String("record_id", id),
					zap.Error(err),
				)
				return
			}
			metrics.RecordReadAck("ok")
		}(i, id)
	}
	wg.Wait()

	return results
}

// claim filters out already-seen ids and adds the rest to the set.
func (t *Tracker) claim(recordIDs []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	fresh := make([]string, 0, len(recordIDs))
	for _, id := range recordIDs {
		if id == "" {
			continue
		}
		if _, ok := t.seen[id]; ok {
			continue
		}
		t.seen[id] = struct{}{}
		fresh = append(fresh, id)
	}
	return fresh
}
