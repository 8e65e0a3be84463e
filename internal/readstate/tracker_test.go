package readstate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"
)

type fakeAcker struct {
	mu     sync.Mutex
	called []string
	fail   map[string]error
}

func (a *fakeAcker) MarkRead(_ context.Context, recordID string) error {
	a.mu.Lock()
	a.called = append(a.called, recordID)
	a.mu.Unlock()
	if err, ok := a.fail[recordID]; ok {
		return err
	}
	return nil
}

func TestTracker_MarkRead(t *testing.T) {
	acker := &fakeAcker{}
	tr := New(acker, zap.NewNop())

	results := tr.MarkRead(context.Background(), []string{"r1", "r2"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("unexpected error for %s: %v", res.ID, res.Err)
		}
	}
	if !tr.Seen("r1") || !tr.Seen("r2") {
		t.Fatal("expected both ids seen")
	}
}

func TestTracker_SkipsAlreadySeen(t *testing.T) {
	acker := &fakeAcker{}
	tr := New(acker, zap.NewNop())

	tr.MarkRead(context.Background(), []string{"r1"})
	results := tr.MarkRead(context.Background(), []string{"r1", "r2"})

	if len(results) != 1 || results[0].ID != "r2" {
		t.Fatalf("expected only r2 acked, got %+v", results)
	}
	acker.mu.Lock()
	calls := len(acker.called)
	acker.mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected 2 remote acks total, got %d", calls)
	}
}

func TestTracker_DuplicateIDsInOneCall(t *testing.T) {
	acker := &fakeAcker{}
	tr := New(acker, zap.NewNop())

	results := tr.MarkRead(context.Background(), []string{"r1", "r1", "", "r1"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

// A failed remote ack is reported but the id stays locally read; nothing is
// rolled back or retried.
func TestTracker_RemoteFailureKeepsLocalState(t *testing.T) {
	acker := &fakeAcker{fail: map[string]error{"r1": errors.New("feed down")}}
	tr := New(acker, zap.NewNop())

	results := tr.MarkRead(context.Background(), []string{"r1", "r2"})

	var failed, ok int
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	if failed != 1 || ok != 1 {
		t.Fatalf("expected one failure and one success, got %+v", results)
	}
	if !tr.Seen("r1") {
		t.Fatal("expected r1 to stay locally read despite the failed ack")
	}

	// And it is not re-acked on a later call.
	if res := tr.MarkRead(context.Background(), []string{"r1"}); res != nil {
		t.Fatalf("expected no-op for already-seen id, got %+v", res)
	}
}

func TestTracker_EmptyInput(t *testing.T) {
	tr := New(&fakeAcker{}, zap.NewNop())
	if res := tr.MarkRead(context.Background(), nil); res != nil {
		t.Fatalf("expected nil, got %+v", res)
	}
	if tr.Seen("anything") {
		t.Fatal("expected empty tracker")
	}
}
