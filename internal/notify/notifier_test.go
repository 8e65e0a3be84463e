package notify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/feed"
)

type captureSink struct {
	name   string
	alerts []Alert
	err    error
}

func (s *captureSink) Name() string { return s.name }

func (s *captureSink) Deliver(_ context.Context, alert Alert) error {
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, alert)
	return nil
}

type failingLedger struct {
	recordErr error
	hasErr    error
}

func (l *failingLedger) Has(context.Context, string, string) (bool, error) {
	return false, l.hasErr
}

func (l *failingLedger) Record(context.Context, string, []string) error {
	return l.recordErr
}

func asapCallback(id string) feed.Callback {
	return feed.Callback{
		RecordMeta:     feed.RecordMeta{ID: id, Timestamp: "2026-08-28T10:00:00Z"},
		CallbackNumber: "5551234567",
		ASAP:           true,
	}
}

func TestNotifier_AlertsNewASAPCallbacks(t *testing.T) {
	sink := &captureSink{name: "capture"}
	n := NewNotifier(NewMemoryLedger(), []Sink{sink}, zap.NewNop())

	visible := []feed.Callback{asapCallback("cb-1"), asapCallback("cb-2")}
	alert, err := n.CheckVisible(context.Background(), "+15550001111", visible, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected an alert")
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("expected one batched alert, got %d", len(sink.alerts))
	}
	if alert.Count != 2 || len(alert.RecordIDs) != 2 {
		t.Fatalf("unexpected alert: %+v", alert)
	}
	if alert.Message != "2 new ASAP callback requests need immediate attention" {
		t.Fatalf("unexpected message: %q", alert.Message)
	}
	if alert.ID == "" {
		t.Fatal("expected alert id")
	}
	if sink.alerts[0].ID != alert.ID {
		t.Fatalf("delivered alert id %q does not match returned %q", sink.alerts[0].ID, alert.ID)
	}
}

func TestNotifier_SingularMessage(t *testing.T) {
	sink := &captureSink{name: "capture"}
	n := NewNotifier(NewMemoryLedger(), []Sink{sink}, zap.NewNop())

	_, err := n.CheckVisible(context.Background(), "+15550001111", []feed.Callback{asapCallback("cb-1")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.alerts[0].Message != "1 new ASAP callback request needs immediate attention" {
		t.Fatalf("unexpected message: %q", sink.alerts[0].Message)
	}
}

// A record alerted once is never alerted again, even when it stays visible
// and unread across many cycles.
func TestNotifier_AtMostOncePerRecord(t *testing.T) {
	sink := &captureSink{name: "capture"}
	n := NewNotifier(NewMemoryLedger(), []Sink{sink}, zap.NewNop())
	visible := []feed.Callback{asapCallback("cb-1")}

	for i := 0; i < 3; i++ {
		if _, err := n.CheckVisible(context.Background(), "+15550001111", visible, nil); err != nil {
			t.Fatalf("cycle %d: unexpected error: %v", i, err)
		}
	}
	if len(sink.alerts) != 1 {
		t.Fatalf("expected exactly one alert across cycles, got %d", len(sink.alerts))
	}
}

func TestNotifier_SkipsNonASAPAndRead(t *testing.T) {
	sink := &captureSink{name: "capture"}
	n := NewNotifier(NewMemoryLedger(), []Sink{sink}, zap.NewNop())

	ordinary := asapCallback("cb-ordinary")
	ordinary.ASAP = false
	read := asapCallback("cb-read")
	read.IsRead = true

	alert, err := n.CheckVisible(context.Background(), "+15550001111", []feed.Callback{ordinary, read}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil || len(sink.alerts) != 0 {
		t.Fatalf("expected nothing to alert, got %+v / %d alerts", alert, len(sink.alerts))
	}
}

func TestNotifier_SkipsLocallyAcknowledged(t *testing.T) {
	sink := &captureSink{name: "capture"}
	n := NewNotifier(NewMemoryLedger(), []Sink{sink}, zap.NewNop())

	readSeen := func(id string) bool { return id == "cb-1" }
	visible := []feed.Callback{asapCallback("cb-1"), asapCallback("cb-2")}

	alert, err := n.CheckVisible(context.Background(), "+15550001111", visible, readSeen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil || len(alert.RecordIDs) != 1 || alert.RecordIDs[0] != "cb-2" {
		t.Fatalf("expected only cb-2, got %+v", alert)
	}
}

// A ledger write failure suppresses the alert entirely: there must never be
// an alert without a matching ledger entry.
func TestNotifier_LedgerRecordFailureMeansNoAlert(t *testing.T) {
	sink := &captureSink{name: "capture"}
	ledger := &failingLedger{recordErr: errors.New("redis down")}
	n := NewNotifier(ledger, []Sink{sink}, zap.NewNop())

	alert, err := n.CheckVisible(context.Background(), "+15550001111", []feed.Callback{asapCallback("cb-1")}, nil)
	if err == nil {
		t.Fatal("expected error from ledger record")
	}
	if alert != nil || len(sink.alerts) != 0 {
		t.Fatalf("expected no alert, got %+v / %d alerts", alert, len(sink.alerts))
	}
}

func TestNotifier_LedgerLookupFailure(t *testing.T) {
	ledger := &failingLedger{hasErr: errors.New("redis down")}
	n := NewNotifier(ledger, nil, zap.NewNop())

	if _, err := n.CheckVisible(context.Background(), "+15550001111", []feed.Callback{asapCallback("cb-1")}, nil); err == nil {
		t.Fatal("expected error from ledger lookup")
	}
}

// Sink failures are best-effort: one dead sink does not stop the others and
// does not fail the check.
func TestNotifier_SinkFailureIsBestEffort(t *testing.T) {
	dead := &captureSink{name: "dead", err: errors.New("unreachable")}
	alive := &captureSink{name: "alive"}
	n := NewNotifier(NewMemoryLedger(), []Sink{dead, alive}, zap.NewNop())

	alert, err := n.CheckVisible(context.Background(), "+15550001111", []feed.Callback{asapCallback("cb-1")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil || alert.Count != 1 {
		t.Fatalf("expected an alert for one record, got %+v", alert)
	}
	if len(alive.alerts) != 1 {
		t.Fatalf("expected the healthy sink to deliver, got %d", len(alive.alerts))
	}
}

func TestNotifier_EmptyVisiblePage(t *testing.T) {
	n := NewNotifier(NewMemoryLedger(), nil, zap.NewNop())
	alert, err := n.CheckVisible(context.Background(), "+15550001111", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Fatalf("expected nil, got %+v", alert)
	}
}

func TestAlertMessage(t *testing.T) {
	if msg := AlertMessage(1); msg != "1 new ASAP callback request needs immediate attention" {
		t.Fatalf("unexpected singular: %q", msg)
	}
	if msg := AlertMessage(3); msg != "3 new ASAP callback requests need immediate attention" {
		t.Fatalf("unexpected plural: %q", msg)
	}
}
