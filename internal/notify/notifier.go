package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/feed"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/metrics"
)

// Notifier detects newly observed urgent callbacks on the visible page and
// raises one batched alert for them.
type Notifier struct {
	ledger Ledger
	sinks  []Sink
	logger *zap.Logger
}

// NewNotifier creates a notifier writing through the given ledger and
// delivering to the given sinks.
func NewNotifier(ledger Ledger, sinks []Sink, logger *zap.Logger) *Notifier {
	return &Notifier{
		ledger: ledger,
		sinks:  sinks,
		logger: logger,
	}
}

// CheckVisible scans the currently visible callback page for ASAP requests
// that are unread, not locally acknowledged (readSeen), and not yet in the
// ledger. Eligible ids are recorded in the ledger first, then one batched
// alert is broadcast; a ledger write failure means no alert this cycle, so
// there is never an alert without a matching ledger entry.
//
// Only the visible page is considered: an urgent callback paginated out of
// view stays silent until it scrolls into view. The notifier is a
// view-level concern and that is deliberate.
//
// Returns the raised alert, or nil when nothing was eligible, so callers
// can correlate downstream work with the alert id.
func (n *Notifier) CheckVisible(ctx context.Context, businessNumber string, visible []feed.Callback, readSeen func(id string) bool) (*Alert, error) {
	var eligible []string
	for _, cb := range visible {
		if !cb.ASAP || cb.IsRead {
			continue
		}
		if readSeen != nil && readSeen(cb.ID) {
			continue
		}
		notified, err := n.ledger.Has(ctx, businessNumber, cb.ID)
		if err != nil {
			return nil, fmt.Errorf("ledger lookup: %w", err)
		}
		if notified {
			continue
		}
		eligible = append(eligible, cb.ID)
	}

	if len(eligible) == 0 {
		return nil, nil
	}

	if err := n.ledger.Record(ctx, businessNumber, eligible); err != nil {
		return nil, fmt.Errorf("ledger record: %w", err)
	}

	alert := Alert{
		ID:             uuid.New().String(),
		BusinessNumber: businessNumber,
		RecordIDs:      eligible,
		Count:          len(eligible),
		Message:        AlertMessage(len(eligible)),
		CreatedAt:      time.Now().UTC(),
	}

	for _, result := range Broadcast(ctx, n.sinks, alert) {
		if result.Err != nil {
			metrics.RecordAlert(result.Sink, "error")
			n.logger.Error("alert delivery failed",
				zap.String("alert_id", alert.ID),
				zap.String("sink", result.Sink),
				zap.Error(result.Err),
			)
			continue
		}
		metrics.RecordAlert(result.Sink, "ok")
	}

	return &alert, nil
}
