package feed

import (
	"time"

	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/metrics"
)

// Aggregator turns a batch of raw feed records into a Snapshot. It owns no
// state between batches; every fetch cycle rebuilds the snapshot from
// scratch.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Build classifies, normalizes, sorts, and dedupes one batch of raw records.
// Non-pending records are dropped. Records with malformed detail payloads
// are logged and surface as food orders with empty details rather than
// failing the batch.
func (a *Aggregator) Build(businessNumber string, raws []RawRecord) *Snapshot {
	snap := &Snapshot{
		BusinessNumber: businessNumber,
		FetchedAt:      time.Now().UTC(),
		Food:           []FoodOrder{},
		Reservations:   []Reservation{},
		Callbacks:      []Callback{},
		FAQs:           []FAQ{},
	}

	for _, raw := range raws {
		if !Pending(raw) {
			continue
		}

		domain, details, err := Classify(raw)
		if err != nil {
			a.logger.Warn("malformed order_details, defaulting to food",
				zap.String("record_id", raw.ID),
				zap.Error(err),
			)
		}

		switch domain {
		case DomainCallback:
			snap.Callbacks = append(snap.Callbacks, NormalizeCallback(raw, details))
		case DomainFAQ:
			snap.FAQs = append(snap.FAQs, NormalizeFAQ(raw, details))
		case DomainReservation:
			snap.Reservations = append(snap.Reservations, NormalizeReservation(raw, details))
		default:
			snap.Food = append(snap.Food, NormalizeFood(raw, details))
		}
	}

	SortNewestFirst(snap.Food)
	SortNewestFirst(snap.Reservations)
	SortNewestFirst(snap.Callbacks)
	SortNewestFirst(snap.FAQs)

	before := len(snap.Callbacks)
	snap.Callbacks = DedupeCallbacks(snap.Callbacks)
	if dropped := before - len(snap.Callbacks); dropped > 0 {
		metrics.RecordDeduped(dropped)
		a.logger.Debug("collapsed duplicate callbacks",
			zap.String("business_number", businessNumber),
			zap.Int("dropped", dropped),
		)
	}

	for domain, count := range snap.Totals() {
		metrics.RecordClassified(string(domain), count)
	}

	return snap
}
