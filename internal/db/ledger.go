package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NotifiedLedger is the postgres-backed notify.Ledger. One row per alerted
// record id per business; inserts are idempotent so re-recording an id is
// harmless.
type NotifiedLedger struct {
	db     *DB
	logger *zap.Logger
}

// NewNotifiedLedger creates a postgres-backed ledger.
func NewNotifiedLedger(db *DB, logger *zap.Logger) *NotifiedLedger {
	return &NotifiedLedger{
		db:     db,
		logger: logger,
	}
}

// Has reports whether the record id was already alerted for the business.
func (l *NotifiedLedger) Has(ctx context.Context, businessNumber, recordID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notified_ids
			WHERE business_number = $1 AND record_id = $2
		)
	`

	var found bool
	if err := l.db.Pool().QueryRow(ctx, query, businessNumber, recordID).Scan(&found); err != nil {
		return false, fmt.Errorf("query notified_ids: %w", err)
	}
	return found, nil
}

// Record marks the record ids as alerted for the business.
func (l *NotifiedLedger) Record(ctx context.Context, businessNumber string, recordIDs []string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO notified_ids (business_number, record_id)
		VALUES ($1, $2)
		ON CONFLICT (business_number, record_id) DO NOTHING
	`

	for _, id := range recordIDs {
		if _, err := l.db.Pool().Exec(ctx, query, businessNumber, id); err != nil {
			return fmt.Errorf("insert notified id %s: %w", id, err)
		}
	}

	l.logger.Debug("recorded notified ids",
		zap.String("business_number", businessNumber),
		zap.Int("count", len(recordIDs)),
	)
	return nil
}
