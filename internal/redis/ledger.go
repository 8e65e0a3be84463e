package redis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// NotifiedLedger is the redis-backed notify.Ledger. Alerted record ids live
// in one set per business, so the ledger survives service restarts and is
// shared when multiple instances poll the same business.
type NotifiedLedger struct {
	client *Client
	logger *zap.Logger
}

// NewNotifiedLedger creates a redis-backed ledger.
func NewNotifiedLedger(client *Client, logger *zap.Logger) *NotifiedLedger {
	return &NotifiedLedger{
		client: client,
		logger: logger,
	}
}

func (l *NotifiedLedger) key(businessNumber string) string {
	return fmt.Sprintf("notified:%s", businessNumber)
}

// Has reports whether the record id was already alerted for the business.
func (l *NotifiedLedger) Has(ctx context.Context, businessNumber, recordID string) (bool, error) {
	found, err := l.client.rdb.SIsMember(ctx, l.key(businessNumber), recordID).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember failed: %w", err)
	}
	return found, nil
}

// Record marks the record ids as alerted. The set is never trimmed or
// expired: an id once notified stays suppressed.
func (l *NotifiedLedger) Record(ctx context.Context, businessNumber string, recordIDs []string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	members := make([]interface{}, len(recordIDs))
	for i, id := range recordIDs {
		members[i] = id
	}

	if err := l.client.rdb.SAdd(ctx, l.key(businessNumber), members...).Err(); err != nil {
		return fmt.Errorf("redis sadd failed: %w", err)
	}

	l.logger.Debug("recorded notified ids",
		zap.String("business_number", businessNumber),
		zap.Int("count", len(recordIDs)),
	)
	return nil
}
