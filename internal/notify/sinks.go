package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Alert is one batched urgent-callback notification. A single alert covers
// every newly observed ASAP callback in a fetch cycle, so a burst of urgent
// requests never floods the operator.
type Alert struct {
	ID             string    `json:"id"`
	BusinessNumber string    `json:"business_number"`
	RecordIDs      []string  `json:"record_ids"`
	Count          int       `json:"count"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

// AlertMessage builds the count-based, pluralized operator message.
func AlertMessage(count int) string {
	if count == 1 {
		return "1 new ASAP callback request needs immediate attention"
	}
	return fmt.Sprintf("%d new ASAP callback requests need immediate attention", count)
}

// Sink delivers an alert to one destination (log, webhook, SMS, email).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, alert Alert) error
}

// DeliveryResult is one sink's outcome for an alert. Delivery is
// best-effort: failures are reported, never retried, and never block the
// pipeline.
type DeliveryResult struct {
	Sink string
	Err  error
}

// Broadcast delivers the alert to every sink and reports per-sink results.
func Broadcast(ctx context.Context, sinks []Sink, alert Alert) []DeliveryResult {
	results := make([]DeliveryResult, 0, len(sinks))
	for _, sink := range sinks {
		results = append(results, DeliveryResult{
			Sink: sink.Name(),
			Err:  sink.Deliver(ctx, alert),
		})
	}
	return results
}

// LogSink writes alerts to the service log. Always configured; in
// development it is usually the only sink.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log-backed sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, alert Alert) error {
	s.logger.Info("urgent callback alert",
		zap.String("alert_id", alert.ID),
		zap.String("business_number", alert.BusinessNumber),
		zap.Int("count", alert.Count),
		zap.Strings("record_ids", alert.RecordIDs),
		zap.String("message", alert.Message),
	)
	return nil
}
