// Package events publishes urgent-callback events to SQS for downstream
// consumers (escalation workflows, analytics). Publishing is optional and
// best-effort; the alert pipeline does not depend on it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// Config holds SQS settings.
type Config struct {
	Region   string
	QueueURL string
}

// UrgentCallbackEvent is the payload sent per alerted record.
type UrgentCallbackEvent struct {
	RecordID       string `json:"record_id"`
	BusinessNumber string `json:"business_number"`
	CallbackNumber string `json:"callback_number"`
	CustomerName   string `json:"customer_name"`
	AlertID        string `json:"alert_id"`
	PublishedAt    int64  `json:"published_at"`
}

// Producer sends urgent-callback events to SQS.
type Producer struct {
	client   *sqs.Client
	queueURL string
	logger   *zap.Logger
}

// NewProducer creates an SQS producer.
func NewProducer(ctx context.Context, cfg Config, logger *zap.Logger) (*Producer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("sqs events producer initialized",
		zap.String("queue_url", cfg.QueueURL),
	)

	return &Producer{
		client:   sqs.NewFromConfig(awsCfg),
		queueURL: cfg.QueueURL,
		logger:   logger,
	}, nil
}

// Publish sends one urgent-callback event.
func (p *Producer) Publish(ctx context.Context, event UrgentCallbackEvent) (string, error) {
	if event.PublishedAt == 0 {
		event.PublishedAt = time.Now().UnixNano()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	}

	result, err := p.client.SendMessage(ctx, input)
	if err != nil {
		p.logger.Error("failed to publish urgent-callback event",
			zap.Error(err),
			zap.String("record_id", event.RecordID),
		)
		return "", fmt.Errorf("sqs send failed: %w", err)
	}

	return aws.ToString(result.MessageId), nil
}

// PublishBatch sends one event per alerted record, skipping failures.
func (p *Producer) PublishBatch(ctx context.Context, events []UrgentCallbackEvent) []string {
	messageIDs := make([]string, 0, len(events))
	for _, event := range events {
		msgID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish event", zap.Error(err))
			continue
		}
		messageIDs = append(messageIDs, msgID)
	}
	return messageIDs
}
