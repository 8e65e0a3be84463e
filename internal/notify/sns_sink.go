package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

// SNSSink texts alerts to the operator's phone via AWS SNS.
type SNSSink struct {
	client      *sns.Client
	phoneNumber string
	logger      *zap.Logger
}

// SNSConfig holds SNS sink settings.
type SNSConfig struct {
	Region      string
	PhoneNumber string
}

// NewSNSSink creates an SNS-backed SMS sink.
func NewSNSSink(ctx context.Context, cfg SNSConfig, logger *zap.Logger) (*SNSSink, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for SNS: %w", err)
	}
	if cfg.PhoneNumber == "" {
		return nil, fmt.Errorf("SNS sink requires an operator phone number")
	}

	return &SNSSink{
		client:      sns.NewFromConfig(awsCfg),
		phoneNumber: cfg.PhoneNumber,
		logger:      logger,
	}, nil
}

func (s *SNSSink) Name() string { return "sns" }

// Deliver publishes the alert message as an SMS.
func (s *SNSSink) Deliver(ctx context.Context, alert Alert) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(s.phoneNumber),
		Message:     aws.String(fmt.Sprintf("[%s] %s", alert.BusinessNumber, alert.Message)),
	}

	result, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}

	s.logger.Info("alert delivered via SNS",
		zap.String("alert_id", alert.ID),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}
