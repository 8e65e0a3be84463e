package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// SESSink emails alerts to the operator via AWS SES.
type SESSink struct {
	client *ses.Client
	from   string
	to     string
	logger *zap.Logger
}

// SESConfig holds SES sink settings.
type SESConfig struct {
	Region    string
	FromEmail string
	ToEmail   string
}

// NewSESSink creates an SES-backed email sink.
func NewSESSink(ctx context.Context, cfg SESConfig, logger *zap.Logger) (*SESSink, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for SES: %w", err)
	}
	if cfg.ToEmail == "" {
		return nil, fmt.Errorf("SES sink requires an operator email address")
	}

	return &SESSink{
		client: ses.NewFromConfig(awsCfg),
		from:   cfg.FromEmail,
		to:     cfg.ToEmail,
		logger: logger,
	}, nil
}

func (s *SESSink) Name() string { return "ses" }

// Deliver sends the alert as a plain-text email.
func (s *SESSink) Deliver(ctx context.Context, alert Alert) error {
	subject := fmt.Sprintf("Urgent callbacks for %s", alert.BusinessNumber)
	body := fmt.Sprintf("%s\n\nRecord ids:\n%s\n",
		alert.Message, strings.Join(alert.RecordIDs, "\n"))

	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{s.to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}

	s.logger.Info("alert delivered via SES",
		zap.String("alert_id", alert.ID),
		zap.String("to", s.to),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}
