package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting for the opsfeed service.
type Config struct {
	Port     int
	LogLevel string
	Env      string

	// Feed API
	FeedBaseURL      string
	FeedAPIKey       string
	FeedTimeout      time.Duration
	FeedPollInterval time.Duration
	FeedPageSize     int

	// Businesses to poll, keyed by their Twilio contact number
	BusinessNumbers []string

	// Notification ledger backend: redis, postgres, or memory
	LedgerBackend string

	// Redis (ledger + rate limiting)
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Postgres (ledger backend when redis is not used)
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Alert sinks
	AlertWebhookURL     string
	AlertWebhookTimeout int // seconds

	// AWS alert delivery
	AWSRegion       string
	SNSRegion       string // region for SNS SMS alerts
	AlertSMSNumber  string // operator phone number for SMS alerts
	SESFromEmail    string
	AlertEmail      string // operator email for alerts
	EventsQueueURL  string // SQS queue for urgent-callback events
	EventsSQSRegion string
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:     8080,
		LogLevel: "info",
		Env:      "development",

		FeedTimeout:      15 * time.Second,
		FeedPollInterval: 10 * time.Second,
		FeedPageSize:     100,

		LedgerBackend: "redis",

		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,

		DBHost:    "localhost",
		DBPort:    5432,
		DBUser:    "opsfeed",
		DBName:    "opsfeed",
		DBSSLMode: "disable",

		AlertWebhookTimeout: 30,
		AWSRegion:           "us-east-1",
		SESFromEmail:        "alerts@opsfeed.local",
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.Port = p
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if env := os.Getenv("ENV"); env != "" {
		cfg.Env = env
	}

	// Feed config
	if base := os.Getenv("FEED_BASE_URL"); base != "" {
		cfg.FeedBaseURL = strings.TrimRight(base, "/")
	}
	if cfg.FeedBaseURL == "" {
		return nil, fmt.Errorf("FEED_BASE_URL is required")
	}

	if key := os.Getenv("FEED_API_KEY"); key != "" {
		cfg.FeedAPIKey = key
	}

	if timeout := os.Getenv("FEED_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid FEED_TIMEOUT: %w", err)
		}
		cfg.FeedTimeout = d
	}

	if interval := os.Getenv("FEED_POLL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("invalid FEED_POLL_INTERVAL: %w", err)
		}
		cfg.FeedPollInterval = d
	}

	if size := os.Getenv("FEED_PAGE_SIZE"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return nil, fmt.Errorf("invalid FEED_PAGE_SIZE: %w", err)
		}
		cfg.FeedPageSize = n
	}

	if numbers := os.Getenv("BUSINESS_NUMBERS"); numbers != "" {
		for _, n := range strings.Split(numbers, ",") {
			if trimmed := strings.TrimSpace(n); trimmed != "" {
				cfg.BusinessNumbers = append(cfg.BusinessNumbers, trimmed)
			}
		}
	}
	if len(cfg.BusinessNumbers) == 0 {
		return nil, fmt.Errorf("BUSINESS_NUMBERS is required (comma-separated twilio numbers)")
	}

	if backend := os.Getenv("LEDGER_BACKEND"); backend != "" {
		switch backend {
		case "redis", "postgres", "memory":
			cfg.LedgerBackend = backend
		default:
			return nil, fmt.Errorf("invalid LEDGER_BACKEND: %q (want redis, postgres, or memory)", backend)
		}
	}

	// Redis config
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.RedisHost = host
	}

	if port := os.Getenv("REDIS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
		}
		cfg.RedisPort = p
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.RedisPassword = password
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		d, err := strconv.Atoi(db)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = d
	}

	// Database config
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DBHost = host
	}

	if port := os.Getenv("DB_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.DBPort = p
	}

	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DBUser = user
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DBPassword = password
	}

	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DBName = dbname
	}

	if sslmode := os.Getenv("DB_SSLMODE"); sslmode != "" {
		cfg.DBSSLMode = sslmode
	}

	// Alert sink config
	if url := os.Getenv("ALERT_WEBHOOK_URL"); url != "" {
		cfg.AlertWebhookURL = url
	}

	if timeout := os.Getenv("ALERT_WEBHOOK_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid ALERT_WEBHOOK_TIMEOUT: %w", err)
		}
		cfg.AlertWebhookTimeout = t
	}

	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.AWSRegion = region
	}

	if region := os.Getenv("SNS_REGION"); region != "" {
		cfg.SNSRegion = region
	} else {
		cfg.SNSRegion = cfg.AWSRegion
	}

	if number := os.Getenv("ALERT_SMS_NUMBER"); number != "" {
		cfg.AlertSMSNumber = number
	}

	if from := os.Getenv("SES_FROM_EMAIL"); from != "" {
		cfg.SESFromEmail = from
	}

	if email := os.Getenv("ALERT_EMAIL"); email != "" {
		cfg.AlertEmail = email
	}

	if url := os.Getenv("EVENTS_QUEUE_URL"); url != "" {
		cfg.EventsQueueURL = url
	}

	if region := os.Getenv("EVENTS_SQS_REGION"); region != "" {
		cfg.EventsSQSRegion = region
	} else {
		cfg.EventsSQSRegion = cfg.AWSRegion
	}

	return cfg, nil
}
