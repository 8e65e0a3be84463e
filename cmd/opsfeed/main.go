package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/api"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/circuitbreaker"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/config"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/db"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/events"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/feed"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/metrics"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/notify"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/observ"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/poller"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/readstate"
	"github.com/syedhalizaidi/stallaeai-admin-sub000/internal/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting opsfeed",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.Strings("businesses", cfg.BusinessNumbers),
		zap.Duration("poll_interval", cfg.FeedPollInterval),
	)

	ctx := context.Background()

	// Redis backs the notified ledger and rate limiting.
	var redisClient *redis.Client
	redisClient, err = redis.New(ctx, redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable",
			zap.Error(err),
			zap.String("host", cfg.RedisHost),
		)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Pick the notified ledger backend. Alerts are suppressed per recorded
	// id, so durability matters in production; memory is a dev fallback.
	var ledger notify.Ledger
	switch {
	case cfg.LedgerBackend == "redis" && redisClient != nil:
		ledger = redis.NewNotifiedLedger(redisClient, logger)
		logger.Info("using redis notified ledger")
	case cfg.LedgerBackend == "postgres":
		database, err := db.New(ctx, db.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		ledger = db.NewNotifiedLedger(database, logger)
		logger.Info("using postgres notified ledger")
	default:
		ledger = notify.NewMemoryLedger()
		logger.Warn("using in-memory notified ledger, alerts will repeat after restart")
	}

	var rateLimiter *redis.RateLimiter
	if redisClient != nil {
		rateLimiter = redis.NewRateLimiter(redisClient, logger, redis.RateLimitConfig{
			Limit:  100,
			Window: 1 * time.Minute,
		})
	}

	// Alert sinks: log always, the rest by configuration.
	sinks := []notify.Sink{notify.NewLogSink(logger)}

	if cfg.AlertWebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(notify.WebhookConfig{
			URL:     cfg.AlertWebhookURL,
			Timeout: time.Duration(cfg.AlertWebhookTimeout) * time.Second,
		}, logger))
	}

	if cfg.AlertSMSNumber != "" {
		snsSink, err := notify.NewSNSSink(ctx, notify.SNSConfig{
			Region:      cfg.SNSRegion,
			PhoneNumber: cfg.AlertSMSNumber,
		}, logger)
		if err != nil {
			logger.Warn("SNS sink unavailable, SMS alerts disabled", zap.Error(err))
		} else {
			sinks = append(sinks, snsSink)
		}
	}

	if cfg.AlertEmail != "" {
		sesSink, err := notify.NewSESSink(ctx, notify.SESConfig{
			Region:    cfg.AWSRegion,
			FromEmail: cfg.SESFromEmail,
			ToEmail:   cfg.AlertEmail,
		}, logger)
		if err != nil {
			logger.Warn("SES sink unavailable, email alerts disabled", zap.Error(err))
		} else {
			sinks = append(sinks, sesSink)
		}
	}

	logger.Info("alert sinks configured", zap.Int("count", len(sinks)))

	notifier := notify.NewNotifier(ledger, sinks, logger)

	// Optional downstream event queue.
	var publisher poller.EventPublisher
	if cfg.EventsQueueURL != "" {
		producer, err := events.NewProducer(ctx, events.Config{
			Region:   cfg.EventsSQSRegion,
			QueueURL: cfg.EventsQueueURL,
		}, logger)
		if err != nil {
			logger.Warn("sqs producer unavailable, events will not be published", zap.Error(err))
		} else {
			publisher = producer
		}
	}

	// Feed client behind a circuit breaker.
	feedClient := feed.NewClient(feed.ClientConfig{
		BaseURL: cfg.FeedBaseURL,
		APIKey:  cfg.FeedAPIKey,
		Timeout: cfg.FeedTimeout,
	}, logger)

	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig("feed"), logger)
	fetcher := circuitbreaker.NewProtectedFetcher(feedClient, breaker, logger)

	aggregator := feed.NewAggregator(logger)

	pollers := make(map[string]*poller.Poller, len(cfg.BusinessNumbers))
	for _, number := range cfg.BusinessNumbers {
		tracker := readstate.New(feedClient, logger)
		pollers[number] = poller.New(number, fetcher, aggregator, notifier, tracker, publisher, poller.Config{
			PollInterval: cfg.FeedPollInterval,
			PageSize:     cfg.FeedPageSize,
		}, logger)
	}
	manager := poller.NewManager(pollers, logger)

	pollCtx, pollCancel := context.WithCancel(context.Background())
	defer pollCancel()
	go manager.Start(pollCtx)
	logger.Info("pollers started", zap.Int("count", len(pollers)))

	// Publish breaker state for dashboards.
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				metrics.SetBreakerState(int(breaker.GetState()))
			}
		}
	}()

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			next.ServeHTTP(ww, req)

			logger.Info("request completed",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration_ms", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(req.Context())),
			)
		})
	})

	handler := api.NewHandler(logger, manager, breaker)
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.RateLimitMiddleware(rateLimiter, logger, api.BusinessKeyFunc))

		r.Get("/businesses/{number}/feed/{domain}", handler.GetDomainFeed)
		r.Get("/businesses/{number}/summary", handler.GetSummary)
		r.Post("/businesses/{number}/read", handler.MarkRead)
		r.Get("/breaker", handler.GetBreakerStats)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		pollCancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
