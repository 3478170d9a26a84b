package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/goals-ev-service/internal/cache"
	"github.com/cypherlabdev/goals-ev-service/internal/config"
	httpHandler "github.com/cypherlabdev/goals-ev-service/internal/handler/http"
	"github.com/cypherlabdev/goals-ev-service/internal/messaging"
	"github.com/cypherlabdev/goals-ev-service/internal/metrics"
	"github.com/cypherlabdev/goals-ev-service/internal/notify"
	"github.com/cypherlabdev/goals-ev-service/internal/provider/apifootball"
	"github.com/cypherlabdev/goals-ev-service/internal/service"
	"github.com/cypherlabdev/goals-ev-service/pkg/engine"
)

func main() {
	configPath := os.Getenv("GOALS_EV_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting goals-ev-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Build the decision engine; invalid weights or thresholds are fatal
	eng, err := engine.New(cfg.Engine.ToEngineParams())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid engine configuration")
	}
	logger.Info().Msg("decision engine initialized")

	// Create Redis cache
	redisCache := cache.NewRedisCache(
		cache.RedisCacheConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
			DedupTTL: cfg.Redis.DedupTTL,
		},
		logger,
	)
	defer redisCache.Close()

	// Test Redis connection
	if err := redisCache.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")

	m := metrics.NewMetrics()
	leagues := cfg.LeagueList()

	opts := []service.Option{}

	// Statistics provider drives the analysis cycle
	if cfg.Provider.APIKey != "" {
		client := apifootball.NewClient(
			apifootball.Config{
				BaseURL:           cfg.Provider.BaseURL,
				APIKey:            cfg.Provider.APIKey,
				BookmakerID:       cfg.Provider.BookmakerID,
				Timeout:           cfg.Provider.Timeout,
				RequestsPerSecond: cfg.Provider.RequestsPerSecond,
				Burst:             cfg.Provider.Burst,
				MaxRequestsPerRun: cfg.Provider.MaxRequestsPerRun,
				LastGames:         cfg.Provider.LastGames,
				FixturesTTL:       cfg.Provider.FixturesTTL,
				TeamStatsTTL:      cfg.Provider.TeamStatsTTL,
				OddsTTL:           cfg.Provider.OddsTTL,
			},
			logger,
			apifootball.WithCache(redisCache),
			apifootball.WithRecorder(m),
		)
		opts = append(opts, service.WithProvider(client))
		logger.Info().Int("leagues", len(leagues)).Msg("statistics provider initialized")
	} else {
		logger.Warn().Msg("no provider API key, analysis cycles disabled")
	}

	// Telegram notifications
	if cfg.Telegram.Enabled {
		notifier, err := notify.NewTelegramNotifier(
			notify.TelegramConfig{
				Token:        cfg.Telegram.BotToken,
				APIEndpoint:  cfg.Telegram.APIEndpoint,
				SendInterval: cfg.Telegram.SendInterval,
			},
			logger,
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram notifier")
		}
		opts = append(opts, service.WithNotifier(notifier))
	}

	// Kafka publication of evaluations
	var producer *messaging.KafkaProducer
	if cfg.Kafka.Enabled {
		producer = messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ProducerTopic, m, logger)
		defer producer.Close()
		opts = append(opts, service.WithPublisher(producer))
	}

	// Create analyzer service layer
	analyzer, err := service.NewAnalyzerService(
		eng,
		redisCache,
		m,
		service.Config{
			Leagues:      leagues,
			TeamDefaults: cfg.Engine.ToTeamDefaults(),
			DryRun:       cfg.Scheduler.DryRun,
			SendNegative: cfg.Telegram.SendNegative,
			ChatID:       cfg.Telegram.ChatID,
			AdminChatID:  cfg.Telegram.AdminChatID,
			ChatMap:      cfg.Telegram.ChatMap,
		},
		logger,
		opts...,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create analyzer service")
	}
	logger.Info().Bool("dry_run", cfg.Scheduler.DryRun).Msg("analyzer service initialized")

	// Kafka consumer of fixture snapshots
	if cfg.Kafka.Enabled {
		consumer := messaging.NewKafkaConsumer(
			messaging.KafkaConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				GroupID: cfg.Kafka.GroupID,
			},
			analyzer,
			m,
			logger,
		)
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka consumer failed")
			}
		}()
	}

	// Interval scheduler
	if cfg.Scheduler.Interval > 0 {
		go runScheduler(ctx, analyzer, cfg.Scheduler.Interval, logger)
	}

	// Setup HTTP server routes
	router := mux.NewRouter()

	// Health and monitoring endpoints
	router.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, redisCache)
	}).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler())

	// Register API routes
	httpHandler.NewAnalysisHandler(ctx, analyzer, logger).RegisterRoutes(router)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop consumer, scheduler and running cycles
	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// runScheduler runs an analysis cycle every interval until ctx is canceled
func runScheduler(ctx context.Context, analyzer *service.AnalyzerService, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", interval).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := analyzer.RunCycle(ctx)
			switch {
			case errors.Is(err, service.ErrCycleRunning):
				logger.Info().Msg("scheduled cycle skipped, previous cycle still running")
			case errors.Is(err, service.ErrNoProvider):
				logger.Warn().Msg("scheduled cycle skipped, no provider configured")
				return
			case err != nil:
				logger.Error().Err(err).Msg("scheduled cycle ended early")
			}
		}
	}
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "goals-ev").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, cache *cache.RedisCache) {
	// Check Redis connection
	if err := cache.Ping(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Redis unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
