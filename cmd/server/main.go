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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/txingest/internal/adapter/http"
	"github.com/iho/txingest/internal/adapter/http/handler"
	"github.com/iho/txingest/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/txingest/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/txingest/internal/adapter/repository/redis"
	"github.com/iho/txingest/internal/adapter/source/filesystem"
	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/auth"
	"github.com/iho/txingest/internal/infrastructure/config"
	"github.com/iho/txingest/internal/infrastructure/eventpublisher"
	"github.com/iho/txingest/internal/infrastructure/logger"
	"github.com/iho/txingest/internal/infrastructure/metrics"
	"github.com/iho/txingest/internal/infrastructure/postgres"
	"github.com/iho/txingest/internal/infrastructure/redis"
	"github.com/iho/txingest/internal/infrastructure/scheduler"
	"github.com/iho/txingest/internal/usecase"
)

const (
	runLockKey              = "pipeline"
	rateLimiterCleanupEvery = time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Error().Err(err).Msg("server failed")
		stop()
		os.Exit(1)
	}

	appLogger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	fx, err := loadFxTable(cfg.FxRatesFile)
	if err != nil {
		return err
	}
	logger.Info().Int("currencies", fx.Len()).Msg("fx table loaded")

	// PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return err
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Repositories
	idGen := postgresRepo.NewULIDGenerator()
	store := postgresRepo.NewLedgerStore(pool, postgresRepo.NewTxManager(pool), postgresRepo.NewRetrier(logger))

	var (
		redisCmd         goredis.Cmdable
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
		pipelineOpts     []usecase.PipelineOption
	)

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	switch {
	case errors.Is(err, redis.ErrNotConfigured):
		logger.Info().Msg("redis not configured, summary cache, run lock and trigger idempotency disabled")
	case err != nil:
		return fmt.Errorf("failed to connect to redis: %w", err)
	default:
		defer redisClient.Close()
		logger.Info().Msg("connected to redis")

		redisCmd = redisClient
		cache = redisRepo.NewCache(redisClient)
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		pipelineOpts = append(pipelineOpts, usecase.WithRunLock(redisRepo.NewRunLock(redisClient, runLockKey, cfg.RunLockTTL)))
	}

	// Events
	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	events := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Publisher:   publisher,
		IDGenerator: idGen,
		Metrics:     m,
		Logger:      logger,
	})

	// Use cases
	queryUC := usecase.NewQueryUseCase(store, cache, logger)
	pipelineUC := usecase.NewPipelineUseCase(
		filesystem.NewSource(cfg.InputDir),
		store,
		fx,
		idGen,
		logger,
		pipelineOpts...,
	)

	sched := scheduler.New(scheduler.Config{
		Runner:     pipelineUC,
		Interval:   cfg.PipelineInterval,
		RunOnStart: cfg.PipelineRunOnStart,
		Observers:  []usecase.RunObserver{m, queryUC, events},
		Logger:     logger,
	})

	// HTTP
	var (
		verifier    middleware.TokenVerifier
		authHandler *handler.AuthHandler
	)
	if cfg.AuthEnabled {
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		verifier = jwtManager
		authHandler = handler.NewAuthHandler(jwtManager, logger)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.TriggerRateLimit, cfg.TriggerRateBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PipelineHandler:    handler.NewPipelineHandler(sched, m, logger),
		TransactionHandler: handler.NewTransactionHandler(queryUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisCmd),
		AuthHandler:        authHandler,
		Logger:             logger,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		RateLimiter:        rateLimiter,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		TokenVerifier:      verifier,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Events outlive the scheduler so the last run is still published.
	eventsCtx, stopEvents := context.WithCancel(context.WithoutCancel(ctx))
	defer stopEvents()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer stopEvents()
		return ignoreCanceled(sched.Start(gctx))
	})

	g.Go(func() error {
		return ignoreCanceled(events.Start(eventsCtx))
	})

	g.Go(func() error {
		rateLimiter.StartCleanup(gctx, rateLimiterCleanupEvery)
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("port", cfg.HTTPPort).Str("input_dir", cfg.InputDir).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadFxTable reads the rates file, or returns the built-in table when
// path is empty.
func loadFxTable(path string) (domain.FxTable, error) {
	if path == "" {
		return domain.DefaultFxTable(), nil
	}

	fx, err := domain.LoadFxTable(path)
	if err != nil {
		return domain.FxTable{}, fmt.Errorf("failed to load fx rates: %w", err)
	}
	return fx, nil
}

// newPublisher returns the RabbitMQ publisher when AMQP is configured and a
// logging publisher otherwise.
func newPublisher(cfg *config.Config, logger zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if cfg.AMQPURL == "" {
		logger.Info().Msg("amqp not configured, run events are only logged")
		return eventpublisher.NewLogPublisher(logger), func() {}, nil
	}

	p, err := eventpublisher.NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to rabbitmq")

	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close rabbitmq publisher")
		}
	}, nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
