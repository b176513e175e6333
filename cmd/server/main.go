package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/helios/fss/internal/adapter/feed"
	httpAdapter "github.com/helios/fss/internal/adapter/http"
	"github.com/helios/fss/internal/adapter/http/handler"
	"github.com/helios/fss/internal/adapter/http/middleware"
	postgresRepo "github.com/helios/fss/internal/adapter/repository/postgres"
	redisRepo "github.com/helios/fss/internal/adapter/repository/redis"
	"github.com/helios/fss/internal/infrastructure/config"
	"github.com/helios/fss/internal/infrastructure/logger"
	"github.com/helios/fss/internal/infrastructure/metrics"
	"github.com/helios/fss/internal/infrastructure/postgres"
	"github.com/helios/fss/internal/infrastructure/redis"
	"github.com/helios/fss/internal/infrastructure/scheduler"
	"github.com/helios/fss/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	snapshotRepo := postgresRepo.NewSnapshotRepository(pool)
	goalRepo := postgresRepo.NewGoalRepository(pool)
	commitmentRepo := postgresRepo.NewCommitmentRepository(pool)
	retrier := postgresRepo.NewRetrier().WithLogger(appLogger)
	idGen := postgresRepo.NewULIDGenerator()

	cache := redisRepo.NewCache(redisClient)
	ingestLock := redisRepo.NewIngestLock(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Bank feed sources
	var sources []usecase.TransactionSource
	if cfg.PersonalToken != "" {
		sources = append(sources, feed.NewStarlingSource("personal", cfg.PersonalAccountUID, cfg.PersonalToken, cfg.StarlingBaseURL))
	}
	if cfg.BusinessToken != "" {
		sources = append(sources, feed.NewStarlingSource("business", cfg.BusinessAccountUID, cfg.BusinessToken, cfg.StarlingBaseURL))
	}
	if len(sources) == 0 {
		log.Warn().Msg("no feed sources configured, ingestion will be skipped")
	}

	// Initialize use cases
	ingestUC := usecase.NewIngestUseCase(sources, ledgerRepo, txManager, ingestLock, retrier, idGen)
	recurrenceUC := usecase.NewRecurrenceUseCase(idGen)
	forecastUC := usecase.NewForecastUseCase()
	drawdownUC := usecase.NewDrawdownUseCase()
	pipelineUC := usecase.NewPipelineUseCase(
		ingestUC, recurrenceUC, forecastUC, drawdownUC,
		ledgerRepo, snapshotRepo, goalRepo, commitmentRepo,
		txManager, idGen, cache, cfg.PipelineConfig(),
	)
	snapshotUC := usecase.NewSnapshotUseCase(snapshotRepo, cache)
	goalUC := usecase.NewGoalUseCase(goalRepo, idGen)
	commitmentUC := usecase.NewCommitmentUseCase(commitmentRepo, idGen)

	// Initialize handlers
	snapshotHandler := handler.NewSnapshotHandler(snapshotUC, pipelineUC)
	goalHandler := handler.NewGoalHandler(goalUC)
	commitmentHandler := handler.NewCommitmentHandler(commitmentUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	routerCfg := httpAdapter.RouterConfig{
		SnapshotHandler:   snapshotHandler,
		GoalHandler:       goalHandler,
		CommitmentHandler: commitmentHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		Logger:            appLogger,
	}
	if cfg.RateLimitPerSecond > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	}
	router := httpAdapter.NewRouter(routerCfg)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start the daily evaluation worker
	schedCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()

	sched := scheduler.New(scheduler.Config{
		Pipeline: pipelineUC,
		Metrics:  metrics.New(),
		Logger:   appLogger,
		Interval: cfg.RunInterval,
	})
	go func() {
		if err := sched.Start(schedCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopScheduler()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
