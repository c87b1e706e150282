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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/philosophy-walker/internal/adapter/memory"
	"github.com/user/philosophy-walker/internal/adapter/postgres"
	redis_adapter "github.com/user/philosophy-walker/internal/adapter/redis"
	"github.com/user/philosophy-walker/internal/bootstrap"
	"github.com/user/philosophy-walker/internal/delivery/http/handler"
	"github.com/user/philosophy-walker/internal/delivery/http/router"
	"github.com/user/philosophy-walker/internal/repository"
	"github.com/user/philosophy-walker/internal/usecase"
	"github.com/user/philosophy-walker/pkg/config"
	"github.com/user/philosophy-walker/pkg/logger"
	"github.com/user/philosophy-walker/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// --- Metrics ---
	m := metrics.New(prometheus.DefaultRegisterer)

	ctx := context.Background()
	checks := make(map[string]handler.HealthCheck)

	// --- Repositories ---
	var (
		traversalRepo repository.TraversalRepository = memory.NewTraversalRepo()
		edgeRepo      repository.GraphEdgeRepository = memory.NewGraphEdgeRepo()
		queueRepo     repository.QueueRepository
	)

	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatal("unable to connect to database", zap.Error(err))
		}
		defer dbpool.Close()
		if err := dbpool.Ping(ctx); err != nil {
			log.Fatal("unable to reach database", zap.Error(err))
		}
		if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
			log.Fatal("unable to prepare database schema", zap.Error(err))
		}
		traversalRepo = postgres.NewTraversalRepo(dbpool)
		edgeRepo = postgres.NewGraphEdgeRepo(dbpool)
		checks["postgres"] = dbpool.Ping
		log.Info("PostgreSQL connection pool established")
	} else {
		log.Warn("POSTGRES_URL not set, traversal results are kept in memory")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("unable to connect to Redis", zap.Error(err))
		}
		queueRepo = redis_adapter.NewQueueRepo(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("Redis connection established")
	} else {
		log.Warn("REDIS_ADDR not set, the traversal queue is disabled")
	}

	// --- Use Cases ---
	fetcher, releaseFetcher, err := bootstrap.NewPageFetcher(cfg, rdb, m, log)
	if err != nil {
		log.Fatal("invalid fetcher configuration", zap.Error(err))
	}
	traverser, err := usecase.NewTraverser(fetcher, cfg.WikiBaseURL, cfg.TargetPath, m, log)
	if err != nil {
		log.Fatal("invalid traversal configuration", zap.Error(err))
	}
	game := usecase.NewGame(traverser, traversalRepo, edgeRepo, queueRepo, m, log)

	var workers *usecase.WorkerPool
	if queueRepo != nil {
		workers = usecase.NewWorkerPool(game, cfg.QueueWorkers, time.Second, log)
		workers.Start(ctx)
		log.Info("queue workers started", zap.Int("workers", cfg.QueueWorkers))
	}

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(game, checks, log)
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, m, prometheus.DefaultGatherer, log),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.String("target", cfg.TargetURL()),
		zap.String("fetch_mode", cfg.FetchMode),
	)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if workers != nil {
		workers.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	// Workers and handlers are done with the fetcher now.
	releaseFetcher()

	log.Info("server exiting")
}
