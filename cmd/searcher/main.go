// Command searcher serves boolean and proximity queries over HTTP from the
// snapshots written by cmd/indexer.
//
// Usage:
//
//	go run ./cmd/searcher [-config configs/development.yaml] [-data-dir dir]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	dataDir := flag.String("data-dir", "", "snapshot directory (overrides index.dataDir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.Index.DataDir = *dataDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port, "data_dir", cfg.Index.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := analysis.New(cfg.Analysis, nil)
	if err != nil {
		slog.Error("failed to set up analysis pipeline", "error", err)
		os.Exit(1)
	}
	m := metrics.New(nil)
	checker := health.NewChecker()

	opts := []engine.Option{
		engine.WithMetrics(m),
		engine.WithMaxQueryLength(cfg.Search.MaxQueryLength),
	}

	var queryCache *cache.QueryCache
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		queryCache = cache.New(cache.NewMemoryBackend(cfg.Cache.Size, cfg.Cache.TTL), cache.WithMetrics(m))
	case config.CacheRedis:
		redisClient, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			break
		}
		defer redisClient.Close()
		checker.Register("redis", health.PingCheck(redisClient.Ping, true))
		queryCache = cache.New(cache.NewRedisBackend(redisClient, cfg.Cache.TTL), cache.WithMetrics(m))
	}
	if queryCache != nil {
		opts = append(opts, engine.WithCache(queryCache))
		slog.Info("search cache enabled", "backend", cfg.Cache.Backend, "ttl", cfg.Cache.TTL)
	}

	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()
		opts = append(opts, engine.WithTracker(collector))
		slog.Info("analytics collector enabled", "topic", cfg.Kafka.Topics.AnalyticsEvents)
	}

	eng, err := engine.Open(cfg.Index.DataDir, pipeline, opts...)
	if err != nil {
		slog.Error("failed to open index", "error", err)
		os.Exit(1)
	}
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		stats := eng.Store().Stats()
		if len(eng.Warnings()) > 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: eng.Warnings()[0]}
		}
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, generation %s", stats.Documents, stats.Generation),
		}
	})

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownMetrics(shutdownCtx)
		}()
	}

	mux := http.NewServeMux()
	var c handler.Cache
	if queryCache != nil {
		c = queryCache
	}
	handler.New(eng, c).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Chain(mux,
		middleware.RequestID,
		middleware.CORS(cfg.Server.CORSOrigins),
		middleware.RateLimit(cfg.Server.RateLimitPerMinute),
		middleware.Metrics(m),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*pkgredis.Client, error) {
	var client *pkgredis.Client
	err := resilience.Retry(ctx, "redis connect", resilience.RetryConfig{Attempts: 3}, func(ctx context.Context) error {
		c, err := pkgredis.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		client = c
		return nil
	})
	return client, err
}
