// Command analytics consumes query and index-build events from Kafka,
// aggregates them in memory, and serves the totals at GET /api/v1/analytics.
// When PostgreSQL is reachable it also restores the last snapshot on start,
// saves snapshots periodically, and appends every search to the query log.
//
// Usage:
//
//	go run ./cmd/analytics [-config configs/development.yaml]
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

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting analytics service", "port", cfg.Analytics.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := analytics.NewAggregator()
	checker := health.NewChecker()
	var history analytics.History

	db, err := connectPostgres(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, analytics will not be persisted", "error", err)
	} else {
		defer db.Close()
		store := aggregator.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			slog.Error("failed to create analytics schema", "error", err)
			os.Exit(1)
		}
		if latest, err := store.LatestSnapshot(ctx); err != nil {
			slog.Warn("could not restore analytics snapshot", "error", err)
		} else if latest != nil {
			agg.Restore(*latest)
			slog.Info("analytics restored", "total_searches", latest.TotalSearches)
		}
		agg.WithRecorder(store)
		history = store
		store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		checker.Register("postgres", health.PingCheck(db.Ping, true))
	}

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(agg))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	checker.Register("kafka", func(context.Context) health.ComponentHealth {
		st := consumer.Stats()
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d events processed, %d skipped", st.Processed, st.Failed),
		}
	})
	slog.Info("analytics consumer started",
		"topic", cfg.Kafka.Topics.AnalyticsEvents,
		"group", cfg.Kafka.ConsumerGroup,
	)

	m := metrics.New(nil)
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownMetrics(shutdownCtx)
		}()
	}

	mux := http.NewServeMux()
	analytics.NewHandler(agg, history).Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	chain := middleware.Chain(mux,
		middleware.RequestID,
		middleware.CORS(cfg.Server.CORSOrigins),
		middleware.Metrics(m),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Analytics.Port),
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

	slog.Info("analytics service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("analytics service stopped")
}

func connectPostgres(ctx context.Context, cfg config.PostgresConfig) (*postgres.Client, error) {
	var db *postgres.Client
	err := resilience.Retry(ctx, "postgres connect", resilience.RetryConfig{Attempts: 3}, func(ctx context.Context) error {
		c, err := postgres.New(ctx, cfg)
		if err != nil {
			return err
		}
		db = c
		return nil
	})
	return db, err
}
