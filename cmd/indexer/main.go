// Command indexer reads the corpus directory, builds the inverted and
// positional indexes, and writes them as snapshots into the data directory.
//
// Usage:
//
//	go run ./cmd/indexer [-config configs/development.yaml] [-corpus dir] [-data-dir dir] [-export-json dir]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/snapshot"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusDir := flag.String("corpus", "", "corpus directory (overrides corpus.dir)")
	dataDir := flag.String("data-dir", "", "snapshot directory (overrides index.dataDir)")
	exportDir := flag.String("export-json", "", "also write inverted_index.json and positional_index.json into this directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusDir != "" {
		cfg.Corpus.Dir = *corpusDir
	}
	if *dataDir != "" {
		cfg.Index.DataDir = *dataDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting index build",
		"corpus", cfg.Corpus.Dir,
		"data_dir", cfg.Index.DataDir,
		"positional_mode", cfg.Analysis.PositionalMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := analysis.New(cfg.Analysis, nil)
	if err != nil {
		slog.Error("failed to set up analysis pipeline", "error", err)
		os.Exit(1)
	}

	opts := []indexer.Option{indexer.WithMetrics(metrics.New(nil))}
	if *exportDir != "" {
		opts = append(opts, indexer.WithJSONExport(*exportDir))
	}
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
		defer producer.Close()
		collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		defer collector.Close()
		opts = append(opts, indexer.WithTracker(collector))
	}
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	ix := indexer.New(
		corpus.NewReader(cfg.Corpus),
		pipeline,
		snapshot.NewWriter(cfg.Index.DataDir, cfg.Index.LockTimeout),
		opts...,
	)
	result, err := ix.Run(ctx)
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	for _, s := range result.Skipped {
		slog.Warn("document skipped", "path", s.Path, "reason", s.Reason)
	}
	fmt.Printf("indexed %d documents (%d skipped): %d inverted terms, %d positional terms in %v\n",
		result.Documents, len(result.Skipped), result.InvertedTerms, result.PositionalTerms,
		result.Duration.Round(time.Millisecond))
}
