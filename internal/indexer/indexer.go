// Package indexer builds the inverted and positional indexes from a corpus
// and persists them as snapshots.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/corpus"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/snapshot"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
)

// BuildInvertedIndex counts every term occurrence per document.
func BuildInvertedIndex(docs map[string][]string) index.InvertedIndex {
	inv := index.InvertedIndex{}
	for doc, terms := range docs {
		for _, term := range terms {
			inv.Add(term, doc)
		}
	}
	return inv
}

// BuildPositionalIndex tokenizes each document and records the 1-based
// position of every token.
func BuildPositionalIndex(docs map[string]string, tokenize analysis.TokenizeFunc) index.PositionalIndex {
	pos := index.PositionalIndex{}
	for doc, text := range docs {
		for i, tok := range tokenize(text) {
			pos.Append(tok, doc, i+1)
		}
	}
	return pos
}

// Tracker receives analytics events. *analytics.Collector satisfies it.
type Tracker interface {
	Track(event any)
}

// Result summarizes one rebuild.
type Result struct {
	Documents       int              `json:"documents"`
	Skipped         []corpus.Skipped `json:"skipped"`
	InvertedTerms   int              `json:"invertedTerms"`
	PositionalTerms int              `json:"positionalTerms"`
	Duration        time.Duration    `json:"duration"`
	Snapshot        snapshot.Set     `json:"-"`
}

type Indexer struct {
	reader    *corpus.Reader
	pipeline  *analysis.Pipeline
	writer    *snapshot.Writer
	metrics   *metrics.Metrics
	tracker   Tracker
	exportDir string
	logger    *slog.Logger
}

type Option func(*Indexer)

func WithMetrics(m *metrics.Metrics) Option {
	return func(ix *Indexer) { ix.metrics = m }
}

func WithTracker(t Tracker) Option {
	return func(ix *Indexer) { ix.tracker = t }
}

// WithJSONExport also writes inverted_index.json and positional_index.json
// into dir after each rebuild.
func WithJSONExport(dir string) Option {
	return func(ix *Indexer) { ix.exportDir = dir }
}

func New(reader *corpus.Reader, pipeline *analysis.Pipeline, writer *snapshot.Writer, opts ...Option) *Indexer {
	ix := &Indexer{
		reader:   reader,
		pipeline: pipeline,
		writer:   writer,
		logger:   slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Build reads the corpus and builds both indexes without persisting them.
func (ix *Indexer) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	res, err := ix.reader.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	tokenized := make(map[string][]string, len(res.Documents))
	raw := make(map[string]string, len(res.Documents))
	for _, doc := range res.Documents {
		tokenized[doc.ID] = ix.pipeline.Preprocess(doc.Content)
		raw[doc.ID] = doc.Content
		ix.logger.Debug("document preprocessed",
			"doc_id", doc.ID,
			"token_count", len(tokenized[doc.ID]),
		)
	}

	inv := BuildInvertedIndex(tokenized)
	pos := BuildPositionalIndex(raw, ix.pipeline.PositionalTokenizer())

	return &Result{
		Documents:       len(res.Documents),
		Skipped:         res.Skipped,
		InvertedTerms:   len(inv),
		PositionalTerms: len(pos),
		Duration:        time.Since(start),
		Snapshot: snapshot.Set{
			Inverted:   inv,
			Positional: pos,
			Corpus:     tokenized,
		},
	}, nil
}

// Run rebuilds both indexes from the corpus and writes the snapshots.
func (ix *Indexer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result, err := ix.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := ix.writer.WriteAll(ctx, result.Snapshot); err != nil {
		return nil, fmt.Errorf("writing snapshots: %w", err)
	}
	if ix.exportDir != "" {
		if err := snapshot.ExportJSON(filepath.Join(ix.exportDir, snapshot.LegacyInvertedFile), result.Snapshot.Inverted); err != nil {
			return nil, fmt.Errorf("exporting inverted index: %w", err)
		}
		if err := snapshot.ExportJSON(filepath.Join(ix.exportDir, snapshot.LegacyPositionalFile), result.Snapshot.Positional); err != nil {
			return nil, fmt.Errorf("exporting positional index: %w", err)
		}
	}
	result.Duration = time.Since(start)

	if ix.metrics != nil {
		ix.metrics.DocsIndexedTotal.Add(float64(result.Documents))
		ix.metrics.DocsSkippedTotal.Add(float64(len(result.Skipped)))
		ix.metrics.IndexTerms.WithLabelValues("inverted").Set(float64(result.InvertedTerms))
		ix.metrics.IndexTerms.WithLabelValues("positional").Set(float64(result.PositionalTerms))
		ix.metrics.IndexDocuments.Set(float64(len(result.Snapshot.Inverted.DocIDs())))
		ix.metrics.IndexBuildSeconds.Observe(result.Duration.Seconds())
	}
	if ix.tracker != nil {
		ix.tracker.Track(analytics.IndexEvent{
			Type:      analytics.EventIndexBuild,
			Documents: result.Documents,
			Skipped:   len(result.Skipped),
			Terms:     result.InvertedTerms,
			LatencyMs: result.Duration.Milliseconds(),
			Timestamp: time.Now(),
		})
	}

	ix.logger.Info("index rebuilt",
		"documents", result.Documents,
		"skipped", len(result.Skipped),
		"inverted_terms", result.InvertedTerms,
		"positional_terms", result.PositionalTerms,
		"duration", result.Duration,
	)
	return result, nil
}
