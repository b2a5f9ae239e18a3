// Package engine is the query entry point: it parses a raw query, dispatches
// it to the boolean evaluator or the proximity matcher, and reports the
// outcome as a Result. Search never fails; problems surface as diagnostics.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/snapshot"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/boolean"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/proximity"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
)

// Query outcomes used as metric labels.
const (
	OutcomeHits     = "hits"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
)

type Result struct {
	Query       string   `json:"query"`
	Kind        string   `json:"kind"`
	Terms       []string `json:"terms"`
	Documents   []string `json:"documents"`
	TotalHits   int      `json:"total_hits"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	LatencyMs   int64    `json:"latency_ms"`
	CacheHit    bool     `json:"cache_hit"`
}

// ResultCache memoizes results per query and index generation.
type ResultCache interface {
	GetOrCompute(ctx context.Context, query, generation string, compute func() (*Result, error)) (*Result, bool, error)
}

// Tracker receives analytics events.
type Tracker interface {
	Track(event any)
}

type Engine struct {
	store          *index.Store
	stem           analysis.StemFunc
	stemProximity  bool
	maxQueryLength int
	warnings       []string
	cache          ResultCache
	metrics        *metrics.Metrics
	tracker        Tracker
	logger         *slog.Logger
	now            func() time.Time
}

type Option func(*Engine)

func WithCache(c ResultCache) Option {
	return func(e *Engine) { e.cache = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithTracker(t Tracker) Option {
	return func(e *Engine) { e.tracker = t }
}

// WithMaxQueryLength rejects longer queries; zero or less means unlimited.
func WithMaxQueryLength(n int) Option {
	return func(e *Engine) { e.maxQueryLength = n }
}

// WithWarnings attaches diagnostics to every result, e.g. a missing index.
func WithWarnings(w ...string) Option {
	return func(e *Engine) { e.warnings = append(e.warnings, w...) }
}

// New builds an engine over store. Boolean terms are stemmed with the
// pipeline's stemmer; proximity terms are stemmed only when the positional
// index was built in stemmed mode.
func New(store *index.Store, pipeline *analysis.Pipeline, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		stem:          pipeline.Stem(),
		stemProximity: pipeline.PositionalMode() == config.PositionalStemmed,
		logger:        slog.Default().With("component", "query-engine"),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open loads the snapshots in dataDir. A missing index is not fatal: the
// engine serves an empty index in its place and every result carries a
// warning naming what was not found.
func Open(dataDir string, pipeline *analysis.Pipeline, opts ...Option) (*Engine, error) {
	loaded, err := snapshot.LoadDir(dataDir)
	switch {
	case errors.Is(err, apperrors.ErrMissingIndex):
		warning := fmt.Sprintf("index not found in %s; all terms will be reported as not found", dataDir)
		slog.Default().With("component", "query-engine").Warn("serving empty index", "data_dir", dataDir, "error", err)
		store := index.NewStore(nil, nil)
		return New(store, pipeline, append(opts, WithWarnings(warning))...), nil
	case err != nil:
		return nil, fmt.Errorf("loading index from %s: %w", dataDir, err)
	}
	for _, name := range loaded.Missing {
		warning := fmt.Sprintf("%s not found in %s; queries that need it will match nothing", name, dataDir)
		slog.Default().With("component", "query-engine").Warn("serving partial index", "data_dir", dataDir, "missing", name)
		opts = append(opts, WithWarnings(warning))
	}
	store := index.NewStore(loaded.Inverted, loaded.Positional, index.WithGeneration(loaded.Generation()))
	e := New(store, pipeline, opts...)
	e.logger.Info("index loaded",
		"data_dir", dataDir,
		"documents", store.Stats().Documents,
		"inverted_terms", loaded.InvertedInfo.TermCount,
		"positional_terms", loaded.PositionalInfo.TermCount,
		"generation", store.Generation(),
	)
	return e, nil
}

// Store exposes the read-only index for inspection endpoints.
func (e *Engine) Store() *index.Store {
	return e.store
}

// Warnings returns the load-time diagnostics.
func (e *Engine) Warnings() []string {
	return e.warnings
}

// Search evaluates raw and never returns nil.
func (e *Engine) Search(ctx context.Context, raw string) *Result {
	start := e.now()
	log := logger.FromContext(ctx).With("component", "query-engine")

	if e.maxQueryLength > 0 && len(raw) > e.maxQueryLength {
		res := &Result{
			Query:       raw,
			Kind:        parser.KindBoolean.String(),
			Terms:       []string{},
			Documents:   []string{},
			Diagnostics: []string{fmt.Sprintf("query exceeds maximum length of %d bytes", e.maxQueryLength)},
		}
		e.finish(ctx, log, res, start, OutcomeRejected)
		return res
	}

	q := parser.Parse(raw, e.stem)
	var (
		res *Result
		hit bool
	)
	if e.cache != nil {
		cached, ok, err := e.cache.GetOrCompute(ctx, q.Canonical(), e.store.Generation(), func() (*Result, error) {
			return e.evaluate(raw, q), nil
		})
		if err != nil {
			log.Warn("query cache failed, evaluating directly", "error", err)
		} else {
			res, hit = cached, ok
		}
	}
	if res == nil {
		res = e.evaluate(raw, q)
	}
	// Cached values are shared between callers, and the cache key is the
	// parsed query, so report the query as this caller wrote it.
	out := *res
	out.Query = raw
	out.CacheHit = hit

	outcome := OutcomeHits
	if out.TotalHits == 0 {
		outcome = OutcomeEmpty
	}
	e.finish(ctx, log, &out, start, outcome)
	return &out
}

func (e *Engine) evaluate(raw string, q parser.Query) *Result {
	res := &Result{
		Query: raw,
		Kind:  q.Kind.String(),
	}

	switch q.Kind {
	case parser.KindProximity:
		if e.stemProximity {
			q.Proximity.Term1 = e.stem(q.Proximity.Term1)
			q.Proximity.Term2 = e.stem(q.Proximity.Term2)
		}
		res.Terms = q.Terms()
		res.Documents, res.Diagnostics = proximity.Match(q.Proximity, e.store)
	default:
		res.Terms = q.Terms()
		res.Documents = boolean.Evaluate(q.Tokens, e.store)
	}
	res.TotalHits = len(res.Documents)
	if len(e.warnings) > 0 {
		res.Diagnostics = append(append([]string{}, e.warnings...), res.Diagnostics...)
	}
	return res
}

func (e *Engine) finish(ctx context.Context, log *slog.Logger, res *Result, start time.Time, outcome string) {
	elapsed := e.now().Sub(start)
	res.LatencyMs = elapsed.Milliseconds()

	if e.metrics != nil {
		e.metrics.QueriesTotal.WithLabelValues(res.Kind, outcome).Inc()
		e.metrics.QueryLatency.WithLabelValues(res.Kind).Observe(elapsed.Seconds())
		e.metrics.QueryResults.Observe(float64(res.TotalHits))
	}

	for _, d := range res.Diagnostics {
		log.Warn("query diagnostic", "query", res.Query, "diagnostic", d)
	}
	log.Info("query executed",
		"query", res.Query,
		"kind", res.Kind,
		"terms", res.Terms,
		"results", res.TotalHits,
		"cache_hit", res.CacheHit,
		"latency_ms", res.LatencyMs,
	)

	if e.tracker != nil {
		eventType := analytics.EventSearch
		if res.TotalHits == 0 {
			eventType = analytics.EventZeroResult
		}
		e.tracker.Track(analytics.SearchEvent{
			Type:        eventType,
			Query:       res.Query,
			Kind:        res.Kind,
			Terms:       res.Terms,
			TotalHits:   res.TotalHits,
			LatencyMs:   res.LatencyMs,
			CacheHit:    res.CacheHit,
			Diagnostics: res.Diagnostics,
			Timestamp:   start.UTC(),
			RequestID:   logger.RequestID(ctx),
		})
	}
}
