package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/kafka"
)

const maxLatencySamples = 10000

type AggregatedStats struct {
	TotalSearches     int64        `json:"total_searches"`
	BooleanQueries    int64        `json:"boolean_queries"`
	ProximityQueries  int64        `json:"proximity_queries"`
	CacheHits         int64        `json:"cache_hits"`
	CacheMisses       int64        `json:"cache_misses"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	DiagnosticCount   int64        `json:"diagnostic_count"`
	IndexBuilds       int64        `json:"index_builds"`
	LastIndexedDocs   int          `json:"last_indexed_docs"`
	LastIndexedAt     *time.Time   `json:"last_indexed_at,omitempty"`
	AvgLatencyMs      float64      `json:"avg_latency_ms"`
	P50LatencyMs      int64        `json:"p50_latency_ms"`
	P95LatencyMs      int64        `json:"p95_latency_ms"`
	P99LatencyMs      int64        `json:"p99_latency_ms"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
	QueriesPerMinute  float64      `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// QueryRecorder persists individual search events; *Store implements it.
type QueryRecorder interface {
	RecordQuery(ctx context.Context, event SearchEvent) error
}

// Aggregator folds search and index events into running statistics.
type Aggregator struct {
	mu                sync.RWMutex
	stats             AggregatedStats
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
	recorder          QueryRecorder
	logger            *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// WithRecorder makes the aggregator also append every search to r.
func (a *Aggregator) WithRecorder(r QueryRecorder) *Aggregator {
	a.recorder = r
	return a
}

// Restore seeds the counters from a persisted snapshot. Latency samples and
// per-query tallies start empty.
func (a *Aggregator) Restore(s AggregatedStats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.TotalSearches = s.TotalSearches
	a.stats.BooleanQueries = s.BooleanQueries
	a.stats.ProximityQueries = s.ProximityQueries
	a.stats.CacheHits = s.CacheHits
	a.stats.CacheMisses = s.CacheMisses
	a.stats.ZeroResultCount = s.ZeroResultCount
	a.stats.DiagnosticCount = s.DiagnosticCount
	a.stats.IndexBuilds = s.IndexBuilds
	a.stats.LastIndexedDocs = s.LastIndexedDocs
	a.stats.LastIndexedAt = s.LastIndexedAt
	for _, q := range s.TopQueries {
		a.queryCounts[q.Query] = q.Count
	}
	for _, q := range s.ZeroResultQueries {
		a.zeroResultQueries[q.Query] = q.Count
	}
}

// Track records an event in-process.
func (a *Aggregator) Track(event any) {
	switch e := event.(type) {
	case SearchEvent:
		a.recordSearch(context.Background(), e)
	case IndexEvent:
		a.recordIndex(e)
	}
}

// HandleEvent decodes Kafka messages by their "type" field.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		var envelope struct {
			Type EventType `json:"type"`
		}
		if err := json.Unmarshal(value, &envelope); err != nil {
			agg.logger.Error("undecodable analytics event", "error", err)
			return nil
		}
		switch envelope.Type {
		case EventSearch, EventZeroResult:
			event, err := kafka.DecodeJSON[SearchEvent](value)
			if err != nil {
				return fmt.Errorf("decoding search event: %w", err)
			}
			agg.recordSearch(ctx, event)
		case EventIndexBuild:
			event, err := kafka.DecodeJSON[IndexEvent](value)
			if err != nil {
				return fmt.Errorf("decoding index event: %w", err)
			}
			agg.recordIndex(event)
		default:
			agg.logger.Warn("ignoring unknown analytics event", "type", envelope.Type)
		}
		return nil
	}
}

func (a *Aggregator) recordSearch(ctx context.Context, event SearchEvent) {
	a.mu.Lock()
	a.stats.TotalSearches++
	if event.Kind == "proximity" {
		a.stats.ProximityQueries++
	} else {
		a.stats.BooleanQueries++
	}
	if event.CacheHit {
		a.stats.CacheHits++
	} else {
		a.stats.CacheMisses++
	}
	a.stats.DiagnosticCount += int64(len(event.Diagnostics))
	a.queryCounts[event.Query]++
	if event.TotalHits == 0 {
		a.stats.ZeroResultCount++
		a.zeroResultQueries[event.Query]++
	}
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % maxLatencySamples
	}
	a.mu.Unlock()

	if a.recorder != nil {
		if err := a.recorder.RecordQuery(ctx, event); err != nil {
			a.logger.Error("recording query", "error", err)
		}
	}
}

func (a *Aggregator) recordIndex(event IndexEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.IndexBuilds++
	a.stats.LastIndexedDocs = event.Documents
	ts := event.Timestamp
	a.stats.LastIndexedAt = &ts
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := a.stats
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, 10)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalSearches) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN returns the n most frequent queries, ties broken alphabetically.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
