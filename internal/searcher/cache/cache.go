// Package cache memoizes query results per index generation, in process or
// in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/engine"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
)

const keyPrefix = "irs:search:"

// Backend stores encoded results. Get reports false for a missing or expired
// key.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context) (int, error)
}

type Stats struct {
	Backend string  `json:"backend"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	// Breaker is the circuit state of remote backends.
	Breaker string `json:"breaker,omitempty"`
}

type QueryCache struct {
	backend Backend
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

type Option func(*QueryCache)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *QueryCache) { c.metrics = m }
}

func New(backend Backend, opts ...Option) *QueryCache {
	c := &QueryCache{
		backend: backend,
		logger:  slog.Default().With("component", "query-cache", "backend", backend.Name()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached result for query at generation, or runs
// compute once for all concurrent callers asking for the same key. Backend
// failures are logged and treated as misses. The bool reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query, generation string,
	compute func() (*engine.Result, error),
) (*engine.Result, bool, error) {
	key := BuildKey(query, generation)
	if result, ok := c.get(ctx, key); ok {
		c.recordHit()
		return result, true, nil
	}
	c.recordMiss()

	val, err, _ := c.group.Do(key, func() (any, error) {
		if result, ok := c.get(ctx, key); ok {
			return result, nil
		}
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*engine.Result), false, nil
}

// Invalidate drops every cached result.
func (c *QueryCache) Invalidate(ctx context.Context) (int, error) {
	n, err := c.backend.Invalidate(ctx)
	if err != nil {
		return n, fmt.Errorf("invalidating %s cache: %w", c.backend.Name(), err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", n)
	return n, nil
}

func (c *QueryCache) Stats() Stats {
	s := Stats{
		Backend: c.backend.Name(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	if b, ok := c.backend.(interface{ BreakerState() string }); ok {
		s.Breaker = b.BreakerState()
	}
	return s
}

func (c *QueryCache) get(ctx context.Context, key string) (*engine.Result, bool) {
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var result engine.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (c *QueryCache) set(ctx context.Context, key string, result *engine.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey hashes the normalized query together with the index generation,
// so a rebuilt index never serves stale results.
func BuildKey(query, generation string) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(query) + "\x00" + generation))
	return keyPrefix + hex.EncodeToString(sum[:16])
}

// NormalizeQuery lowercases query and collapses runs of whitespace.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
