package cache

import (
	"context"
	"errors"
	"time"

	pkgredis "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/resilience"
)

type redisStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// RedisBackend shares cached results between searcher replicas. Every call
// is bounded by a timeout and goes through a circuit breaker, so a slow or
// unreachable Redis turns into cache misses.
type RedisBackend struct {
	client  redisStore
	ttl     time.Duration
	timeout time.Duration
	breaker *resilience.Breaker
}

func NewRedisBackend(client *pkgredis.Client, ttl time.Duration) *RedisBackend {
	return newRedisBackend(client, ttl)
}

func newRedisBackend(client redisStore, ttl time.Duration) *RedisBackend {
	return &RedisBackend{
		client:  client,
		ttl:     ttl,
		timeout: 100 * time.Millisecond,
		breaker: resilience.NewBreaker("redis-cache", resilience.BreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     10 * time.Second,
		}),
	}
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := r.breaker.Do(func() error {
		v, err := resilience.Call(ctx, r.timeout, "redis get", func(ctx context.Context) ([]byte, error) {
			return r.client.Get(ctx, key)
		})
		if errors.Is(err, pkgredis.ErrNotFound) {
			return nil
		}
		data = v
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return data, data != nil, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return r.breaker.Do(func() error {
		_, err := resilience.Call(ctx, r.timeout, "redis set", func(ctx context.Context) (struct{}, error) {
			return struct{}{}, r.client.Set(ctx, key, value, r.ttl)
		})
		return err
	})
}

// Invalidate deletes every search key. It is not bounded by the call
// timeout since a large keyspace takes several SCAN rounds.
func (r *RedisBackend) Invalidate(ctx context.Context) (int, error) {
	n, err := r.client.DeletePrefix(ctx, keyPrefix)
	return int(n), err
}

// BreakerState reports the circuit state for the stats endpoint.
func (r *RedisBackend) BreakerState() string {
	return r.breaker.State().String()
}
