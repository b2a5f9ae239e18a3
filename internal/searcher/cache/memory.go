package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemorySize = 1024

// MemoryBackend is a size-bounded LRU whose entries expire after a TTL.
type MemoryBackend struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryBackend keeps at most size entries; a ttl of zero never expires.
func NewMemoryBackend(size int, ttl time.Duration) *MemoryBackend {
	if size <= 0 {
		size = defaultMemorySize
	}
	return &MemoryBackend{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.lru.Get(key)
	return v, ok, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.lru.Add(key, value)
	return nil
}

func (m *MemoryBackend) Invalidate(context.Context) (int, error) {
	n := m.lru.Len()
	m.lru.Purge()
	return n, nil
}

// Len is the number of live entries.
func (m *MemoryBackend) Len() int {
	return m.lru.Len()
}
