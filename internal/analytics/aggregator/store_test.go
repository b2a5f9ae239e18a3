package aggregator

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/postgres"
)

// testStore connects to TEST_POSTGRES_HOST or skips.
func testStore(t *testing.T) *Store {
	t.Helper()
	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("TEST_POSTGRES_HOST not set, skipping postgres integration test")
	}
	cfg := config.Default().Postgres
	cfg.Host = host
	if v := os.Getenv("TEST_POSTGRES_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		require.NoError(t, err)
		cfg.Port = port
	}
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewStore(db)
	require.NoError(t, s.EnsureSchema(ctx))
	_, err = db.DB.ExecContext(ctx, `TRUNCATE analytics_snapshots, query_log`)
	require.NoError(t, err)
	return s
}

func TestStore_Snapshots(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	latest, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, s.SaveSnapshot(ctx, analytics.AggregatedStats{TotalSearches: 1}))
	require.NoError(t, s.SaveSnapshot(ctx, analytics.AggregatedStats{TotalSearches: 2}))

	latest, err = s.LatestSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(2), latest.TotalSearches)

	all, err := s.ListSnapshots(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_RecordQuery(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	event := analytics.SearchEvent{
		Type:      analytics.EventSearch,
		Query:     "cat and dog",
		Kind:      "boolean",
		Terms:     []string{"cat", "dog"},
		TotalHits: 3,
		LatencyMs: 4,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		RequestID: "req-1",
	}
	require.NoError(t, s.RecordQuery(ctx, event))

	recent, err := s.RecentQueries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, event.Query, recent[0].Query)
	assert.Equal(t, event.Terms, recent[0].Terms)
	assert.Empty(t, recent[0].Diagnostics)
	assert.Equal(t, "req-1", recent[0].RequestID)
}
