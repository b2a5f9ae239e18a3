// Package aggregator persists analytics to PostgreSQL: periodic snapshots of
// the aggregated stats and an append-only log of individual queries.
package aggregator

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analytics_snapshots (
		id          BIGSERIAL PRIMARY KEY,
		data        JSONB NOT NULL,
		captured_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS query_log (
		id          BIGSERIAL PRIMARY KEY,
		request_id  TEXT NOT NULL DEFAULT '',
		query       TEXT NOT NULL,
		kind        TEXT NOT NULL,
		terms       TEXT[] NOT NULL DEFAULT '{}',
		total_hits  INTEGER NOT NULL,
		latency_ms  BIGINT NOT NULL,
		cache_hit   BOOLEAN NOT NULL DEFAULT FALSE,
		diagnostics TEXT[] NOT NULL DEFAULT '{}',
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS query_log_occurred_at_idx ON query_log (occurred_at DESC)`,
}

type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "analytics-store"),
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.Migrate(ctx, schema...); err != nil {
		return fmt.Errorf("creating analytics schema: %w", err)
	}
	return nil
}

func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO analytics_snapshots (data, captured_at) VALUES ($1, $2)`,
		data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Info("analytics snapshot saved",
		"total_searches", stats.TotalSearches,
		"index_builds", stats.IndexBuilds,
	)
	return nil
}

// LatestSnapshot returns nil, nil when nothing has been saved yet.
func (s *Store) LatestSnapshot(ctx context.Context) (*analytics.AggregatedStats, error) {
	var data []byte
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC, id DESC LIMIT 1`,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest snapshot: %w", err)
	}
	var stats analytics.AggregatedStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}
	return &stats, nil
}

// ListSnapshots returns up to limit snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]analytics.AggregatedStats, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT data FROM analytics_snapshots ORDER BY captured_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]analytics.AggregatedStats, 0, limit)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		var stats analytics.AggregatedStats
		if err := json.Unmarshal(data, &stats); err != nil {
			s.logger.Warn("skipping corrupt snapshot", "error", err)
			continue
		}
		snapshots = append(snapshots, stats)
	}
	return snapshots, rows.Err()
}

// RecordQuery appends one search to query_log.
func (s *Store) RecordQuery(ctx context.Context, event analytics.SearchEvent) error {
	terms := event.Terms
	if terms == nil {
		terms = []string{}
	}
	diagnostics := event.Diagnostics
	if diagnostics == nil {
		diagnostics = []string{}
	}
	_, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO query_log
			(request_id, query, kind, terms, total_hits, latency_ms, cache_hit, diagnostics, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.RequestID, event.Query, event.Kind, pq.Array(terms), event.TotalHits,
		event.LatencyMs, event.CacheHit, pq.Array(diagnostics), event.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording query: %w", err)
	}
	return nil
}

// RecentQueries returns the newest query_log rows.
func (s *Store) RecentQueries(ctx context.Context, limit int) ([]analytics.SearchEvent, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT request_id, query, kind, terms, total_hits, latency_ms, cache_hit, diagnostics, occurred_at
		 FROM query_log ORDER BY occurred_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recent queries: %w", err)
	}
	defer rows.Close()

	events := make([]analytics.SearchEvent, 0, limit)
	for rows.Next() {
		var e analytics.SearchEvent
		if err := rows.Scan(&e.RequestID, &e.Query, &e.Kind, pq.Array(&e.Terms), &e.TotalHits,
			&e.LatencyMs, &e.CacheHit, pq.Array(&e.Diagnostics), &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning query row: %w", err)
		}
		e.Type = analytics.EventSearch
		events = append(events, e)
	}
	return events, rows.Err()
}

// StartPeriodicSave snapshots agg every interval and once more when ctx ends.
func (s *Store) StartPeriodicSave(ctx context.Context, agg *analytics.Aggregator, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.SaveSnapshot(ctx, agg.Stats()); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := s.SaveSnapshot(shutdownCtx, agg.Stats()); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval)
}
