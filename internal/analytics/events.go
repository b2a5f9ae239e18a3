package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventIndexBuild EventType = "index_build"
)

// SearchEvent is emitted once per evaluated query.
type SearchEvent struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	Kind        string    `json:"kind"`
	Terms       []string  `json:"terms"`
	TotalHits   int       `json:"total_hits"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id"`
}

// IndexEvent is emitted after a full rebuild.
type IndexEvent struct {
	Type      EventType `json:"type"`
	Documents int       `json:"documents"`
	Skipped   int       `json:"skipped"`
	Terms     int       `json:"terms"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
}
