package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/errors"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// History is the persisted side of analytics, served when PostgreSQL is
// configured.
type History interface {
	RecentQueries(ctx context.Context, limit int) ([]SearchEvent, error)
	ListSnapshots(ctx context.Context, limit int) ([]AggregatedStats, error)
}

type Handler struct {
	aggregator *Aggregator
	history    History
	logger     *slog.Logger
}

// NewHandler serves live stats from aggregator. history may be nil.
func NewHandler(aggregator *Aggregator, history History) *Handler {
	return &Handler{
		aggregator: aggregator,
		history:    history,
		logger:     slog.Default().With("component", "analytics-handler"),
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics", h.Stats)
	mux.HandleFunc("GET /api/v1/analytics/queries", h.Queries)
	mux.HandleFunc("GET /api/v1/analytics/snapshots", h.Snapshots)
}

// Stats handles GET /api/v1/analytics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.aggregator.Stats())
}

// Queries handles GET /api/v1/analytics/queries?limit=N, newest first.
func (h *Handler) Queries(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}
	events, err := h.history.RecentQueries(r.Context(), limit)
	if err != nil {
		h.fail(w, "recent queries", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"queries": events, "count": len(events)})
}

// Snapshots handles GET /api/v1/analytics/snapshots?limit=N, newest first.
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}
	snaps, err := h.history.ListSnapshots(r.Context(), limit)
	if err != nil {
		h.fail(w, "list snapshots", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps, "count": len(snaps)})
}

// limit parses ?limit and rejects the request when history is unavailable
// or the value is out of range.
func (h *Handler) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	if h.history == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "analytics history is not persisted"})
		return 0, false
	}
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxHistoryLimit {
		appErr := apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"limit must be between 1 and %d", maxHistoryLimit)
		h.writeJSON(w, appErr.StatusCode, map[string]string{"error": appErr.Error()})
		return 0, false
	}
	return n, true
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("analytics history failed", "operation", op, "error", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}
