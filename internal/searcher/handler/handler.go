// Package handler exposes the query engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/internal/searcher/engine"
	apperrors "github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/logger"
)

// Searcher is the part of *engine.Engine the handlers use.
type Searcher interface {
	Search(ctx context.Context, raw string) *engine.Result
	Store() *index.Store
	Warnings() []string
}

// Cache is the part of *cache.QueryCache the handlers use.
type Cache interface {
	Stats() cache.Stats
	Invalidate(ctx context.Context) (int, error)
}

type Handler struct {
	searcher Searcher
	cache    Cache
	logger   *slog.Logger
}

// New wires the handlers. queryCache may be nil when caching is disabled.
func New(searcher Searcher, queryCache Cache) *Handler {
	return &Handler{
		searcher: searcher,
		cache:    queryCache,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Register adds every search route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/terms/{term}", h.Term)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Search handles GET /api/v1/search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		h.writeError(w, r, apperrors.New(apperrors.ErrMalformedQuery, http.StatusBadRequest, "empty query"))
		return
	}
	h.writeJSON(w, http.StatusOK, h.searcher.Search(r.Context(), query))
}

type indexStats struct {
	index.Stats
	Warnings []string `json:"warnings,omitempty"`
}

// IndexStats handles GET /api/v1/index/stats.
func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, indexStats{
		Stats:    h.searcher.Store().Stats(),
		Warnings: h.searcher.Warnings(),
	})
}

// Term handles GET /api/v1/terms/{term}. The term is matched exactly after
// lowercasing, the way proximity queries look terms up.
func (h *Handler) Term(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(strings.TrimSpace(r.PathValue("term")))
	if term == "" {
		h.writeError(w, r, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "term is required"))
		return
	}
	entry := h.searcher.Store().Postings(term)
	if len(entry.Postings) == 0 {
		h.writeError(w, r, apperrors.Newf(apperrors.ErrUnknownTerm, http.StatusNotFound, "%q", term))
		return
	}
	h.writeJSON(w, http.StatusOK, entry)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.cache.Stats())
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "caching is disabled"})
		return
	}
	n, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": n})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError maps err to a status code. Internal errors are logged and
// replaced with a generic message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if status >= http.StatusInternalServerError && !errors.As(err, &appErr) {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		message = "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
