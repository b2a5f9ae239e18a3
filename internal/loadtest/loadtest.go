// Package loadtest drives concurrent queries against a running search
// service and summarizes latency, status codes and cache behaviour.
package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultQueries mixes boolean and proximity queries.
var DefaultQueries = []string{
	"information and retrieval",
	"boolean or proximity",
	"not index",
	"query and not cache",
	"document or corpus",
	"inverted and positional or stemming",
	"information retrieval /2",
	"boolean query /3",
	"search engine /1",
	"text documents /5",
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Queries     []string
	Client      *http.Client
}

// Recorder accumulates outcomes from concurrent workers.
type Recorder struct {
	mu          sync.Mutex
	latencies   []time.Duration
	statusCodes map[int]int64
	requests    int64
	errors      int64
	cacheHits   int64
	zeroHits    int64
}

func NewRecorder() *Recorder {
	return &Recorder{
		latencies:   make([]time.Duration, 0, 1024),
		statusCodes: make(map[int]int64),
	}
}

type outcome struct {
	latency  time.Duration
	status   int
	err      error
	cacheHit bool
	hits     int
}

func (r *Recorder) record(o outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	if o.err != nil {
		r.errors++
		return
	}
	r.statusCodes[o.status]++
	r.latencies = append(r.latencies, o.latency)
	if o.status < 200 || o.status >= 300 {
		r.errors++
		return
	}
	if o.cacheHit {
		r.cacheHits++
	}
	if o.hits == 0 {
		r.zeroHits++
	}
}

// Report is the summary of one run.
type Report struct {
	Requests    int64
	Errors      int64
	CacheHits   int64
	ZeroHits    int64
	Elapsed     time.Duration
	Min         time.Duration
	Avg         time.Duration
	P50         time.Duration
	P90         time.Duration
	P99         time.Duration
	Max         time.Duration
	StdDev      time.Duration
	StatusCodes map[int]int64
}

func (r *Recorder) Report(elapsed time.Duration) Report {
	r.mu.Lock()
	latencies := append([]time.Duration(nil), r.latencies...)
	rep := Report{
		Requests:    r.requests,
		Errors:      r.errors,
		CacheHits:   r.cacheHits,
		ZeroHits:    r.zeroHits,
		Elapsed:     elapsed,
		StatusCodes: make(map[int]int64, len(r.statusCodes)),
	}
	for code, n := range r.statusCodes {
		rep.StatusCodes[code] = n
	}
	r.mu.Unlock()

	if len(latencies) == 0 {
		return rep
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	rep.Avg = sum / time.Duration(len(latencies))
	rep.Min = latencies[0]
	rep.Max = latencies[len(latencies)-1]
	rep.P50 = percentile(latencies, 50)
	rep.P90 = percentile(latencies, 90)
	rep.P99 = percentile(latencies, 99)

	var sq float64
	for _, l := range latencies {
		d := float64(l - rep.Avg)
		sq += d * d
	}
	rep.StdDev = time.Duration(math.Sqrt(sq / float64(len(latencies))))
	return rep
}

// Run sends queries round-robin from cfg.Concurrency workers until
// cfg.Duration elapses or ctx ends.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if len(cfg.Queries) == 0 {
		cfg.Queries = DefaultQueries
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.Concurrency * 2,
				MaxIdleConnsPerHost: cfg.Concurrency * 2,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return Report{}, fmt.Errorf("parsing base url: %w", err)
	}
	base = base.JoinPath("/api/v1/search")

	logger := slog.Default().With("component", "loadtest")
	logger.Info("load test starting",
		"target", base.String(),
		"concurrency", cfg.Concurrency,
		"duration", cfg.Duration,
	)

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	rec := NewRecorder()
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for i := w; gctx.Err() == nil; i++ {
				o := send(gctx, cfg.Client, *base, cfg.Queries[i%len(cfg.Queries)])
				if gctx.Err() != nil {
					return nil
				}
				rec.record(o)
			}
			return nil
		})
	}
	_ = g.Wait()

	rep := rec.Report(time.Since(start))
	logger.Info("load test finished", "requests", rep.Requests, "errors", rep.Errors)
	return rep, nil
}

func send(ctx context.Context, client *http.Client, u url.URL, query string) outcome {
	u.RawQuery = url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return outcome{err: err}
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return outcome{latency: time.Since(start), err: err}
	}
	defer resp.Body.Close()

	var body struct {
		TotalHits int  `json:"total_hits"`
		CacheHit  bool `json:"cache_hit"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)
	_, _ = io.Copy(io.Discard, resp.Body)
	o := outcome{latency: time.Since(start), status: resp.StatusCode, cacheHit: body.CacheHit, hits: body.TotalHits}
	if decodeErr != nil && resp.StatusCode < 300 {
		o.err = fmt.Errorf("decoding response: %w", decodeErr)
	}
	return o
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// Print writes rep in a human-readable layout.
func Print(w io.Writer, rep Report) {
	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Requests:     %d\n", rep.Requests)
	fmt.Fprintf(w, "Errors:       %d\n", rep.Errors)
	if rep.Requests > 0 {
		fmt.Fprintf(w, "Error rate:   %.2f%%\n", float64(rep.Errors)/float64(rep.Requests)*100)
		fmt.Fprintf(w, "Requests/sec: %.2f\n", float64(rep.Requests)/rep.Elapsed.Seconds())
		fmt.Fprintf(w, "Cache hits:   %d\n", rep.CacheHits)
		fmt.Fprintf(w, "Zero hits:    %d\n", rep.ZeroHits)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Latency ===")
	for _, row := range []struct {
		name string
		d    time.Duration
	}{
		{"Min", rep.Min}, {"Avg", rep.Avg}, {"P50", rep.P50}, {"P90", rep.P90},
		{"P99", rep.P99}, {"Max", rep.Max}, {"StdDev", rep.StdDev},
	} {
		fmt.Fprintf(w, "%-7s %s\n", row.name+":", row.d)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	codes := make([]int, 0, len(rep.StatusCodes))
	for code := range rep.StatusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, rep.StatusCodes[code])
	}
}
