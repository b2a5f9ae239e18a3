package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/boolean-retrieval/pkg/metrics"
)

// routeOther labels any path outside the known API so scans of random URLs
// cannot grow the label set.
const routeOther = "other"

var knownRoutes = map[string]struct{}{
	"/api/v1/search":              {},
	"/api/v1/index/stats":         {},
	"/api/v1/cache/stats":         {},
	"/api/v1/cache/invalidate":    {},
	"/api/v1/analytics":           {},
	"/api/v1/analytics/queries":   {},
	"/api/v1/analytics/snapshots": {},
	"/health/live":                {},
	"/health/ready":               {},
}

// Metrics records request count, latency and the in-flight gauge, labelled
// by route rather than raw path.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			route := routeLabel(r.URL.Path)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.Status())).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

func routeLabel(path string) string {
	if strings.HasPrefix(path, "/api/v1/terms/") {
		return "/api/v1/terms/{term}"
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return routeOther
}

// statusRecorder remembers the first status written. A handler that writes
// a body without calling WriteHeader gets 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}
