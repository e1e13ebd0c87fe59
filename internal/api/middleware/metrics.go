package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codedojo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codedojo_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	gradingSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codedojo_grading_submissions_total",
			Help: "Total number of graded submissions",
		},
		[]string{"result"},
	)
	gradingScores = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codedojo_grading_score",
			Help:    "Distribution of grading scores",
			Buckets: []float64{0, 25, 50, 75, 100},
		},
	)
	badgesAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "codedojo_badges_awarded_total",
			Help: "Total number of lesson badges awarded",
		},
	)
)

// RegisterMetrics registers all collectors. Call once from main.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		gradingSubmissionsTotal,
		gradingScores,
		badgesAwardedTotal,
	)
}

// Metrics tracks request counts and latency for every route. Route
// patterns are static in this API, so r.URL.Path keeps cardinality low
// except for the few {id} routes, which share a handful of seeded ids.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		httpRequestsTotal.WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.URL.Path, r.Method).Observe(duration)
	})
}

// ObserveGrading records the outcome of one graded submission.
func ObserveGrading(passed bool, score int) {
	result := "failed"
	if passed {
		result = "passed"
	}
	gradingSubmissionsTotal.WithLabelValues(result).Inc()
	gradingScores.Observe(float64(score))
}

// ObserveBadges records newly awarded badges.
func ObserveBadges(count int) {
	if count > 0 {
		badgesAwardedTotal.Add(float64(count))
	}
}
