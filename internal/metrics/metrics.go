// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "socialfeed",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "code"})

	TimelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "socialfeed",
		Name:      "timeline_build_duration_seconds",
		Help:      "Time to assemble one timeline.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})

	AncestryMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialfeed",
		Name:      "ancestry_misses_total",
		Help:      "Ancestor lookups that produced no comment.",
	}, []string{"level", "reason"})
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// Instrument records request duration under a fixed route label.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		HTTPDuration.WithLabelValues(route, strconv.Itoa(rec.code)).Observe(time.Since(start).Seconds())
	})
}
