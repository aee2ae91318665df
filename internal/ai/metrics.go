package ai

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opGenerate = "generate"
	opAnalyze  = "analyze"
)

var errStreamFailed = errors.New("stream failed")

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "love_dialect",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Requests sent to the generative service by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "love_dialect",
			Subsystem: "ai",
			Name:      "request_duration_seconds",
			Help:      "Time spent waiting for the generative service.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)
)

func observe(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(operation, outcome).Inc()
	requestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
