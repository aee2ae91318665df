package api

import (
	"strconv"

	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "love_dialect",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Handled HTTP requests by route and status.",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "love_dialect",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func observeRequest(v middleware.RequestLoggerValues) {
	route := v.RoutePath
	if route == "" {
		route = "unmatched"
	}
	requestsTotal.WithLabelValues(v.Method, route, strconv.Itoa(v.Status)).Inc()
	requestDuration.WithLabelValues(v.Method, route).Observe(v.Latency.Seconds())
}
