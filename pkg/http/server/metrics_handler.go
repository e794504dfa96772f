package server

import (
	"net/http"
	"sync"

	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	handlerPrometheusMetrics sync.Once

	handlerRequestsDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildbarn",
			Subsystem: "http",
			Name:      "handler_requests_duration_seconds",
			Help:      "Amount of time spent per HTTP request, in seconds.",
			Buckets:   util.DecimalExponentialBuckets(-3, 6, 2),
		},
		[]string{"name", "code", "method"})
	handlerResponseSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildbarn",
			Subsystem: "http",
			Name:      "handler_response_size_bytes",
			Help:      "Size of HTTP response bodies prior to compression, in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"name", "code", "method"})
	handlerRequestsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "buildbarn",
			Subsystem: "http",
			Name:      "handler_requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		},
		[]string{"name"})
)

// NewMetricsHandler creates an adapter for http.Handler that adds basic
// instrumentation in the form of Prometheus metrics: request durations,
// response sizes and the number of requests in flight.
func NewMetricsHandler(base http.Handler, name string) http.Handler {
	handlerPrometheusMetrics.Do(func() {
		prometheus.MustRegister(handlerRequestsDurationSeconds)
		prometheus.MustRegister(handlerResponseSizeBytes)
		prometheus.MustRegister(handlerRequestsInFlight)
	})

	labels := prometheus.Labels{"name": name}
	return promhttp.InstrumentHandlerInFlight(
		handlerRequestsInFlight.With(labels),
		promhttp.InstrumentHandlerDuration(
			handlerRequestsDurationSeconds.MustCurryWith(labels),
			promhttp.InstrumentHandlerResponseSize(
				handlerResponseSizeBytes.MustCurryWith(labels),
				base)))
}
