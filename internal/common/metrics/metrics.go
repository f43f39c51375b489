// internal/common/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportdesk_api_requests_total",
			Help: "Total number of REST API requests by outcome",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportdesk_api_request_failures_total",
			Help: "Total number of REST API requests that failed",
		},
		[]string{"method", "endpoint", "error_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportdesk_api_request_duration_seconds",
			Help:    "Duration of REST API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	UploadsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reportdesk_uploads_active",
			Help: "Number of file uploads currently in flight",
		},
	)

	SessionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reportdesk_session_state",
			Help: "1 for the current session state, 0 otherwise",
		},
		[]string{"state"},
	)
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
