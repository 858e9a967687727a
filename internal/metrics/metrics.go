// Package metrics provides Prometheus metrics for the markdown viewer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdv_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mdv_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	treeSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mdv_tree_nodes",
			Help: "Number of files and directories in the current tree snapshot",
		},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mdv_refresh_duration_seconds",
			Help:    "Time to rebuild the tree snapshot from disk",
			Buckets: prometheus.DefBuckets,
		},
	)

	refreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdv_refreshes_total",
			Help: "Total tree refreshes",
		},
		[]string{"result"},
	)

	searchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mdv_search_queries_total",
			Help: "Total search queries",
		},
		[]string{"result"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records a request served by endpoint.
func RecordHTTPRequest(endpoint string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetTreeSize sets the number of nodes of the current snapshot.
func SetTreeSize(size int) {
	treeSize.Set(float64(size))
}

// RecordRefresh records a tree refresh.
func RecordRefresh(duration time.Duration, success bool) {
	refreshDuration.Observe(duration.Seconds())
	refreshesTotal.WithLabelValues(result(success)).Inc()
}

// RecordSearch records a search query.
func RecordSearch(success bool) {
	searchQueriesTotal.WithLabelValues(result(success)).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
