// Package metrics provides Prometheus metrics for the srcview server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	statusSuccess = "success"
	statusError   = "error"
	resultHit     = "hit"
	resultMiss    = "miss"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "srcview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	contentBytesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "srcview_content_bytes_served_total",
			Help: "Total bytes of file content served",
		},
	)

	contentFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcview_content_fetches_total",
			Help: "Total number of file content fetches",
		},
		[]string{"status"},
	)

	contentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "srcview_content_cache_lookups_total",
			Help: "Content cache lookups by result",
		},
		[]string{"result"},
	)

	treeDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "srcview_tree_directories",
			Help: "Number of directories in the served tree",
		},
	)

	treeFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "srcview_tree_files",
			Help: "Number of files in the served tree",
		},
	)

	treeBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "srcview_tree_build_duration_seconds",
			Help:    "Time to build the source tree",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric. route must be a bounded
// label such as "document" or "content", never a raw URL path.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordContentFetch records one file content fetch.
func RecordContentFetch(bytes int, success bool) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	contentFetchesTotal.WithLabelValues(status).Inc()
	if success {
		contentBytesServed.Add(float64(bytes))
	}
}

// RecordCacheLookup records a content cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := resultMiss
	if hit {
		result = resultHit
	}
	contentCacheLookups.WithLabelValues(result).Inc()
}

// SetTreeSize sets the served tree size.
func SetTreeSize(directories, files int) {
	treeDirectories.Set(float64(directories))
	treeFiles.Set(float64(files))
}

// RecordTreeBuild records how long building the tree took.
func RecordTreeBuild(duration time.Duration) {
	treeBuildDuration.Observe(duration.Seconds())
}
