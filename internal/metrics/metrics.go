// Package metrics provides Prometheus metrics for the storagekit server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storagekit_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storagekit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Item operation metrics
	itemOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storagekit_item_operations_total",
			Help: "Total item operations by outcome",
		},
		[]string{"operation", "status"},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storagekit_bytes_uploaded_total",
			Help: "Total bytes streamed into the served root",
		},
	)

	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storagekit_bytes_downloaded_total",
			Help: "Total bytes streamed out of the served root",
		},
	)

	// Catalog metrics
	catalogSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storagekit_catalog_sync_duration_seconds",
			Help:    "Time to reconcile the catalog with the served root",
			Buckets: prometheus.DefBuckets,
		},
	)

	catalogEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storagekit_catalog_events_total",
			Help: "Catalog changes observed by the watcher",
		},
		[]string{"kind"},
	)

	// SSE metrics
	sseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storagekit_sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	sseEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storagekit_sse_events_total",
			Help: "Total SSE events published",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and durations labelled by the matched
// chi route pattern, so path parameters do not explode the label space.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordHTTPRequest(r.Method, path, status, time.Since(start))
	})
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordOperation records the outcome of an item operation.
func RecordOperation(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	itemOperationsTotal.WithLabelValues(op, status).Inc()
}

// RecordUpload adds n bytes to the upload counter.
func RecordUpload(n int64) {
	bytesUploaded.Add(float64(n))
}

// RecordDownload adds n bytes to the download counter.
func RecordDownload(n int64) {
	bytesDownloaded.Add(float64(n))
}

// RecordCatalogSync records the duration of a full reconciliation.
func RecordCatalogSync(d time.Duration) {
	catalogSyncDuration.Observe(d.Seconds())
}

// RecordCatalogEvent counts a watcher callback.
func RecordCatalogEvent(kind string) {
	catalogEventsTotal.WithLabelValues(kind).Inc()
}

// SetSSEConnectionsActive sets the active SSE connections gauge.
func SetSSEConnectionsActive(n int) {
	sseConnectionsActive.Set(float64(n))
}

// RecordSSEEvent records an SSE event publication.
func RecordSSEEvent(eventType string) {
	sseEventsTotal.WithLabelValues(eventType).Inc()
}
