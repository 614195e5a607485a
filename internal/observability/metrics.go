package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	gradeWritesTotal        *prometheus.CounterVec
	noticeReportsTotal      prometheus.Counter
	noticeItemsSkipped      prometheus.Counter
	notificationsPublished  *prometheus.CounterVec
	sseClientsActive        prometheus.Gauge
	resourceUploadsRejected *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigra_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sigra_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigra_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		gradeWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigra_grade_writes_total",
			Help: "Grade upserts, labelled by create vs update.",
		}, []string{"operation"})

		noticeReportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigra_notice_reports_total",
			Help: "Notice reports derived for students.",
		})

		noticeItemsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sigra_notice_items_skipped_total",
			Help: "Per-item failures tolerated during notice derivation.",
		})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigra_notifications_published_total",
			Help: "Notifications published, labelled by kind.",
		}, []string{"kind"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sigra_sse_clients_active",
			Help: "Currently connected notification stream clients.",
		})

		resourceUploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sigra_resource_uploads_rejected_total",
			Help: "Resource uploads rejected, labelled by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			gradeWritesTotal,
			noticeReportsTotal,
			noticeItemsSkipped,
			notificationsPublished,
			sseClientsActive,
			resourceUploadsRejected,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the error counter.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradeWrites exposes the grade upsert counter.
func GradeWrites() *prometheus.CounterVec {
	RegisterMetrics()
	return gradeWritesTotal
}

// NoticeReports exposes the derived report counter.
func NoticeReports() prometheus.Counter {
	RegisterMetrics()
	return noticeReportsTotal
}

// NoticeItemsSkipped exposes the skipped item counter.
func NoticeItemsSkipped() prometheus.Counter {
	RegisterMetrics()
	return noticeItemsSkipped
}

// NotificationsPublishedTotal exposes the notification publish counter.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the live stream client gauge.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// ResourceUploadsRejected exposes the rejected upload counter.
func ResourceUploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return resourceUploadsRejected
}
