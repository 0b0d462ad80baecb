package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	submissionsReceivedTotal *prometheus.CounterVec
	attemptsStartedTotal     prometheus.Counter
	attemptsSubmittedTotal   prometheus.Counter
	gradesRecordedTotal      *prometheus.CounterVec

	uploadRequestsTotal  *prometheus.CounterVec
	uploadRejectedTotal  *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram

	progressCacheHitsTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lms_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_submissions_received_total",
			Help: "File submissions accepted, labelled by assessment kind.",
		}, []string{"kind"})

		attemptsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lms_attempts_started_total",
			Help: "Digital quiz attempts started.",
		})

		attemptsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lms_attempts_submitted_total",
			Help: "Digital quiz attempts submitted and auto-scored.",
		})

		gradesRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_grades_recorded_total",
			Help: "Grades recorded, labelled by source.",
		}, []string{"source"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_uploads_total",
			Help: "Files accepted into storage, labelled by MIME type.",
		}, []string{"mime"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lms_uploads_rejected_total",
			Help: "Uploads rejected before storage, labelled by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lms_upload_latency_seconds",
			Help:    "End-to-end upload handling latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		progressCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lms_progress_cache_hits_total",
			Help: "Student progress rollups served from cache.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			submissionsReceivedTotal, attemptsStartedTotal, attemptsSubmittedTotal,
			gradesRecordedTotal,
			uploadRequestsTotal, uploadRejectedTotal, uploadLatencySeconds,
			progressCacheHitsTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionsReceived exposes the counter for accepted file submissions.
func SubmissionsReceived() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsReceivedTotal
}

// AttemptsStarted exposes the counter for started quiz attempts.
func AttemptsStarted() prometheus.Counter {
	RegisterMetrics()
	return attemptsStartedTotal
}

// AttemptsSubmitted exposes the counter for submitted quiz attempts.
func AttemptsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return attemptsSubmittedTotal
}

// GradesRecorded exposes the counter for recorded grades.
func GradesRecorded() *prometheus.CounterVec {
	RegisterMetrics()
	return gradesRecordedTotal
}

// UploadRequests exposes the counter for stored uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// ProgressCacheHits exposes the counter for progress cache hits.
func ProgressCacheHits() prometheus.Counter {
	RegisterMetrics()
	return progressCacheHitsTotal
}
