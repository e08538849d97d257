package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric name
const namespace = "paper_submission_api"

// Metrics holds all the available internal metrics
type Metrics struct {
	// APIResponseDurationsMilliseconds is the number of milliseconds it takes to
	// complete API responses.
	//
	// Labels: path (request path), method (request HTTP method),
	// status_code (response HTTP status code)
	APIResponseDurationsMilliseconds *prometheus.HistogramVec

	// APIHandlerPanicsTotal is the number of times HTTP request handlers have paniced.
	//
	// Labels: path(route template), method( request HTTP method)
	APIHandlerPanicsTotal *prometheus.CounterVec

	// EligibilityChecksTotal is the number of identity checks made.
	//
	// Labels: result (eligible, not_found, not_eligible, error)
	EligibilityChecksTotal *prometheus.CounterVec

	// SubmissionsTotal is the number of submissions processed.
	//
	// Labels: outcome (success, invalid, upstream_error, render_error)
	SubmissionsTotal *prometheus.CounterVec

	// SubmissionDurationsMilliseconds is the time taken by submissions which passed validation.
	//
	// Labels: outcome (same values as SubmissionsTotal)
	SubmissionDurationsMilliseconds *prometheus.HistogramVec

	// UploadDurationsMilliseconds is the time taken to put each artifact in the store.
	//
	// Labels: artifact (path of artifact within submission folder), successful (0 = fail, 1 = success)
	UploadDurationsMilliseconds *prometheus.HistogramVec

	// CleanupFailuresTotal is the number of transient files which could not be removed
	CleanupFailuresTotal prometheus.Counter

	// JobsSubmittedTotal is the number of jobs which are submitted.
	//
	// Labels: job_type (jobs.JobStartRequest.Type field)
	JobsSubmittedTotal *prometheus.CounterVec

	// JobsRunDurationsMilliseconds is the number of milliseconds jobs run for.
	//
	// Labels: job_type (jobs.JobStartRequest.Type field), successful (0 = fail, 1 = success)
	JobsRunDurationsMilliseconds *prometheus.HistogramVec
}

// NewMetrics creates a Metrics struct with all the Prometheus metrics recorders
// initialized and registered with reg
func NewMetrics(reg prometheus.Registerer) Metrics {
	metrics := Metrics{
		APIResponseDurationsMilliseconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "response_durations_milliseconds",
			Help:      "Time, in milliseconds, it took to respond to API requests",
		}, []string{"path", "method", "status_code"}),
		APIHandlerPanicsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "handler_panics_total",
			Help:      "Total number of HTTP handlers which have panicked while processing a request",
		}, []string{"path", "method"}),
		EligibilityChecksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eligibility",
			Name:      "checks_total",
			Help:      "Total number of identity eligibility checks",
		}, []string{"result"}),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submissions",
			Name:      "total",
			Help:      "Total number of submissions processed",
		}, []string{"outcome"}),
		SubmissionDurationsMilliseconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "submissions",
			Name:      "durations_milliseconds",
			Help:      "Duration, in milliseconds, of submissions",
			Buckets:   prometheus.ExponentialBuckets(50, 2, 10),
		}, []string{"outcome"}),
		UploadDurationsMilliseconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "submissions",
			Name:      "upload_durations_milliseconds",
			Help:      "Duration, in milliseconds, of artifact uploads",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
		}, []string{"artifact", "successful"}),
		CleanupFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submissions",
			Name:      "cleanup_failures_total",
			Help:      "Total number of transient files which could not be removed",
		}),
		JobsSubmittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "submitted_total",
			Help:      "Total number of jobs submitted",
		}, []string{"job_type"}),
		JobsRunDurationsMilliseconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "run_durations_milliseconds",
			Help:      "Duration, in milliseconds, of jobs",
		}, []string{"job_type", "successful"}),
	}

	reg.MustRegister(metrics.APIResponseDurationsMilliseconds,
		metrics.APIHandlerPanicsTotal,
		metrics.EligibilityChecksTotal,
		metrics.SubmissionsTotal,
		metrics.SubmissionDurationsMilliseconds,
		metrics.UploadDurationsMilliseconds,
		metrics.CleanupFailuresTotal,
		metrics.JobsSubmittedTotal,
		metrics.JobsRunDurationsMilliseconds)

	return metrics
}

// StartTimer starts a Timer. Calling .Finish() on the returned timer records the
// time elapsed in milliseconds.
func (m Metrics) StartTimer() Timer {
	return Timer{
		startTime: time.Now(),
	}
}

// SuccessLabel formats a boolean as the value of a "successful" label
func SuccessLabel(ok bool) string {
	if ok {
		return "1"
	}
	return "0"
}
