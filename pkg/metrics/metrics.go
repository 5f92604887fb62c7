package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Forecast metrics
	ForecastRunsTotal    *prometheus.CounterVec
	ForecastRunDuration  prometheus.Histogram
	FanoutStoreCalls     *prometheus.CounterVec
	ForecastRowsReceived prometheus.Counter

	// External API metrics
	ExternalAPICalls    *prometheus.CounterVec
	ExternalAPIDuration *prometheus.HistogramVec
	ExternalAPIFailures *prometheus.CounterVec

	// Cache and job metrics
	CacheLookups *prometheus.CounterVec
	JobRuns      *prometheus.CounterVec
}

// New registers the collectors on reg. Passing nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		ForecastRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_runs_total",
				Help: "Total number of forecast runs",
			},
			[]string{"status"},
		),

		ForecastRunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forecast_run_duration_seconds",
				Help:    "Forecast run duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),

		FanoutStoreCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_fanout_store_calls_total",
				Help: "Per-store prediction calls issued by the fanout",
			},
			[]string{"outcome"},
		),

		ForecastRowsReceived: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "forecast_rows_received_total",
				Help: "Raw prediction rows received from the prediction service",
			},
		),

		ExternalAPICalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_calls_total",
				Help: "Total number of external API calls",
			},
			[]string{"api", "status"},
		),

		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "external_api_duration_seconds",
				Help:    "External API call duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"api"},
		),

		ExternalAPIFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_api_failures_total",
				Help: "Total number of external API failures",
			},
			[]string{"api", "error_type"},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		),

		JobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduled_job_runs_total",
				Help: "Scheduled job runs by job name and status",
			},
			[]string{"job", "status"},
		),
	}
}

// HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// HTTP requests in flight counter
func (m *Metrics) IncHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// HTTP requests in flight counter
func (m *Metrics) DecHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

func (m *Metrics) RecordForecastRun(status string, duration time.Duration) {
	m.ForecastRunsTotal.WithLabelValues(status).Inc()
	m.ForecastRunDuration.Observe(duration.Seconds())
}

// RecordFanoutCall counts a per-store call by outcome: success, empty or failure.
func (m *Metrics) RecordFanoutCall(outcome string, rows int) {
	m.FanoutStoreCalls.WithLabelValues(outcome).Inc()
	if rows > 0 {
		m.ForecastRowsReceived.Add(float64(rows))
	}
}

// External API call metrics
func (m *Metrics) RecordExternalAPICall(api, status string, duration time.Duration) {
	m.ExternalAPICalls.WithLabelValues(api, status).Inc()
	m.ExternalAPIDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// External API failure metrics
func (m *Metrics) RecordExternalAPIFailure(api, errorType string) {
	m.ExternalAPIFailures.WithLabelValues(api, errorType).Inc()
}

func (m *Metrics) RecordCacheLookup(cache, result string) {
	m.CacheLookups.WithLabelValues(cache, result).Inc()
}

func (m *Metrics) RecordJobRun(job, status string) {
	m.JobRuns.WithLabelValues(job, status).Inc()
}
