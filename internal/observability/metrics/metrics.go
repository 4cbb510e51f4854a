package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "pokefinder_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	importTotal   *prometheus.CounterVec
	importEntries *prometheus.CounterVec

	exportTotal *prometheus.CounterVec

	liveSessions   prometheus.Gauge
	samplesPushed  prometheus.Counter
	weatherLookups *prometheus.CounterVec

	authFailures *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status class",
			},
			[]string{"route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)

		importTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_total",
				Help: "Total catalog imports by source and result",
			},
			[]string{"source", "result"},
		)
		importEntries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_entries_total",
				Help: "Total catalog entries ingested by source",
			},
			[]string{"source"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total catalog exports by format and result",
			},
			[]string{"format", "result"},
		)

		liveSessions = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "live_sessions",
				Help: "Open energy telemetry channels",
			},
		)
		samplesPushed = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "telemetry_samples_total",
				Help: "Total energy samples pushed over live channels",
			},
		)
		weatherLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "weather_lookups_total",
				Help: "Total weather provider lookups by result",
			},
			[]string{"result"},
		)

		authFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "auth_failures_total",
				Help: "Total rejected requests by reason",
			},
			[]string{"reason"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			importTotal,
			importEntries,
			exportTotal,
			liveSessions,
			samplesPushed,
			weatherLookups,
			authFailures,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveHTTP records one request by route and status class.
func ObserveHTTP(route, status string, duration time.Duration) {
	if route == "" {
		route = "unknown"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, status).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// ObserveImport records one import run.
func ObserveImport(source, result string, entries int) {
	if result == "" {
		result = resultSuccess
	}
	if importTotal != nil {
		importTotal.WithLabelValues(source, result).Inc()
	}
	if importEntries != nil && entries > 0 {
		importEntries.WithLabelValues(source).Add(float64(entries))
	}
}

// ObserveExport records one export by format.
func ObserveExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// IncLiveSession marks one energy channel opened.
func IncLiveSession() {
	if liveSessions != nil {
		liveSessions.Inc()
	}
}

// DecLiveSession marks one energy channel closed.
func DecLiveSession() {
	if liveSessions != nil {
		liveSessions.Dec()
	}
}

// IncSamplePushed counts one pushed energy sample.
func IncSamplePushed() {
	if samplesPushed != nil {
		samplesPushed.Inc()
	}
}

// IncWeatherLookup counts one weather provider call.
func IncWeatherLookup(result string) {
	if result == "" {
		result = resultSuccess
	}
	if weatherLookups != nil {
		weatherLookups.WithLabelValues(result).Inc()
	}
}

// IncAuthFailure counts one rejected request.
func IncAuthFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if authFailures != nil {
		authFailures.WithLabelValues(reason).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)

// LiveSessionGauge adapts the session gauge to the channel handler's port.
type LiveSessionGauge struct{}

func (LiveSessionGauge) Inc() { IncLiveSession() }
func (LiveSessionGauge) Dec() { DecLiveSession() }
