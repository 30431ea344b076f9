package metrics

import (
	"sync"

	"github.com/ldapgate/ldapgate/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is an alias for core.Recorder.
type Recorder = core.Recorder

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Login flow
	LoginAttemptsTotal *prometheus.CounterVec
	LoginDuration      *prometheus.HistogramVec

	// Directory
	DirectoryRequestsTotal   *prometheus.CounterVec
	DirectoryRequestDuration prometheus.Histogram

	// Tokens
	TokensIssuedTotal       prometheus.Counter
	TokenGenerationDuration prometheus.Histogram
	TokenValidationTotal    *prometheus.CounterVec

	// Identities
	IdentitiesCreatedTotal *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Database Query Metrics
	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		LoginAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"}, // success, bad_request, rejected, unavailable
		),
		LoginDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "login_duration_seconds",
				Help:    "Time taken to process a login attempt end to end",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		DirectoryRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_requests_total",
				Help: "Total number of directory authentication requests",
			},
			[]string{"outcome"}, // success, rejected, unavailable
		),
		DirectoryRequestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "directory_request_duration_seconds",
				Help:    "Time spent on directory connect, bind and search",
				Buckets: prometheus.DefBuckets,
			},
		),
		TokensIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tokens_issued_total",
				Help: "Total number of session tokens issued",
			},
		),
		TokenGenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "token_generation_duration_seconds",
				Help:    "Time taken to sign a session token",
				Buckets: prometheus.DefBuckets,
			},
		),
		TokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_validation_total",
				Help: "Total number of token validations",
			},
			[]string{"result"}, // accepted, rejected
		),
		IdentitiesCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "identities_created_total",
				Help: "Total number of identity creation attempts",
			},
			[]string{"result"}, // success, error
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of in-flight HTTP requests",
			},
		),
		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors",
			},
			[]string{"operation"},
		),
	}
}
