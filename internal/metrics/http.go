package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// Type assert to concrete Metrics for Prometheus access; anything
	// else (NoopMetrics) gets a pass-through middleware
	metrics, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

// RecordLogin records a login attempt outcome
func (m *Metrics) RecordLogin(result string, duration time.Duration) {
	m.LoginAttemptsTotal.WithLabelValues(result).Inc()
	m.LoginDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordDirectoryRequest records a directory authentication round trip
func (m *Metrics) RecordDirectoryRequest(outcome string, duration time.Duration) {
	m.DirectoryRequestsTotal.WithLabelValues(outcome).Inc()
	m.DirectoryRequestDuration.Observe(duration.Seconds())
}

// RecordTokenIssued records token issuance
func (m *Metrics) RecordTokenIssued(duration time.Duration) {
	m.TokensIssuedTotal.Inc()
	m.TokenGenerationDuration.Observe(duration.Seconds())
}

// RecordTokenValidation records token validation
func (m *Metrics) RecordTokenValidation(result string) {
	// result: accepted, rejected
	m.TokenValidationTotal.WithLabelValues(result).Inc()
}

// RecordIdentityCreated records an identity creation attempt
func (m *Metrics) RecordIdentityCreated(success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.IdentitiesCreatedTotal.WithLabelValues(result).Inc()
}

// RecordDatabaseQueryError records a database query error
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
