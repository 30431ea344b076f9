package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Login flow
	RecordLogin(result string, duration time.Duration)
	RecordDirectoryRequest(outcome string, duration time.Duration)

	// Token operations
	RecordTokenIssued(duration time.Duration)
	RecordTokenValidation(result string)

	// Identity store
	RecordIdentityCreated(success bool)

	// Database operations
	RecordDatabaseQueryError(operation string)
}
