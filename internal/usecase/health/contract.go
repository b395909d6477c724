package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// VectorChecker checks a remote vector provider's availability.
type VectorChecker interface {
	HealthCheck(ctx context.Context) error
}

// DegradedReporter reports whether a local embedding model loaded.
type DegradedReporter interface {
	Degraded() bool
}
