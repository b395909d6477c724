package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the marketplace works but ranking quality suffers.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckDegraded indicates a component running in fallback mode.
	CheckDegraded CheckResult = "degraded"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. Exactly one of remote and local
// is set, matching the configured embedding provider.
type Service struct {
	db     DBPinger
	remote VectorChecker
	local  DegradedReporter
}

// New creates a Service. remote and local may each be nil.
func New(db DBPinger, remote VectorChecker, local DegradedReporter) *Service {
	return &Service{db: db, remote: remote, local: local}
}

// Check runs health checks against all components. A dead store makes
// the whole service unhealthy; embedding trouble only degrades it,
// since ranking falls back to category and distance signals.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	if s.remote != nil {
		if err := s.remote.HealthCheck(ctx); err != nil {
			checks["embeddings"] = CheckError
		} else {
			checks["embeddings"] = CheckOK
		}
	}
	if s.local != nil {
		if s.local.Degraded() {
			checks["embeddings"] = CheckDegraded
		} else {
			checks["embeddings"] = CheckOK
		}
	}
	if status == Healthy && checks["embeddings"] != "" && checks["embeddings"] != CheckOK {
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
