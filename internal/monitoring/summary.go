package monitoring

import "time"

// Summary surfaces aggregated monitoring data for the admin endpoints.
type Summary struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Sweeps      SweepSummary `json:"sweeps"`
}

type SweepSummary struct {
	LastStatus          string        `json:"last_status"`
	LastRunAt           time.Time     `json:"last_run_at"`
	LastDuration        time.Duration `json:"last_duration"`
	LastError           string        `json:"last_error,omitempty"`
	ConsecutiveFailures uint64        `json:"consecutive_failures"`
	ConsecutiveSuccess  uint64        `json:"consecutive_success"`
	LastSuccessAt       time.Time     `json:"last_success_at"`
	TotalRuns           uint64        `json:"total_runs"`
}

// RecordSweep stores the outcome of a maintenance sweep on the current module.
func RecordSweep(result, message string, duration time.Duration) {
	if module := CurrentModule(); module != nil {
		module.sweeps.record(result, message, duration, time.Now())
	}
}

// Snapshot returns a point-in-time summary from the current module when configured.
func Snapshot() Summary {
	if module := CurrentModule(); module != nil {
		return module.Snapshot()
	}
	return Summary{GeneratedAt: time.Now()}
}

// Snapshot returns a point-in-time summary of this module.
func (m *Module) Snapshot() Summary {
	return Summary{
		GeneratedAt: time.Now(),
		Sweeps:      m.sweeps.snapshot(),
	}
}
