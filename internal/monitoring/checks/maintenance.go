package checks

import (
	"context"
	"strings"
	"time"

	"github.com/charlesng35/filecache/internal/monitoring"
)

const defaultSweepMaxAge = 6 * time.Hour

// Sweeper verifies that the maintenance sweep has run within maxAge and that
// the store was reachable on the last run. Partial evictions are reported but
// do not degrade readiness. When maxAge is zero a 6h window is used.
func Sweeper(module *monitoring.Module, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultSweepMaxAge
	}

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		start := time.Now()
		if module == nil {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "monitoring not configured",
				Duration: time.Since(start),
			}
		}

		sweeps := module.Snapshot().Sweeps
		if sweeps.TotalRuns == 0 {
			return monitoring.ProbeResult{
				Status:   monitoring.StatusUp,
				Details:  "pending first sweep",
				Duration: time.Since(start),
			}
		}

		status := monitoring.StatusUp
		var problems []string

		switch {
		case sweeps.LastStatus == monitoring.SweepError:
			status = worstStatus(status, monitoring.StatusDegraded)
			problems = append(problems, "last sweep failed: "+sweeps.LastError)
		case sweeps.LastStatus == monitoring.SweepPartial:
			problems = append(problems, "last sweep left entries behind: "+sweeps.LastError)
		}
		if time.Since(sweeps.LastRunAt) > maxAge {
			status = worstStatus(status, monitoring.StatusDegraded)
			problems = append(problems, "stale run "+sweeps.LastRunAt.UTC().Format(time.RFC3339))
		}

		return monitoring.ProbeResult{
			Status:   status,
			Details:  strings.Join(problems, "; "),
			Duration: time.Since(start),
		}
	})
}

func worstStatus(current, candidate monitoring.ProbeStatus) monitoring.ProbeStatus {
	if current == monitoring.StatusDown || candidate == monitoring.StatusDown {
		return monitoring.StatusDown
	}
	if current == monitoring.StatusDegraded || candidate == monitoring.StatusDegraded {
		return monitoring.StatusDegraded
	}
	return monitoring.StatusUp
}
