package monitoring

import (
	"sync/atomic"
	"time"
)

// Sweep results accepted by RecordSweep.
const (
	SweepSuccess = "success"
	SweepPartial = "partial"
	SweepError   = "error"
)

type sweepStats struct {
	lastStatus           atomic.Value // string
	lastError            atomic.Value // string
	lastRun              atomic.Int64 // unix nano
	lastDuration         atomic.Int64 // nanoseconds
	lastSuccessfulRun    atomic.Int64
	consecutiveFailures  atomic.Uint64
	consecutiveSuccesses atomic.Uint64
	totalRuns            atomic.Uint64
}

func (s *sweepStats) record(result, message string, duration time.Duration, at time.Time) {
	if duration < 0 {
		duration = 0
	}
	s.lastStatus.Store(result)
	s.lastError.Store(message)
	s.lastRun.Store(at.UnixNano())
	s.lastDuration.Store(int64(duration))
	s.totalRuns.Add(1)

	if result == SweepSuccess {
		s.consecutiveFailures.Store(0)
		s.consecutiveSuccesses.Add(1)
		s.lastSuccessfulRun.Store(at.UnixNano())
		return
	}
	s.consecutiveFailures.Add(1)
	s.consecutiveSuccesses.Store(0)
}

func (s *sweepStats) snapshot() SweepSummary {
	status, _ := s.lastStatus.Load().(string)
	errMsg, _ := s.lastError.Load().(string)

	summary := SweepSummary{
		LastStatus:          status,
		LastDuration:        time.Duration(s.lastDuration.Load()),
		LastError:           errMsg,
		ConsecutiveFailures: s.consecutiveFailures.Load(),
		ConsecutiveSuccess:  s.consecutiveSuccesses.Load(),
		TotalRuns:           s.totalRuns.Load(),
	}
	if ns := s.lastRun.Load(); ns != 0 {
		summary.LastRunAt = time.Unix(0, ns)
	}
	if ns := s.lastSuccessfulRun.Load(); ns != 0 {
		summary.LastSuccessAt = time.Unix(0, ns)
	}
	return summary
}
