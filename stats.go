package modelchecker

import "sync/atomic"

// Stats tracks low-overhead, lock-free counters for a Pool's search
// activity. All fields are safe for concurrent access from any worker
// goroutine; Snapshot returns a consistent-enough point-in-time copy for
// reporting, not a transactional read across fields.
type Stats struct {
	trialsRun          atomic.Int64
	decisionsTotal     atomic.Int64
	stealsSucceeded    atomic.Int64
	stealsFailed       atomic.Int64
	lastShortCircuited atomic.Bool
}

// StatsSnapshot is an immutable copy of a Stats at one point in time.
type StatsSnapshot struct {
	TrialsRun          int64
	DecisionsTotal     int64
	StealsSucceeded    int64
	StealsFailed       int64
	LastShortCircuited bool
}

func (s *Stats) recordTrial(decisions int) {
	s.trialsRun.Add(1)
	s.decisionsTotal.Add(int64(decisions))
}

func (s *Stats) recordSteals(succeeded, failed int64) {
	s.stealsSucceeded.Add(succeeded)
	s.stealsFailed.Add(failed)
}

func (s *Stats) recordRunOutcome(shortCircuited bool) {
	s.lastShortCircuited.Store(shortCircuited)
}

// Snapshot returns a copy of the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		TrialsRun:          s.trialsRun.Load(),
		DecisionsTotal:     s.decisionsTotal.Load(),
		StealsSucceeded:    s.stealsSucceeded.Load(),
		StealsFailed:       s.stealsFailed.Load(),
		LastShortCircuited: s.lastShortCircuited.Load(),
	}
}
