package modelchecker

import (
	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// poolLogger wraps an optional structured logger, so every call site in
// Pool can log unconditionally without a nil check. A zero-value poolLogger
// (no logger attached) is a no-op.
type poolLogger struct {
	logger *logiface.Logger[*islog.Event]
}

func (l poolLogger) runStarted(workers int, initialPath Path) {
	if l.logger == nil {
		return
	}
	l.logger.Info().
		Int("workers", workers).
		Stringer("initial_path", initialPath).
		Log("run started")
}

func (l poolLogger) runCompleted() {
	if l.logger == nil {
		return
	}
	l.logger.Info().Log("run completed: search space exhausted, no failing path found")
}

func (l poolLogger) runFoundBadPath(path Path) {
	if l.logger == nil {
		return
	}
	l.logger.Err().
		Stringer("path", path).
		Log("run found a failing path")
}

func (l poolLogger) trialFailed(workerID int, path Path) {
	if l.logger == nil {
		return
	}
	l.logger.Warning().
		Int("worker", workerID).
		Stringer("path", path).
		Log("trial failed its check")
}
