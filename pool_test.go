package modelchecker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// counterState is the trial state for a small experiment: one action that
// suspends once and then makes two sequential choices, with the check failing
// whenever both choices land on their maximum option.
type counterState struct {
	a, b Choice
}

func counterBuilder() *ExperimentBuilder[counterState] {
	return &ExperimentBuilder[counterState]{
		NewState: func() counterState { return counterState{} },
		Build: func(q *WorkQueue, state *counterState) *RunnableActionSet {
			s := NewRunnableActionSet(q, 0)
			s.AddAction(func(s *RunnableActionSet) {
				s.Background()
				state.a = s.Choice(2)
				state.b = s.Choice(2)
			})
			return s
		},
		Check: func(result ActionResult, state *counterState) bool {
			return !(state.a == 1 && state.b == 1)
		},
	}
}

func alwaysPassBuilder() *ExperimentBuilder[counterState] {
	b := counterBuilder()
	b.Check = func(result ActionResult, state *counterState) bool { return true }
	return b
}

func TestPoolRunExhaustsSearchSpaceWithNoFailure(t *testing.T) {
	pool := NewPool[counterState](WithWorkers(3))
	defer pool.Close()

	_, found := pool.Run(alwaysPassBuilder(), nil)
	require.False(t, found)

	snap := pool.Stats()
	require.Equal(t, int64(4), snap.TrialsRun)
	require.False(t, snap.LastShortCircuited)
}

func TestPoolRunFindsBadPathRegardlessOfWorkerCount(t *testing.T) {
	for _, workers := range []int{1, 2, 4, 8} {
		pool := NewPool[counterState](WithWorkers(workers))

		path, found := pool.Run(counterBuilder(), nil)
		require.True(t, found, "workers=%d", workers)
		require.True(t, path.Equal(Path{0, 1, 1}), "workers=%d got %v", workers, path)

		snap := pool.Stats()
		require.True(t, snap.LastShortCircuited, "workers=%d", workers)

		require.NoError(t, pool.Close())
	}
}

func TestPoolRunAllCollectsEveryFailingPath(t *testing.T) {
	pool := NewPool[counterState](WithWorkers(2))
	defer pool.Close()

	// Both committed prefixes lead into the same failing leaf {0, 1, 1};
	// RunAll should report it twice, once per initial path searched.
	paths := []Path{{0, 1}, nil}
	bad := pool.RunAll(counterBuilder(), paths)

	require.Len(t, bad, 2)
	for _, p := range bad {
		require.True(t, p.Equal(Path{0, 1, 1}))
	}
}

func TestPoolReplayingBadPathForcesTheSameFailure(t *testing.T) {
	pool := NewPool[counterState](WithWorkers(3))
	defer pool.Close()

	badPath, found := pool.Run(counterBuilder(), nil)
	require.True(t, found)

	replay := New(badPath)
	s := NewRunnableActionSet(replay, 0)
	var state counterState
	s.AddAction(func(s *RunnableActionSet) {
		s.Background()
		state.a = s.Choice(2)
		state.b = s.Choice(2)
	})
	res := s.Run()
	require.Equal(t, ActionResultOK, res)
	require.Equal(t, Choice(1), state.a)
	require.Equal(t, Choice(1), state.b)
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	pool := NewPool[counterState](WithWorkers(2))
	require.NoError(t, pool.Close())
	require.NoError(t, pool.Close())
}

func TestPoolStatsAccumulatesAcrossRuns(t *testing.T) {
	pool := NewPool[counterState](WithWorkers(2))
	defer pool.Close()

	builder := alwaysPassBuilder()

	_, found1 := pool.Run(builder, nil)
	require.False(t, found1)

	snap1 := pool.Stats()
	require.Equal(t, int64(4), snap1.TrialsRun)

	_, found2 := pool.Run(builder, nil)
	require.False(t, found2)

	snap2 := pool.Stats()
	require.Equal(t, int64(8), snap2.TrialsRun)
}

func TestPoolRunPanicsIfCalledAfterClose(t *testing.T) {
	pool := NewPool[counterState](WithWorkers(1))
	require.NoError(t, pool.Close())
	require.Panics(t, func() {
		pool.Run(counterBuilder(), nil)
	})
}

// TestPoolNewStateCalledOncePerTrial exercises NewState being called exactly
// once per leaf of the choice tree, independent of worker count.
func TestPoolNewStateCalledOncePerTrial(t *testing.T) {
	var builds atomic.Int64
	builder := alwaysPassBuilder()
	builder.NewState = func() counterState {
		builds.Add(1)
		return counterState{}
	}

	pool := NewPool[counterState](WithWorkers(2))
	defer pool.Close()

	pool.Run(builder, nil)
	require.Equal(t, int64(4), builds.Load())
}
