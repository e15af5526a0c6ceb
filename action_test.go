package modelchecker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnableActionSetRunsSequentialActionsToCompletion(t *testing.T) {
	wq := New(nil)
	s := NewRunnableActionSet(wq, 0)

	var order []string
	s.AddAction(func(s *RunnableActionSet) {
		order = append(order, "a-start")
		s.Background()
		order = append(order, "a-end")
	})
	s.AddAction(func(s *RunnableActionSet) {
		order = append(order, "b-start")
		s.Background()
		order = append(order, "b-end")
	})

	result := s.Run()
	require.Equal(t, ActionResultOK, result)
	require.Equal(t, []string{"a-start", "b-start", "a-end", "b-end"}, order)
	require.Equal(t, 2, s.DecisionCount())
}

func TestRunnableActionSetChoiceInterleavesWithScheduling(t *testing.T) {
	wq := New(nil)
	s := NewRunnableActionSet(wq, 0)

	var picked Choice
	s.AddAction(func(s *RunnableActionSet) {
		s.Background()
		picked = s.Choice(5)
	})

	result := s.Run()
	require.Equal(t, ActionResultOK, result)
	require.Equal(t, Choice(0), picked)
	// The scheduling decision that resumes the action and the manual Choice
	// share the same counter: one to pick among the (then 1) suspended
	// action, one to pick among the 5 options.
	require.Equal(t, 2, s.DecisionCount())
}

func TestRunnableActionSetMaxDecisionsProducesTimeout(t *testing.T) {
	wq := New(nil)
	s := NewRunnableActionSet(wq, 1)

	resumed := make(chan struct{}, 1)
	s.AddAction(func(s *RunnableActionSet) {
		s.Background()
		// Reached: the single allowed decision (choice 0) resumes this action.
		resumed <- struct{}{}
	})
	s.AddAction(func(s *RunnableActionSet) {
		s.Background()
		// Never reached: MaxDecisions is hit before this action is resumed.
		resumed <- struct{}{}
	})

	result := s.Run()
	require.Equal(t, ActionResultTimeout, result)
	require.Equal(t, 1, s.DecisionCount())

	select {
	case <-resumed:
	default:
		t.Fatal("the one allowed decision did not resume an action")
	}
	select {
	case <-resumed:
		t.Fatal("a suspended action resumed after the run hit MaxDecisions")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunnableActionSetSuspendedActionsExitCleanlyOnTimeout(t *testing.T) {
	// Regression test for goroutine leaks: an action parked in Background
	// when Run gives up (MaxDecisions reached) must still exit instead of
	// blocking forever.
	wq := New(nil)
	s := NewRunnableActionSet(wq, 1)

	exited := make(chan struct{})
	// The single allowed decision (choice 0) resumes this first action.
	s.AddAction(func(s *RunnableActionSet) {
		s.Background()
	})
	// This one is still parked in Background when Run gives up.
	s.AddAction(func(s *RunnableActionSet) {
		s.Background()
		close(exited)
	})

	result := s.Run()
	require.Equal(t, ActionResultTimeout, result)

	select {
	case <-exited:
		t.Fatal("action ran past Background after the run ended via timeout")
	case <-time.After(200 * time.Millisecond):
		// The goroutine called runtime.Goexit from within Background instead
		// of resuming past it or leaking; there is nothing further to
		// observe other than the absence of the close(exited) above.
	}
}

func TestRunnableActionSetAddActionAfterDecisionsPanics(t *testing.T) {
	wq := New(nil)
	s := NewRunnableActionSet(wq, 0)

	s.AddAction(func(s *RunnableActionSet) {
		s.Choice(2)
	})

	require.Panics(t, func() {
		s.AddAction(func(s *RunnableActionSet) {})
	})
}

func TestRunnableActionSetRunTwicePanics(t *testing.T) {
	wq := New(nil)
	s := NewRunnableActionSet(wq, 0)
	s.AddAction(func(s *RunnableActionSet) {})
	require.Equal(t, ActionResultOK, s.Run())
	require.Panics(t, func() {
		s.Run()
	})
}
