package modelchecker

import (
	"math"
	"runtime"
)

// Action is one cooperatively scheduled unit of work within a
// RunnableActionSet. It runs eagerly on its own goroutine from the moment it
// is added until it either returns or calls RunnableActionSet.Background,
// at which point it suspends until the scheduler resumes it.
type Action func(s *RunnableActionSet)

// RunnableActionSet is a cooperative scheduler for a fixed set of Actions,
// plus zero or more interleaved manual choices (RunnableActionSet.Choice).
// Every scheduling decision — which suspended action to resume next, and
// every manual choice — is delegated to an underlying WorkQueue, so that a
// full Run is reproducible given the same WorkQueue state.
//
// Go has no native stackless coroutines, so each Action body runs on its
// own goroutine; RunnableActionSet enforces that only one of them is ever
// runnable at a time via a strict rendezvous protocol (an unbuffered
// channel per suspended action, plus one shared "back" channel signaling
// "I have suspended or returned"). This reproduces the same decision
// sequence a single-threaded coroutine scheduler would, because the
// schedule is driven entirely by WorkQueue.GetChoice and never depends on
// goroutine scheduling order.
type RunnableActionSet struct {
	workQueue     *WorkQueue
	maxDecisions  int
	decisionCount int

	// actions holds one resume channel per currently suspended action, in
	// the order each most recently suspended (append-only; removed by index
	// when chosen).
	actions []chan struct{}
	// back is signaled by whichever goroutine is currently running, the
	// instant it suspends (via Background) or returns.
	back chan struct{}
	// stopped is closed once Run is done driving decisions, releasing any
	// actions left suspended (e.g. because MaxDecisions was reached) so
	// their goroutines exit instead of leaking.
	stopped chan struct{}
}

// NewRunnableActionSet constructs a RunnableActionSet driven by workQueue.
// maxDecisions bounds the number of decisions (scheduling decisions and
// Choice calls, which share one counter) after which Run stops resuming
// actions; Choice itself does not check the bound. Pass 0 for no bound.
func NewRunnableActionSet(workQueue *WorkQueue, maxDecisions int) *RunnableActionSet {
	if maxDecisions <= 0 {
		maxDecisions = math.MaxInt
	}
	return &RunnableActionSet{
		workQueue:    workQueue,
		maxDecisions: maxDecisions,
		back:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
}

// AddAction registers action and runs it immediately, up to its first call
// to Background or its return, whichever comes first. Every AddAction call
// must happen before the first decision is made (i.e. before Run starts
// choosing between suspended actions or Choice is called); registering
// actions interleaved with decisions is an invariant violation.
func (s *RunnableActionSet) AddAction(action Action) {
	invariant(s.decisionCount == 0, "RunnableActionSet.AddAction", "cannot add actions once decisions have started")
	go func() {
		action(s)
		s.back <- struct{}{}
	}()
	<-s.back
}

// Background suspends the calling action, making it schedulable again
// alongside every other suspended action. The action resumes, on its own
// goroutine, once the scheduler (Run) chooses it.
func (s *RunnableActionSet) Background() {
	resume := make(chan struct{})
	s.actions = append(s.actions, resume)
	s.back <- struct{}{}
	select {
	case <-resume:
	case <-s.stopped:
		// The trial ended (timeout or otherwise) before this action was ever
		// resumed again; it never gets to run further.
		runtime.Goexit()
	}
}

// Choice records a manual, non-deterministic decision with nOpts options
// (0..nOpts-1), delegating to the underlying WorkQueue exactly like an
// automatic scheduling decision. It shares the same decision counter, so
// manual choices and scheduling decisions are interleaved in the order they
// actually occur.
func (s *RunnableActionSet) Choice(nOpts Choice) Choice {
	invariant(s.decisionCount < 256, "RunnableActionSet.Choice", "decision count exceeded height range")
	height := uint8(s.decisionCount)
	s.decisionCount++
	return s.workQueue.GetChoice(height, nOpts)
}

// runNextDecision resumes exactly one suspended action, chosen by the
// WorkQueue. It returns false if there was nothing to do (no suspended
// actions, or MaxDecisions reached).
func (s *RunnableActionSet) runNextDecision() bool {
	if len(s.actions) == 0 || s.decisionCount >= s.maxDecisions {
		return false
	}
	invariant(s.decisionCount < 256, "RunnableActionSet.runNextDecision", "decision count exceeded height range")
	invariant(len(s.actions) <= math.MaxUint8, "RunnableActionSet.runNextDecision", "too many concurrently suspended actions")

	height := uint8(s.decisionCount)
	s.decisionCount++
	actionCount := Choice(len(s.actions))

	nextChoice := s.workQueue.GetChoice(height, actionCount)
	invariant(int(nextChoice) < len(s.actions), "RunnableActionSet.runNextDecision", "choice %d out of range", nextChoice)

	resume := s.actions[nextChoice]
	s.actions = append(s.actions[:nextChoice], s.actions[nextChoice+1:]...)

	close(resume)
	<-s.back
	return true
}

// DecisionCount returns the number of scheduling/choice decisions made so
// far in this run.
func (s *RunnableActionSet) DecisionCount() int {
	return s.decisionCount
}

// Run drives the scheduler until every action has completed or
// MaxDecisions is reached, whichever comes first. Run panics if any decision
// has already been made, which includes a Choice made by an action before its
// first Background as well as a second Run after decisions were made.
func (s *RunnableActionSet) Run() ActionResult {
	invariant(s.decisionCount == 0, "RunnableActionSet.Run", "decisions already made before Run")
	defer close(s.stopped)

	for s.runNextDecision() {
	}

	if len(s.actions) == 0 {
		return ActionResultOK
	}
	return ActionResultTimeout
}
