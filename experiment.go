package modelchecker

// ExperimentBuilder describes one model-checking experiment over a state
// bundle of type T. NewState constructs a fresh T for each trial; Build
// wires that state up to a RunnableActionSet against a given WorkQueue;
// Check is run once the RunnableActionSet finishes, and decides whether the
// trial is acceptable.
//
// NewState and Check are free to capture whatever they like. Build must
// not: it must close over nothing but its own parameters (the WorkQueue and
// the *T passed to it). Build runs once per trial and wires up actions that
// will run concurrently with other trials' actions across worker
// goroutines; anything Build captures from outside its parameters is state
// shared across trials, which is exactly the class of bug this restriction
// exists to rule out.
type ExperimentBuilder[T any] struct {
	NewState func() T
	Build    func(q *WorkQueue, state *T) *RunnableActionSet
	Check    func(result ActionResult, state *T) bool
}

type experimentPhase int

const (
	experimentInitialized experimentPhase = iota
	experimentRunning
	experimentChecked
)

// experiment is one trial's instantiation of an ExperimentBuilder: its own
// state bundle, built and checked exactly once, in order.
type experiment[T any] struct {
	builder *ExperimentBuilder[T]
	state   T
	phase   experimentPhase
}

func (b *ExperimentBuilder[T]) newExperiment() *experiment[T] {
	return &experiment[T]{builder: b, state: b.NewState()}
}

func (e *experiment[T]) build(q *WorkQueue) *RunnableActionSet {
	invariant(e.phase == experimentInitialized, "experiment.build", "build called out of order")
	e.phase = experimentRunning
	return e.builder.Build(q, &e.state)
}

func (e *experiment[T]) check(result ActionResult) bool {
	invariant(e.phase == experimentRunning, "experiment.check", "check called out of order")
	e.phase = experimentChecked
	return e.builder.Check(result, &e.state)
}
