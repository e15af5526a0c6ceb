package modelchecker

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool drives an exhaustive, parallel model-checking search over a fixed
// set of worker goroutines, each exploring its own subtree of the choice
// tree and work-stealing from its peers as its own subtree runs dry. A Pool
// may run any number of experiments sequentially over its lifetime; the
// worker goroutines themselves are started once, by NewPool, and persist
// until Close.
type Pool[T any] struct {
	workers int
	logger  poolLogger
	stats   Stats

	mu       sync.Mutex
	cond     *sync.Cond
	manager  *WorkQueueManager
	builder  *ExperimentBuilder[T]
	barrier  *sync.WaitGroup
	finished chan struct{}

	abortCtl *AbortController
	group    *errgroup.Group

	closeOnce sync.Once
	closeErr  error
}

// NewPool constructs a Pool and starts its worker goroutines immediately.
// Callers must eventually call Close.
func NewPool[T any](opts ...Option) *Pool[T] {
	var o poolOptions
	for _, opt := range opts {
		opt.applyPool(&o)
	}
	workers := o.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pool[T]{
		workers:  workers,
		logger:   poolLogger{logger: o.logger},
		abortCtl: NewAbortController(),
	}
	p.cond = sync.NewCond(&p.mu)

	var group errgroup.Group
	p.group = &group
	for i := 0; i < workers; i++ {
		workerID := i
		group.Go(func() error {
			p.workerLoop(workerID)
			return nil
		})
	}

	return p
}

// Run exhaustively searches the choice tree rooted at initialPath, building
// a fresh trial from builder at every leaf, until either the whole subtree
// has been explored or some trial fails its Check. It returns the first
// failing path found, if any. Run may be called repeatedly on the same
// Pool, but never concurrently with itself.
func (p *Pool[T]) Run(builder *ExperimentBuilder[T], initialPath Path) (Path, bool) {
	invariant(!p.abortCtl.Signal().Aborted(), "Pool.Run", "pool is closed")

	barrier := &sync.WaitGroup{}
	barrier.Add(p.workers)
	finished := make(chan struct{})

	p.mu.Lock()
	invariant(p.manager == nil, "Pool.Run", "a run is already in progress on this pool")
	manager := NewWorkQueueManager(p.workers, initialPath)
	p.manager = manager
	p.builder = builder
	p.barrier = barrier
	p.finished = finished
	p.cond.Broadcast()
	p.mu.Unlock()

	p.logger.runStarted(p.workers, initialPath)

	barrier.Wait()

	badPath, found := manager.BadPath()
	succeeded, failed := manager.StealCounts()
	p.stats.recordSteals(succeeded, failed)
	p.stats.recordRunOutcome(found)

	p.mu.Lock()
	p.manager = nil
	p.builder = nil
	p.mu.Unlock()

	close(finished)

	if found {
		p.logger.runFoundBadPath(badPath)
	} else {
		p.logger.runCompleted()
	}

	return badPath, found
}

// RunAll calls Run once per path in paths, against the same builder, and
// collects every failing path found. Useful for confirming a fix closes
// every previously known failure in one call.
func (p *Pool[T]) RunAll(builder *ExperimentBuilder[T], paths []Path) []Path {
	var bad []Path
	for _, initial := range paths {
		if path, found := p.Run(builder, initial); found {
			bad = append(bad, path)
		}
	}
	return bad
}

// Stats returns a snapshot of this Pool's cumulative search statistics.
func (p *Pool[T]) Stats() StatsSnapshot {
	return p.stats.Snapshot()
}

// Close cooperatively shuts down every worker goroutine and waits for them
// to exit. Close is idempotent; a Pool must not be used after Close.
func (p *Pool[T]) Close() error {
	p.closeOnce.Do(func() {
		p.abortCtl.Abort("pool closed")
		p.mu.Lock()
		p.cond.Broadcast()
		p.mu.Unlock()
		p.closeErr = p.group.Wait()
	})
	return p.closeErr
}

// workerLoop is the main loop run by each worker goroutine: it waits for a
// run to start, drains its assigned WorkQueue (stealing more from peers as
// needed) until the run is over, then goes back to waiting for the next
// run — or for the pool to close.
func (p *Pool[T]) workerLoop(workerID int) {
	signal := p.abortCtl.Signal()
	for {
		p.mu.Lock()
		for p.manager == nil && !signal.Aborted() {
			p.cond.Wait()
		}
		if signal.Aborted() {
			p.mu.Unlock()
			return
		}
		manager := p.manager
		builder := p.builder
		barrier := p.barrier
		finished := p.finished
		p.mu.Unlock()

		p.runTrials(workerID, manager, builder)

		barrier.Done()
		<-finished
	}
}

// runTrials drains workerID's assigned subtree of manager's choice tree,
// one trial per leaf, until no work remains.
func (p *Pool[T]) runTrials(workerID int, manager *WorkQueueManager, builder *ExperimentBuilder[T]) {
	for {
		wq, ok := manager.GetWorkQueue(workerID)
		if !ok {
			return
		}

		exp := builder.newExperiment()
		actionSet := exp.build(wq)
		res := actionSet.Run()
		p.stats.recordTrial(actionSet.DecisionCount())

		if !exp.check(res) {
			manager.ShortcircuitDone(wq.CurrentPath())
			p.logger.trialFailed(workerID, wq.CurrentPath())
		}

		wq.AdvanceCursor()
		if !wq.Done() {
			manager.MarkSelfAsStealable(workerID)
		}
	}
}
