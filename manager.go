package modelchecker

import (
	"sync"
	"sync/atomic"
)

// WorkQueueManager owns a fixed set of WorkQueue slots, one per worker, and
// coordinates work-stealing and termination detection between them. Lock
// ordering is always manager-before-queue: GetWorkQueue holds the manager's
// mutex for the whole of a steal attempt, including the call into the
// victim WorkQueue's own StealWork, which acquires that queue's mutex while
// the manager's is still held. The reverse order never happens, so this
// cannot deadlock.
type WorkQueueManager struct {
	workQueues []*queueState

	mu            sync.Mutex
	cond          *sync.Cond
	pendingSteals int
	stealable     []*queueState
	shortcircuit  bool
	badPath       Path
	hasBadPath    bool

	stealsSucceeded atomic.Int64
	stealsFailed    atomic.Int64
}

// NewWorkQueueManager constructs a manager with n worker slots, all but the
// first empty; the first slot owns a WorkQueue rooted at initialPath.
func NewWorkQueueManager(n int, initialPath Path) *WorkQueueManager {
	invariant(n >= 1, "NewWorkQueueManager", "n must be >= 1, got %d", n)
	m := &WorkQueueManager{
		workQueues: make([]*queueState, n),
	}
	m.cond = sync.NewCond(&m.mu)
	for i := range m.workQueues {
		m.workQueues[i] = &queueState{}
	}
	m.workQueues[0].work = New(initialPath)
	return m
}

// GetWorkQueue returns the WorkQueue assigned to worker idx, stealing a new
// one if the queue currently assigned to idx is done or unset. It returns
// (nil, false) once every worker has no work left: the whole search is
// complete.
func (m *WorkQueueManager) GetWorkQueue(idx int) (*WorkQueue, bool) {
	invariant(idx >= 0 && idx < len(m.workQueues), "WorkQueueManager.GetWorkQueue", "idx %d out of range", idx)

	state := m.workQueues[idx]
	if state.work != nil && !state.work.Done() {
		return state.work, true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingSteals++

	done := func() bool { return m.shortcircuit || m.pendingSteals == len(m.workQueues) }

	for {
		if len(m.stealable) == 0 {
			for len(m.stealable) == 0 && !done() {
				m.cond.Wait()
			}
		}
		if done() {
			m.cond.Broadcast()
			return nil, false
		}

		stealFrom := m.stealable[0]

		if newQueue, ok := stealFrom.work.StealWork(); ok {
			state.work = newQueue
			state.inStealQueue.Store(false)
			m.pendingSteals--
			m.stealsSucceeded.Add(1)
			return state.work, true
		}
		// Nothing left to steal from that victim right now; drop it from the
		// stealable set (it stays eligible to be re-added later via
		// MarkSelfAsStealable once it discovers more branch points).
		stealFrom.inStealQueue.Store(false)
		m.stealable = m.stealable[1:]
		m.stealsFailed.Add(1)
	}
}

// MarkSelfAsStealable registers worker idx's current queue as a candidate
// for other workers to steal from.
func (m *WorkQueueManager) MarkSelfAsStealable(idx int) {
	invariant(idx >= 0 && idx < len(m.workQueues), "WorkQueueManager.MarkSelfAsStealable", "idx %d out of range", idx)
	m.markAsStealable(m.workQueues[idx])
}

func (m *WorkQueueManager) markAsStealable(state *queueState) {
	if state.inStealQueue.Load() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shortcircuit {
		return
	}
	state.inStealQueue.Store(true)
	m.stealable = append(m.stealable, state)
	m.cond.Broadcast()
}

// Done reports whether the search is over: either every worker has run out
// of work, or ShortcircuitDone was called.
func (m *WorkQueueManager) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shortcircuit {
		return true
	}
	return m.pendingSteals == len(m.workQueues)
}

// ShortcircuitDone ends the search: the stealable set is cleared, every
// worker currently blocked in GetWorkQueue is woken with no more work, and
// badPath is recorded as the reason. A worker whose own WorkQueue is not yet
// Done still gets it back from GetWorkQueue and runs it to completion.
// Intended for use as soon as one worker's trial fails its check.
func (m *WorkQueueManager) ShortcircuitDone(badPath Path) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stealable = nil
	m.shortcircuit = true
	if !m.hasBadPath {
		m.hasBadPath = true
		m.badPath = clonePath(badPath)
	}
	m.cond.Broadcast()
}

// BadPath returns the path recorded by ShortcircuitDone, if any.
func (m *WorkQueueManager) BadPath() (Path, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.badPath, m.hasBadPath
}

// StealCounts returns the number of successful and failed steal attempts
// made against this manager's queues over its lifetime.
func (m *WorkQueueManager) StealCounts() (succeeded, failed int64) {
	return m.stealsSucceeded.Load(), m.stealsFailed.Load()
}
