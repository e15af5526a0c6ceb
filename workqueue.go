package modelchecker

import (
	"sync"
	"sync/atomic"
)

// passedChoice records one branch point below the committed prefix: choice
// is the branch currently being explored, nOpts is the number of sibling
// options the node was discovered with, and nextChoices holds the as-yet-
// unexplored siblings, with the next one to try at the back.
type passedChoice struct {
	choice      Choice
	nOpts       Choice
	nextChoices []Choice
}

// WorkQueue represents one goroutine's unexplored work on a (sub)tree of the
// choice-tree search space. Part of a WorkQueue can be stolen by another
// goroutine via StealWork. AdvanceCursor iterates through paths; deeper
// branch points are discovered lazily, on demand, as GetChoice is called.
//
// A WorkQueue must only be driven (GetChoice, AdvanceCursor, Done,
// DecisionCount, CurrentPath) by the goroutine that owns it. StealWork may be
// called concurrently by any other goroutine.
type WorkQueue struct {
	mu sync.Mutex

	// committedChoices is fixed for the lifetime of the queue: the prefix of
	// choices that every path explored by this queue shares. Never mutated
	// after construction.
	committedChoices Path
	// committedOpts lazily records the n_opts each committed-prefix height
	// was first observed with, so a later call at the same height with a
	// different n_opts is caught rather than silently trusted.
	committedOpts []Choice

	// passedChoices is the queue's live branch-point stack below the
	// committed prefix. StealWork may only mutate a given entry's
	// nextChoices; it must never touch choice, nOpts, or the length of
	// passedChoices itself.
	passedChoices []passedChoice

	done atomic.Bool
}

// New constructs a WorkQueue whose every explored path begins with the given
// committed prefix. A nil or empty prefix explores the whole tree.
func New(committedChoices Path) *WorkQueue {
	committed := clonePath(committedChoices)
	return &WorkQueue{
		committedChoices: committed,
		committedOpts:    make([]Choice, len(committed)),
	}
}

// GetChoice returns the choice to take at the given height (0 = root) for a
// decision offering n_opts consecutively numbered options (0..n_opts-1). If
// height falls within the committed prefix or an already-discovered branch
// point, the previously recorded choice is returned; otherwise a new branch
// point is discovered and choice 0 is returned, with the remaining options
// queued for later exploration by AdvanceCursor or theft by StealWork.
func (w *WorkQueue) GetChoice(height uint8, nOpts Choice) Choice {
	invariant(nOpts >= 1, "WorkQueue.GetChoice", "n_opts must be >= 1, got %d", nOpts)

	if int(height) < len(w.committedChoices) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.committedOpts[height] == 0 {
			w.committedOpts[height] = nOpts
		} else {
			invariant(w.committedOpts[height] == nOpts, "WorkQueue.GetChoice",
				"n_opts changed at height %d: was %d, now %d", height, w.committedOpts[height], nOpts)
		}
		choice := w.committedChoices[height]
		invariant(choice < nOpts, "WorkQueue.GetChoice", "committed choice %d out of range [0, %d)", choice, nOpts)
		return choice
	}

	passIndex := int(height) - len(w.committedChoices)

	// Fast path: a branch point already discovered at this height. Only the
	// owning goroutine ever mutates .choice/.nOpts (StealWork touches only
	// .nextChoices), so this read is safe without the mutex.
	if passIndex < len(w.passedChoices) {
		pc := &w.passedChoices[passIndex]
		invariant(pc.nOpts == nOpts, "WorkQueue.GetChoice",
			"n_opts changed at height %d: was %d, now %d", height, pc.nOpts, nOpts)
		invariant(pc.choice < nOpts, "WorkQueue.GetChoice", "passed choice %d out of range [0, %d)", pc.choice, nOpts)
		return pc.choice
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	invariant(passIndex == len(w.passedChoices), "WorkQueue.GetChoice",
		"height %d skips undiscovered branch points", height)

	nextChoices := make([]Choice, 0, int(nOpts)-1)
	for i := Choice(1); i < nOpts; i++ {
		nextChoices = append(nextChoices, nOpts-i)
	}
	w.passedChoices = append(w.passedChoices, passedChoice{choice: 0, nOpts: nOpts, nextChoices: nextChoices})
	return 0
}

// AdvanceCursor moves to the next unexplored path once the current one has
// been fully explored: it advances the deepest branch point with remaining
// siblings, discarding fully-explored deeper branch points along the way.
// If every branch point is exhausted, the queue becomes Done.
func (w *WorkQueue) AdvanceCursor() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := len(w.passedChoices) - 1; i >= 0; i-- {
		pc := &w.passedChoices[i]
		if len(pc.nextChoices) == 0 {
			w.passedChoices = w.passedChoices[:i]
			continue
		}
		last := len(pc.nextChoices) - 1
		pc.choice = pc.nextChoices[last]
		pc.nextChoices = pc.nextChoices[:last]
		return
	}
	w.done.Store(true)
}

// StealWork attempts to carve an unexplored subtree off of w and return it
// as a new, independent WorkQueue. It may fail (returning false) even when w
// is not Done: the theft happens near the root of w's remaining tree, and
// every branch point discovered so far may already be fully committed to a
// single remaining path, in which case there is nothing shallow to give
// away.
func (w *WorkQueue) StealWork() (*WorkQueue, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done.Load() {
		return nil, false
	}

	newCommitted := append(Path{}, w.committedChoices...)
	for i := range w.passedChoices {
		pc := &w.passedChoices[i]
		if len(pc.nextChoices) == 0 {
			newCommitted = append(newCommitted, pc.choice)
			continue
		}
		last := len(pc.nextChoices) - 1
		newCommitted = append(newCommitted, pc.nextChoices[last])
		pc.nextChoices = pc.nextChoices[:last]
		return New(newCommitted), true
	}
	return nil, false
}

// Done reports whether every path under this queue's committed prefix has
// been explored.
func (w *WorkQueue) Done() bool {
	return w.done.Load()
}

// DecisionCount returns the depth (number of decisions made) of the path
// currently being explored.
func (w *WorkQueue) DecisionCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.committedChoices) + len(w.passedChoices)
}

// CurrentPath returns the full path currently being explored: the committed
// prefix followed by every discovered branch point's current choice.
func (w *WorkQueue) CurrentPath() Path {
	w.mu.Lock()
	defer w.mu.Unlock()

	path := make(Path, 0, len(w.committedChoices)+len(w.passedChoices))
	path = append(path, w.committedChoices...)
	for _, pc := range w.passedChoices {
		path = append(path, pc.choice)
	}
	return path
}
