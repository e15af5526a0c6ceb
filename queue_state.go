package modelchecker

import "sync/atomic"

// queueState is one WorkQueueManager slot: the WorkQueue currently assigned
// to a worker, plus whether that slot is already registered in the
// manager's stealable set.
type queueState struct {
	work         *WorkQueue
	inStealQueue atomic.Bool
}
