package modelchecker

import "fmt"

// InvariantError reports a violation of one of this package's internal
// invariants: a programmer-contract break (a decision point revisited with a
// different option count, an action taken that isn't among the options on
// offer, an experiment driven out of order) rather than anything a caller should retry or recover from.
//
// InvariantError values are always delivered via panic, never returned.
type InvariantError struct {
	// Op names the method that detected the violation, e.g.
	// "WorkQueue.GetChoice" or "RunnableActionSet.AddAction".
	Op string
	// Message describes what went wrong.
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("modelchecker: invariant violation in %s: %s", e.Op, e.Message)
}

// invariant panics with an *InvariantError if cond is false.
func invariant(cond bool, op, format string, args ...any) {
	if cond {
		return
	}
	panic(&InvariantError{Op: op, Message: fmt.Sprintf(format, args...)})
}
