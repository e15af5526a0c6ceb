// Package modelchecker implements a deterministic model checker for
// cooperative concurrent programs.
//
// A "trial" is a single run of a user-supplied experiment: a set of
// cooperatively scheduled actions plus zero or more manual, non-deterministic
// choice points. The checker enumerates every possible interleaving of
// scheduling decisions and manual choices exhaustively, via depth-first
// search over a lazily materialized choice tree, and reports the first
// explored path whose trial fails a user-supplied check.
//
// The search can be driven by a single goroutine (RunnableActionSet driven
// directly against a WorkQueue) or spread across a fixed pool of worker
// goroutines that steal unexplored subtrees from one another (Pool). Both
// drivers produce results independent of the degree of parallelism: the set
// of paths explored is the same, only the order and the assignment of
// subtrees to workers differs.
//
// Any failing path is reproducible: replaying a trial with that exact Path as
// the initial path forces every choice along it deterministically.
package modelchecker
