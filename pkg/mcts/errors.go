package mcts

import "errors"

// Sentinel errors for the core's error kinds. Contention with a concurrent
// expander is not an error (AcquireExpanding simply returns false).
// ExpandChildren wraps evaluator failures in ErrEvaluatorFailure; no
// function in this package returns ErrUnexpectedState or ErrCacheIOError.
var (
	// ErrUnexpectedState means Expand was called twice, or Update was
	// called on a node that was never expanded. Neither case is checked
	// for, so nothing in this package returns it.
	ErrUnexpectedState = errors.New("mcts: unexpected node state")

	// ErrEvaluatorFailure wraps a failure from the evaluator collaborator
	// (missing weights, a compute error). ExpandChildren calls
	// ExpandCancel before returning it, so other threads may retry.
	ErrEvaluatorFailure = errors.New("mcts: evaluator failure")

	// ErrCacheIOError means the evaluation cache could not accept an
	// insert (out of memory). EvalCache.Insert does not return it: an
	// insert ristretto rejects is logged at debug level and dropped.
	ErrCacheIOError = errors.New("mcts: cache io error")
)
