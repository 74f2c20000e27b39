// Package executor is the run loop of the engine: it walks a plan,
// dispatches nodes whose producers are all terminal to their registered
// executors (concurrently, bounded by a semaphore), writes results into the
// run's execution context, and streams one completion event per node to the
// caller.
package executor
