// Package runstate holds the per-run execution context: node lifecycle
// states, resolved output port values with activation flags for conditional
// branching, and accumulated errors. Created at run start, discarded at run
// end.
package runstate
