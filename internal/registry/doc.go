// Package registry holds the executor lookup consumed by the engine: a map
// from node-type identifier to the Executor implementation and port Spec for
// that type. External modules populate it; the engine never inspects
// executor internals.
package registry
