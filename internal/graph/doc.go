// Package graph defines the immutable flow description consumed by the
// planner: nodes with opaque per-type config, and directed edges between
// named ports.
package graph
