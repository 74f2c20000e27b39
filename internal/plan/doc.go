// Package plan converts a validated graph into an executable plan: a
// deterministic topological ordering plus an edge index used by the
// scheduler to resolve node inputs.
package plan
