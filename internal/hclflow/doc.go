// Package hclflow loads flow definitions written in HCL: node blocks with
// opaque config attributes and edge blocks connecting named ports. It is the
// graph-authoring boundary; the engine itself places no constraint on the
// on-disk representation.
package hclflow
