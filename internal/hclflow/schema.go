package hclflow

import "github.com/hashicorp/hcl/v2"

// nodeBlock represents a `node "TYPE" "ID"` block in a flow file.
type nodeBlock struct {
	Type   string       `hcl:"node_type,label"`
	ID     string       `hcl:"id,label"`
	Config *configBlock `hcl:"config,block"`
}

// configBlock holds the free-form attributes of a node's config. The engine
// never interprets them; they pass through to the node's executor.
type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// edgeBlock represents an `edge` block connecting two node ports.
type edgeBlock struct {
	Source     string `hcl:"source"`
	SourcePort string `hcl:"source_port,optional"`
	Target     string `hcl:"target"`
	TargetPort string `hcl:"target_port,optional"`
}

// fileRoot is the top-level structure of a flow file.
type fileRoot struct {
	Nodes  []*nodeBlock `hcl:"node,block"`
	Edges  []*edgeBlock `hcl:"edge,block"`
	Remain hcl.Body     `hcl:",remain"`
}
