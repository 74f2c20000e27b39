package hclflow

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
)

// DefaultPorts are assumed when an edge block omits the port names. Most
// built-in node types expose a single "in"/"out" pair, so short flow files
// stay short.
const (
	DefaultSourcePort = "out"
	DefaultTargetPort = "in"
)

// Loader reads flow definitions written in HCL and translates them into the
// engine's graph model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a flow file loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads a single .hcl file or every .hcl file under a directory and
// merges the declared nodes and edges into one graph.
func (l *Loader) Load(ctx context.Context, path string) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findFlowFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl flow files found at %s", path)
	}
	logger.Debug("Discovered flow files.", "count", len(files))

	var nodes []graph.Node
	var edges []graph.Edge
	for _, file := range files {
		hclFile, diags := l.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse flow file %s: %w", file, diags)
		}
		fileNodes, fileEdges, err := translate(hclFile.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode flow file %s: %w", file, err)
		}
		nodes = append(nodes, fileNodes...)
		edges = append(edges, fileEdges...)
	}

	return graph.New(nodes, edges)
}

// Parse decodes flow HCL held in memory, e.g. a request body or a test
// fixture.
func (l *Loader) Parse(src []byte, filename string) (*graph.Graph, error) {
	hclFile, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse flow %s: %w", filename, diags)
	}
	nodes, edges, err := translate(hclFile.Body)
	if err != nil {
		return nil, err
	}
	return graph.New(nodes, edges)
}

// translate decodes the top-level blocks of one flow body.
func translate(body hcl.Body) ([]graph.Node, []graph.Edge, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, nil, diags
	}

	nodes := make([]graph.Node, 0, len(root.Nodes))
	for _, nb := range root.Nodes {
		config, err := decodeConfig(nb.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("node '%s': %w", nb.ID, err)
		}
		nodes = append(nodes, graph.Node{ID: nb.ID, Type: nb.Type, Config: config})
	}

	edges := make([]graph.Edge, 0, len(root.Edges))
	for _, eb := range root.Edges {
		e := graph.Edge{
			Source:     eb.Source,
			SourcePort: eb.SourcePort,
			Target:     eb.Target,
			TargetPort: eb.TargetPort,
		}
		if e.SourcePort == "" {
			e.SourcePort = DefaultSourcePort
		}
		if e.TargetPort == "" {
			e.TargetPort = DefaultTargetPort
		}
		edges = append(edges, e)
	}
	return nodes, edges, nil
}

// decodeConfig evaluates a config block's attributes into plain Go values.
// Flow files carry literal configuration only; there is no expression
// context to resolve against.
func decodeConfig(block *configBlock) (map[string]any, error) {
	if block == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	config := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("config attribute '%s': %w", name, diags)
		}
		converted, err := ctyValueToInterface(val)
		if err != nil {
			return nil, fmt.Errorf("config attribute '%s': %w", name, err)
		}
		config[name] = converted
	}
	return config, nil
}

// findFlowFiles resolves a path to the list of .hcl files it names.
func findFlowFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}
