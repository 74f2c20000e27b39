package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client lets callers inject a configured HTTP client; tests use this.
	// A nil Client falls back to a default with a conservative timeout.
	Client *http.Client
}

// defaultClient bounds a request that the flow author did not configure a
// timeout for. The engine itself imposes no timeout (caller concern), but an
// HTTP node without one is almost always a mistake.
var defaultClient = &http.Client{Timeout: 60 * time.Second}

// Execute performs one HTTP request. Method and URL come from node config;
// the optional 'body' input overrides the configured body. Outputs:
// 'status_code' and 'body'.
func (m *Module) Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	logger := ctxlog.FromContext(ctx)

	url := node.ConfigString("url")
	if url == "" {
		return nil, fmt.Errorf("url config is required")
	}
	method := node.ConfigString("method")
	if method == "" {
		method = http.MethodGet
	}

	body := node.ConfigString("body")
	if v, ok := inputs["body"]; ok && v != nil {
		body = fmt.Sprint(v)
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if ct := node.ConfigString("content_type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if headers, ok := node.Config["headers"].(map[string]any); ok {
		for name, val := range headers {
			req.Header.Set(name, fmt.Sprint(val))
		}
	}

	logger.Info("Making HTTP request", "method", method, "url", url)
	client := m.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Info("Received HTTP response", "status", resp.Status)

	return &registry.Result{
		Outputs: map[string]any{
			"status_code": resp.StatusCode,
			"body":        string(respBody),
		},
	}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("http_request", registry.Spec{
		Inputs: []registry.InputPort{{Name: "body", Optional: true}},
		Outputs: []registry.OutputPort{
			{Name: "status_code"},
			{Name: "body"},
		},
	}, m)
}
