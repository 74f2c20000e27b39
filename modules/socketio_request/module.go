package socketio_request

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// opResult is a private struct to safely pass results through the done channel.
type opResult struct {
	value any
	err   error
}

// Execute connects to a Socket.IO server, emits one event, and waits for a
// single reply event. The optional 'in' input overrides the configured
// 'emit_data'. The reply payload goes out on 'response_data'.
func Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	rawURL := node.ConfigString("url")
	emitEvent := node.ConfigString("emit_event")
	onEvent := node.ConfigString("on_event")
	if rawURL == "" || emitEvent == "" || onEvent == "" {
		return nil, fmt.Errorf("url, emit_event and on_event configs are required")
	}

	logger := ctxlog.FromContext(ctx).With("runner", "socketio_request", "url", rawURL, "onEvent", onEvent, "emitEvent", emitEvent)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	var isConnected atomic.Bool

	timeout, err := time.ParseDuration(node.ConfigString("timeout"))
	if err != nil {
		logger.Warn("Failed to parse timeout, using default 10s", "error", err)
		timeout = 10 * time.Second
	}

	emitData := node.Config["emit_data"]
	if v, ok := inputs["in"]; ok && v != nil {
		emitData = v
	}

	done := make(chan opResult, 1)
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)

	if insecure, ok := node.Config["insecure_skip_verify"].(bool); ok && insecure {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(node.ConfigString("namespace"), opts)
	defer func() {
		logger.Debug("Disconnecting socket client")
		io.Disconnect()
	}()

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected", "sid", io.Id())
		jsonData, _ := json.Marshal(emitData)
		logger.Info("Emitting event", "event", emitEvent, "data", string(jsonData))
		io.Emit(emitEvent, emitData)
	})

	io.On(types.EventName("connect_error"), func(errs ...any) {
		done <- opResult{err: errs[0].(error)}
	})

	io.On(types.EventName(onEvent), func(data ...any) {
		var responseData any
		if len(data) > 0 {
			responseData = data[0]
		}
		done <- opResult{value: responseData}
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if isConnected.Load() {
			return nil, fmt.Errorf("timed out after connecting while waiting for event '%s'", onEvent)
		}
		return nil, fmt.Errorf("timed out while waiting for initial connection")
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		logger.Info("Successfully received response event", "event", onEvent)
		return &registry.Result{Outputs: map[string]any{"response_data": res.value}}, nil
	}
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("socketio_request", registry.Spec{
		Inputs:  []registry.InputPort{{Name: "in", Optional: true}},
		Outputs: []registry.OutputPort{{Name: "response_data"}},
	}, registry.ExecutorFunc(Execute))
}
