package llm_chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client lets callers inject a configured HTTP client; tests use this.
	Client *http.Client
}

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the completion response the node consumes.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Execute sends the 'prompt' input to an OpenAI-compatible chat completion
// endpoint and emits the assistant reply on 'response'. The endpoint comes
// from the node's own 'base_url' config; there is no ambient provider
// lookup, which keeps runs reproducible.
func (m *Module) Execute(ctx context.Context, node graph.Node, inputs map[string]any) (*registry.Result, error) {
	logger := ctxlog.FromContext(ctx)

	baseURL := node.ConfigString("base_url")
	if baseURL == "" {
		return nil, fmt.Errorf("base_url config is required")
	}
	model := node.ConfigString("model")
	if model == "" {
		return nil, fmt.Errorf("model config is required")
	}

	prompt := fmt.Sprint(inputs["prompt"])
	var messages []chatMessage
	if system := node.ConfigString("system"); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := node.ConfigString("api_key"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	logger.Info("Requesting chat completion", "model", model, "base_url", baseURL)
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode chat response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("chat completion error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return &registry.Result{
		Outputs: map[string]any{"response": parsed.Choices[0].Message.Content},
	}, nil
}

// Register registers the executor with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register("llm_chat", registry.Spec{
		Inputs:  []registry.InputPort{{Name: "prompt"}},
		Outputs: []registry.OutputPort{{Name: "response"}},
	}, m)
}
