package llm_chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/graph"
)

func TestExecute_SendsPromptAndReturnsReply(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be terse", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "say hi", req.Messages[1].Content)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hi"}},
			},
		})
	}))
	defer srv.Close()

	m := &Module{Client: srv.Client()}
	node := graph.Node{ID: "chat", Config: map[string]any{
		"base_url": srv.URL,
		"model":    "test-model",
		"system":   "be terse",
		"api_key":  "sk-test",
	}}

	result, err := m.Execute(context.Background(), node, map[string]any{"prompt": "say hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", result.Outputs["response"])
}

func TestExecute_RequiresBaseURLAndModel(t *testing.T) {
	t.Parallel()

	m := &Module{}

	_, err := m.Execute(context.Background(), graph.Node{ID: "chat"}, map[string]any{"prompt": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")

	node := graph.Node{ID: "chat", Config: map[string]any{"base_url": "http://localhost:1"}}
	_, err = m.Execute(context.Background(), node, map[string]any{"prompt": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func TestExecute_APIErrorSurfaces(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer srv.Close()

	m := &Module{Client: srv.Client()}
	node := graph.Node{ID: "chat", Config: map[string]any{
		"base_url": srv.URL,
		"model":    "test-model",
	}}

	_, err := m.Execute(context.Background(), node, map[string]any{"prompt": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestExecute_EmptyChoicesFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	m := &Module{Client: srv.Client()}
	node := graph.Node{ID: "chat", Config: map[string]any{
		"base_url": srv.URL,
		"model":    "test-model",
	}}

	_, err := m.Execute(context.Background(), node, map[string]any{"prompt": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
