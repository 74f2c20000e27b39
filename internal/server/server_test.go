package server_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/server"
	"github.com/vk/flowgrid/modules/print"
	"github.com/vk/flowgrid/modules/static_text"
	"github.com/vk/flowgrid/modules/text_transform"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := registry.New()
	for _, m := range []registry.Module{
		&static_text.Module{},
		&text_transform.Module{},
		&print.Module{},
	} {
		m.Register(reg)
	}

	srv := httptest.NewServer(server.New("", reg).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestCreateRun_StreamsEventsThenResult(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	flow := `
		node "static_text" "src" {
			config { text = "hello" }
		}
		node "text_transform" "shout" {}
		edge {
			source = "src"
			target = "shout"
		}
	`

	resp, err := http.Post(srv.URL+"/api/runs", "application/hcl", strings.NewReader(flow))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

	var lines []map[string]any
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())

	// One event per node, then the aggregate result.
	require.Len(t, lines, 3)
	assert.Equal(t, "event", lines[0]["type"])
	assert.Equal(t, "event", lines[1]["type"])

	final := lines[2]
	assert.Equal(t, "result", final["type"])
	assert.Equal(t, "completed", final["status"])

	sinks, ok := final["sinks"].(map[string]any)
	require.True(t, ok)
	shout, ok := sinks["shout"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "HELLO", shout["out"])
}

func TestCreateRun_JSONFormSeedsEntryPorts(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	payload, err := json.Marshal(map[string]any{
		"flow": `node "text_transform" "shout" {}`,
		"inputs": map[string]map[string]any{
			"shout": {"in": "quiet"},
		},
	})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/runs", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lines []map[string]any
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())

	final := lines[len(lines)-1]
	require.Equal(t, "result", final["type"])
	assert.Equal(t, "completed", final["status"])
	sinks := final["sinks"].(map[string]any)
	assert.Equal(t, "QUIET", sinks["shout"].(map[string]any)["out"])
}

func TestCreateRun_InvalidHCLRejected(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/runs", "application/hcl", strings.NewReader(`node "static_text" "broken" {`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "failed to parse")
}

func TestCreateRun_CyclicFlowRejected(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	flow := `
		node "text_transform" "a" {}
		node "text_transform" "b" {}
		edge {
			source = "a"
			target = "b"
		}
		edge {
			source = "b"
			target = "a"
		}
	`

	resp, err := http.Post(srv.URL+"/api/runs", "application/hcl", strings.NewReader(flow))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "cycle")
}
