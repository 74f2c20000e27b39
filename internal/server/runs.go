package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/vk/flowgrid/internal/ctxlog"
	"github.com/vk/flowgrid/internal/executor"
	"github.com/vk/flowgrid/internal/hclflow"
	"github.com/vk/flowgrid/internal/plan"
)

// maxFlowSize caps the request body for a single flow definition.
const maxFlowSize = 1 << 20

// eventLine is one streamed NDJSON line describing a node reaching a
// terminal state.
type eventLine struct {
	Type    string         `json:"type"`
	NodeID  string         `json:"node_id"`
	State   string         `json:"state"`
	Outputs map[string]any `json:"outputs,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// resultLine is the final streamed NDJSON line summarizing the run.
type resultLine struct {
	Type     string                    `json:"type"`
	Status   string                    `json:"status"`
	Sinks    map[string]map[string]any `json:"sinks"`
	Failures []failureLine             `json:"failures,omitempty"`
}

type failureLine struct {
	NodeID string `json:"node_id"`
	Error  string `json:"error"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// runRequest is the JSON request form: the flow definition plus initial
// values for entry ports, keyed by node ID then port name. A non-JSON body
// is treated as bare flow HCL with no initial inputs.
type runRequest struct {
	Flow   string                    `json:"flow"`
	Inputs map[string]map[string]any `json:"inputs"`
}

// handleCreateRun executes the flow definition in the request body and
// streams one NDJSON event per node followed by a final result line. The
// request context cancels the run when the client disconnects.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	ctx := ctxlog.WithLogger(r.Context(), s.logger)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFlowSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}

	src := body
	var initial map[string]map[string]any
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req runRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "failed to decode run request: "+err.Error())
			return
		}
		src = []byte(req.Flow)
		initial = req.Inputs
	}

	loader := hclflow.NewLoader()
	g, err := loader.Parse(src, "request.hcl")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := plan.Build(ctx, g, s.registry)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	// The executor serializes event delivery, so the encoder needs no
	// additional locking.
	exec := executor.New(p, s.registry, initial,
		executor.WithMaxInFlight(s.maxInFlight),
		executor.WithEventFunc(func(ev executor.Event) {
			line := eventLine{
				Type:    "event",
				NodeID:  ev.NodeID,
				State:   ev.State.String(),
				Outputs: ev.Outputs,
			}
			if ev.Err != nil {
				line.Error = ev.Err.Error()
			}
			_ = enc.Encode(line)
			if flusher != nil {
				flusher.Flush()
			}
		}),
	)

	result := exec.Run(ctx)

	final := resultLine{
		Type:   "result",
		Status: string(result.Status),
		Sinks:  result.Sinks,
	}
	for _, failure := range result.Failures {
		final.Failures = append(final.Failures, failureLine{NodeID: failure.NodeID, Error: failure.Err.Error()})
	}
	_ = enc.Encode(final)
	if flusher != nil {
		flusher.Flush()
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
