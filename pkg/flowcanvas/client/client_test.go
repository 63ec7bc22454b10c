package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/debug"
)

// TestClient_Headers verifies the fixed request headers the run
// service expects.
func TestClient_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewEncoder(w).Encode("wf-1")
	}))
	defer srv.Close()

	c := New(srv.URL,
		WithToken("secret"),
		WithClientID("client-9"),
	)

	_, err := c.CreateWorkflow(context.Background(), "My Flow", "")
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "client-9", got.Get("ClientID"))
	assert.Equal(t, "zh_CN", got.Get("Accept-Language"))
	assert.Equal(t, "zh_CN", got.Get("Content-Language"))
	assert.Equal(t, "Bearer secret", got.Get("Authorization"))
}

// TestClient_NoTokenNoAuthHeader verifies the Authorization header is
// absent when no token is configured.
func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		json.NewEncoder(w).Encode("wf-1")
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateWorkflow(context.Background(), "t", "")
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

// TestFormatToken table-tests the Authorization value.
func TestFormatToken(t *testing.T) {
	assert.Equal(t, "", formatToken(""))
	assert.Equal(t, "Bearer abc", formatToken("abc"))
}

// TestClient_CreateWorkflow verifies request body and decoded ID.
func TestClient_CreateWorkflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workflow/create", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "My Flow", body["title"])
		assert.Equal(t, "desc", body["description"])

		json.NewEncoder(w).Encode("wf-42")
	}))
	defer srv.Close()

	id, err := New(srv.URL).CreateWorkflow(context.Background(), "My Flow", "desc")
	require.NoError(t, err)
	assert.Equal(t, "wf-42", id)
}

// TestClient_UpdateWorkflow verifies the graph payload and boolean
// response.
func TestClient_UpdateWorkflow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workflow/update", r.URL.Path)

		var body struct {
			WorkflowID string            `json:"workflowId"`
			Nodes      []flowcanvas.Node `json:"nodes"`
			Edges      []flowcanvas.Edge `json:"edges"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "wf-1", body.WorkflowID)
		assert.Len(t, body.Nodes, 1)
		assert.Len(t, body.Edges, 1)

		json.NewEncoder(w).Encode(true)
	}))
	defer srv.Close()

	nodes := []flowcanvas.Node{{
		ID:   "START",
		Type: flowcanvas.NodeStart,
		Data: flowcanvas.NodeData{NodeConfig: flowcanvas.StartConfig{}},
	}}
	edges := []flowcanvas.Edge{{ID: "e1", Source: "START", Target: "END", Kind: flowcanvas.EdgeDeletable}}

	ok, err := New(srv.URL).UpdateWorkflow(context.Background(), "wf-1", nodes, edges)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestClient_Non2xx verifies a RequestError with the status code.
func TestClient_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateWorkflow(context.Background(), "t", "")
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "/workflow/create", reqErr.Path)
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
}

// sseHandler writes the given frames as a chunked SSE response.
func sseHandler(frames ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, f := range frames {
			w.Write([]byte("data: " + f + "\n\n"))
			flusher.Flush()
		}
	}
}

// TestClient_Run_Stream verifies decoded events arrive in order and a
// clean close returns nil.
func TestClient_Run_Stream(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`{"runId":"r1","status":1}`,
		`{"runId":"r1","status":2,"nodeId":"a","duration":7}`,
		`{"runId":"r1","status":3}`,
	))
	defer srv.Close()

	var events []debug.Event
	err := New(srv.URL).Run(context.Background(),
		RunRequest{WorkflowID: "wf-1"},
		func(e debug.Event) { events = append(events, e) },
	)
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, debug.StatusStarted, events[0].Status)
	assert.Equal(t, "a", events[1].NodeID)
	assert.Equal(t, debug.StatusFinished, events[2].Status)
}

// TestClient_Run_StreamCloseIsNotCompletion verifies a stream ending
// without a terminal event yields no synthesized finished status.
func TestClient_Run_StreamCloseIsNotCompletion(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`{"runId":"r1","status":1}`,
		`{"runId":"r1","status":2,"nodeId":"a"}`,
	))
	defer srv.Close()

	var events []debug.Event
	err := New(srv.URL).Run(context.Background(),
		RunRequest{WorkflowID: "wf-1"},
		func(e debug.Event) { events = append(events, e) },
	)
	require.NoError(t, err)

	require.Len(t, events, 2)
	for _, e := range events {
		assert.NotEqual(t, debug.StatusFinished, e.Status)
	}
}

// TestClient_Run_RawPayloads verifies non-JSON payloads go to the raw
// handler instead of onEvent.
func TestClient_Run_RawPayloads(t *testing.T) {
	srv := httptest.NewServer(sseHandler(
		`{"runId":"r1","status":1}`,
		`plain progress text`,
	))
	defer srv.Close()

	var events []debug.Event
	var raws []string
	err := New(srv.URL, WithRawHandler(func(s string) { raws = append(raws, s) })).
		Run(context.Background(),
			RunRequest{WorkflowID: "wf-1"},
			func(e debug.Event) { events = append(events, e) },
		)
	require.NoError(t, err)

	assert.Len(t, events, 1)
	assert.Equal(t, []string{"plain progress text"}, raws)
}

// TestClient_Debug_SendsGraph verifies the debug endpoint receives the
// unsaved graph.
func TestClient_Debug_SendsGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/workflow/debug", r.URL.Path)

		var body DebugRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Nodes, 1)
		assert.Len(t, body.Inputs, 1)

		sseHandler(`{"runId":"r1","status":3}`)(w, r)
	}))
	defer srv.Close()

	req := DebugRequest{
		Nodes: []flowcanvas.Node{{
			ID:   "START",
			Type: flowcanvas.NodeStart,
			Data: flowcanvas.NodeData{NodeConfig: flowcanvas.StartConfig{}},
		}},
		Inputs: []debug.IOValue{{
			Name:    "userInput",
			Content: debug.IOContent{Label: "User input", Type: 1, Value: "hi"},
		}},
	}

	var finished bool
	err := New(srv.URL).Debug(context.Background(), req, func(e debug.Event) {
		finished = e.Status == debug.StatusFinished
	})
	require.NoError(t, err)
	assert.True(t, finished)
}

// TestClient_Run_Non2xx verifies stream setup failure surfaces as a
// RequestError.
func TestClient_Run_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad graph", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(srv.URL).Run(context.Background(),
		RunRequest{WorkflowID: "wf-1"},
		func(debug.Event) { t.Fatal("no events expected") },
	)
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
}

// TestClient_Run_ContextCancel verifies cancellation aborts the
// stream with an error.
func TestClient_Run_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(srv.URL).Run(ctx, RunRequest{WorkflowID: "wf-1"}, func(debug.Event) {})
	}()

	cancel()
	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestRequestError_Format verifies the two rendering branches.
func TestRequestError_Format(t *testing.T) {
	withStatus := &RequestError{Path: "/workflow/run", StatusCode: 500, Err: assert.AnError}
	assert.Contains(t, withStatus.Error(), "status 500")

	withoutStatus := &RequestError{Path: "/workflow/run", Err: assert.AnError}
	assert.NotContains(t, withoutStatus.Error(), "status")
	assert.ErrorIs(t, withoutStatus, assert.AnError)
}
