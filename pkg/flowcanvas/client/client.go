// Package client talks to the external workflow execution service:
// workflow persistence over plain JSON POSTs and run/debug execution
// over streaming HTTP with server-sent-event framing.
//
// The client decodes stream frames into debug.Event records and hands
// them to the caller in arrival order; it performs no reduction of
// its own. Stream termination is not a completion signal: callers
// must not assume a finished status just because the stream closed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/debug"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/observability"
)

// API paths on the run service.
const (
	pathCreate = "/workflow/create"
	pathUpdate = "/workflow/update"
	pathRun    = "/workflow/run"
	pathDebug  = "/workflow/debug"
)

// RequestError wraps a failed run service request.
type RequestError struct {
	// Path is the API path that failed.
	Path string
	// StatusCode is the HTTP status, 0 when the request never
	// completed.
	StatusCode int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: status %d: %v", e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Client is an HTTP client for the workflow execution service.
// Construct with New; the zero value is not usable.
type Client struct {
	baseURL  string
	httpc    *http.Client
	token    string
	clientID string
	language string
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	onRaw    func(string)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The default
// has no timeout, since run streams are long-lived; bound them with
// the request context instead.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpc = hc
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithClientID sets the ClientID header value.
func WithClientID(id string) Option {
	return func(c *Client) {
		c.clientID = id
	}
}

// WithLanguage sets the Accept-Language and Content-Language headers.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracing sets the span manager wrapping each request.
func WithTracing(sm observability.SpanManager) Option {
	return func(c *Client) {
		c.spans = sm
	}
}

// WithRawHandler receives stream payloads that are not valid JSON.
// Without a handler they are logged at debug level and dropped.
func WithRawHandler(fn func(string)) Option {
	return func(c *Client) {
		c.onRaw = fn
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		httpc:    &http.Client{},
		language: "zh_CN",
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// formatToken renders the Authorization header value, or "" when no
// token is configured.
func formatToken(token string) string {
	if token == "" {
		return ""
	}
	return "Bearer " + token
}

// newRequest builds a JSON POST with the service's fixed headers.
func (c *Client) newRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ClientID", c.clientID)
	req.Header.Set("Accept-Language", c.language)
	req.Header.Set("Content-Language", c.language)
	if auth := formatToken(c.token); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return req, nil
}

// post sends a JSON POST and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	start := time.Now()
	ctx, span := c.spans.StartRequestSpan(ctx, path, "")
	err := c.doPost(ctx, path, body, out)
	c.spans.EndSpanWithError(span, err)
	c.metrics.RecordRequest(ctx, path, err)
	if err != nil {
		observability.LogRequestError(c.logger, path, err)
		return err
	}
	if c.logger != nil {
		c.logger.Debug("request completed",
			slog.String("path", path),
			slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
		)
	}
	return nil
}

func (c *Client) doPost(ctx context.Context, path string, body, out any) error {
	req, err := c.newRequest(ctx, path, body)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// CreateWorkflow registers a new workflow and returns its ID.
func (c *Client) CreateWorkflow(ctx context.Context, title, description string) (string, error) {
	body := map[string]string{"title": title}
	if description != "" {
		body["description"] = description
	}
	var id string
	if err := c.post(ctx, pathCreate, body, &id); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateWorkflow saves the graph under an existing workflow ID.
func (c *Client) UpdateWorkflow(ctx context.Context, workflowID string, nodes []flowcanvas.Node, edges []flowcanvas.Edge) (bool, error) {
	body := map[string]any{
		"workflowId": workflowID,
		"nodes":      nodes,
		"edges":      edges,
	}
	var ok bool
	if err := c.post(ctx, pathUpdate, body, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// RunRequest starts a saved workflow with the given user inputs.
type RunRequest struct {
	WorkflowID string          `json:"workflowId"`
	Inputs     []debug.IOValue `json:"inputs"`
}

// DebugRequest executes an unsaved graph directly.
type DebugRequest struct {
	WorkflowID string            `json:"workflowId,omitempty"`
	Nodes      []flowcanvas.Node `json:"nodes"`
	Edges      []flowcanvas.Edge `json:"edges"`
	Inputs     []debug.IOValue   `json:"inputs"`
}

// Run executes a saved workflow, delivering each decoded stream event
// to onEvent in arrival order. Returns when the stream ends: nil on
// clean close, the transport error otherwise. Cancel ctx to abort the
// stream.
func (c *Client) Run(ctx context.Context, req RunRequest, onEvent func(debug.Event)) error {
	return c.stream(ctx, pathRun, req.WorkflowID, req, onEvent)
}

// Debug executes the given graph without saving it, streaming events
// like Run.
func (c *Client) Debug(ctx context.Context, req DebugRequest, onEvent func(debug.Event)) error {
	return c.stream(ctx, pathDebug, req.WorkflowID, req, onEvent)
}

// stream POSTs the body and consumes the chunked SSE response.
func (c *Client) stream(ctx context.Context, path, workflowID string, body any, onEvent func(debug.Event)) error {
	ctx, span := c.spans.StartRequestSpan(ctx, path, workflowID)
	err := c.doStream(ctx, path, body, onEvent)
	c.spans.EndSpanWithError(span, err)
	c.metrics.RecordRequest(ctx, path, err)
	if err != nil {
		observability.LogRequestError(c.logger, path, err)
	}
	return err
}

func (c *Client) doStream(ctx context.Context, path string, body any, onEvent func(debug.Event)) error {
	req, err := c.newRequest(ctx, path, body)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &RequestError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little for the span; the body is not the stream.
		io.CopyN(io.Discard, resp.Body, 4096)
		return &RequestError{Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("workflow stream failed")}
	}

	readErr := readFrames(resp.Body, func(f Frame) {
		evt, raw, ok := decodeEvent(f)
		if !ok {
			if c.onRaw != nil {
				c.onRaw(raw)
			} else if c.logger != nil {
				c.logger.Debug("non-JSON stream payload", slog.String("data", raw))
			}
			return
		}
		onEvent(evt)
	})
	if readErr != nil {
		return &RequestError{Path: path, Err: readErr}
	}
	return nil
}
