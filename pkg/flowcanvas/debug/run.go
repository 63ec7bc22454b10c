// Package debug folds the run service's event stream into ordered,
// replayable per-run execution state.
//
// Events arrive as discrete records decoded from the SSE transport
// (see the client package). The Store applies them in arrival order
// and never reorders: node execution order is established by the
// first status-2 event naming each node, and that ordering is the
// only source of sequencing.
package debug

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/observability"
)

// Status codes carried by run-stream events.
const (
	// StatusError marks an error chunk; its Error text joins the
	// stream output accumulator.
	StatusError = -1
	// StatusStarted marks the beginning of a run.
	StatusStarted = 1
	// StatusNodeCompleted reports one node finishing with its
	// timing, inputs, and outputs.
	StatusNodeCompleted = 2
	// StatusFinished marks the run's terminal event.
	StatusFinished = 3
)

// RunState is the lifecycle state of a run.
type RunState string

// Run lifecycle states.
const (
	StateIdle     RunState = "idle"
	StateRunning  RunState = "running"
	StateFinished RunState = "finished"
)

// IOContent is the typed value of one node input or output.
type IOContent struct {
	Label string `json:"label"`
	Type  int    `json:"type"`
	Value any    `json:"value"`
}

// IOValue is a named node input or output as reported by the run
// service, also used as the inputs payload of run requests.
type IOValue struct {
	FromNodeID string    `json:"fromNodeId,omitempty"`
	Name       string    `json:"name"`
	Content    IOContent `json:"content"`
}

// Event is one decoded run-stream record.
type Event struct {
	RunID      string    `json:"runId"`
	WorkflowID string    `json:"workflowId,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	Status     int       `json:"status"`
	NodeID     string    `json:"nodeId,omitempty"`
	Duration   int64     `json:"duration,omitempty"`
	Inputs     []IOValue `json:"inputs,omitempty"`
	Outputs    []IOValue `json:"outputs,omitempty"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// NodeResult is the recorded outcome of one node execution. A later
// event for the same node replaces the whole record.
type NodeResult struct {
	NodeID   string
	Duration int64
	Inputs   []IOValue
	Outputs  []IOValue
}

// Run is the accumulated state of one execution.
//
// NodeOrder is strictly append-only with one entry per first-seen
// node. Cursor is the replay position: -1 before playback, then
// monotonically advancing indices into NodeOrder.
type Run struct {
	RunID        string
	WorkflowID   string
	Status       RunState
	NodeOrder    []string
	Cursor       int
	Nodes        map[string]NodeResult
	StreamOutput string
	StartTime    time.Time
	EndTime      time.Time
}

// CurrentNodeID returns the node the replay cursor points at, or ""
// before playback begins.
func (r Run) CurrentNodeID() string {
	if r.Cursor < 0 || r.Cursor >= len(r.NodeOrder) {
		return ""
	}
	return r.NodeOrder[r.Cursor]
}

// Elapsed returns the run's wall-clock duration, zero until finished.
func (r Run) Elapsed() time.Duration {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// clone deep-copies the run so snapshots never alias store state.
func (r *Run) clone() Run {
	out := *r
	out.NodeOrder = append([]string(nil), r.NodeOrder...)
	out.Nodes = make(map[string]NodeResult, len(r.Nodes))
	for k, v := range r.Nodes {
		out.Nodes[k] = v
	}
	return out
}

// Store reduces run-stream events into Run records and drives
// replay. All mutation goes through Apply; callers receive snapshot
// copies and must not try to write them back.
type Store struct {
	mu      sync.Mutex
	runs    map[string]*Run
	players map[string]*player

	clock   func() time.Time
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	subs    map[int]func(Run)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for stream diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// withClock overrides the time source, for tests.
func withClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// NewStore creates an empty run store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		runs:    make(map[string]*Run),
		players: make(map[string]*player),
		clock:   time.Now,
		metrics: observability.NoopMetrics{},
		subs:    make(map[int]func(Run)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply folds one event into its run. Events for an unknown run
// create the run record lazily: the stream may deliver events before
// any explicit create call, and that is not an error.
//
// Events for a single run must be applied in arrival order; Apply
// never reorders.
func (s *Store) Apply(evt Event) {
	s.mu.Lock()

	run, ok := s.runs[evt.RunID]
	if !ok {
		run = &Run{
			RunID:      evt.RunID,
			WorkflowID: evt.WorkflowID,
			Status:     StateIdle,
			Cursor:     -1,
			Nodes:      make(map[string]NodeResult),
		}
		s.runs[evt.RunID] = run
	}

	switch evt.Status {
	case StatusStarted:
		run.Status = StateRunning
		if run.StartTime.IsZero() {
			run.StartTime = s.clock()
		}
		observability.LogRunStarted(s.logger, evt.RunID)

	case StatusNodeCompleted:
		if evt.NodeID != "" {
			if _, seen := run.Nodes[evt.NodeID]; !seen {
				run.NodeOrder = append(run.NodeOrder, evt.NodeID)
			}
			// Full replace, not merge: the latest event owns the
			// node's recorded result.
			run.Nodes[evt.NodeID] = NodeResult{
				NodeID:   evt.NodeID,
				Duration: evt.Duration,
				Inputs:   evt.Inputs,
				Outputs:  evt.Outputs,
			}
			observability.LogNodeCompleted(s.logger, evt.RunID, evt.NodeID, evt.Duration)
		}

	case StatusError:
		// Error text shares the stream accumulator with normal
		// output, with no delimiter. Kept as-is pending product
		// clarification.
		run.StreamOutput += evt.Error
		observability.LogStreamError(s.logger, evt.RunID, evt.Error)
	}

	if evt.Output != "" {
		run.StreamOutput += evt.Output
		s.metrics.RecordStreamOutput(context.Background(), len(evt.Output))
	}

	if evt.Status == StatusFinished {
		run.Status = StateFinished
		if run.EndTime.IsZero() {
			run.EndTime = s.clock()
		}
		s.metrics.RecordRunFinished(context.Background(), run.Elapsed())
		observability.LogRunFinished(s.logger, evt.RunID, run.Elapsed(), len(run.NodeOrder))
	}

	s.metrics.RecordEventApplied(context.Background(), evt.Status)

	snapshot := run.clone()
	subs := make([]func(Run), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Run returns a snapshot of the run with the given ID.
func (s *Store) Run(runID string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	if !ok {
		return Run{}, false
	}
	return run.clone(), true
}

// LatestRun returns a snapshot of the most recent run, by end time
// when set, else start time.
func (s *Store) LatestRun() (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *Run
	var latestAt time.Time
	for _, run := range s.runs {
		at := run.EndTime
		if at.IsZero() {
			at = run.StartTime
		}
		if latest == nil || at.After(latestAt) {
			latest = run
			latestAt = at
		}
	}
	if latest == nil {
		return Run{}, false
	}
	return latest.clone(), true
}

// ResetRun discards a run's state and stops any active replay.
func (s *Store) ResetRun(runID string) {
	s.mu.Lock()
	p := s.players[runID]
	delete(s.players, runID)
	delete(s.runs, runID)
	s.mu.Unlock()

	if p != nil {
		p.stop()
	}
}

// Subscribe registers a callback invoked with a snapshot after every
// applied event or replay step. Returns an unsubscribe function.
// Callbacks run outside the store lock, on the applying goroutine.
func (s *Store) Subscribe(fn func(Run)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
