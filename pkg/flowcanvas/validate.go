package flowcanvas

import "log/slog"

// ValidationResult reports graph well-formedness. Valid is the
// conjunction of the three checks; the remaining fields are
// diagnostics for display and do not change the outcome.
type ValidationResult struct {
	Valid          bool
	StartConnected bool
	EndConnected   bool
	IsolatedNodes  []string
}

// Validate audits global graph well-formedness:
//
//   - the start node has at least one outgoing edge
//   - the end node has at least one incoming edge
//   - no node is isolated (zero edges in both directions)
//
// The checks are node- and edge-local. A node can satisfy them via an
// irrelevant side edge without lying on any real start-to-end path;
// that weaker semantic is intentional and kept as-is.
//
// Validate never returns an error. Run it on demand, not on every
// mutation.
func Validate(nodes []Node, edges []Edge) ValidationResult {
	outDegree := make(map[string]int, len(nodes))
	inDegree := make(map[string]int, len(nodes))
	for _, e := range edges {
		outDegree[e.Source]++
		inDegree[e.Target]++
	}

	var result ValidationResult
	for _, n := range nodes {
		out := outDegree[n.ID]
		in := inDegree[n.ID]

		if n.Type == NodeStart && out >= 1 {
			result.StartConnected = true
		}
		if n.Type == NodeEnd && in >= 1 {
			result.EndConnected = true
		}
		if out == 0 && in == 0 {
			result.IsolatedNodes = append(result.IsolatedNodes, n.ID)
		}
	}

	result.Valid = result.StartConnected && result.EndConnected && len(result.IsolatedNodes) == 0
	return result
}

// Validate audits the store's current graph.
func (s *Store) Validate() ValidationResult {
	return Validate(s.Nodes(), s.Edges())
}

// LogResult writes the validation outcome to the logger. Safe to call
// with a nil logger.
func (r ValidationResult) LogResult(logger *slog.Logger) {
	if logger == nil {
		return
	}
	if r.Valid {
		logger.Info("flow validation passed")
		return
	}
	logger.Warn("flow validation failed",
		slog.Bool("start_connected", r.StartConnected),
		slog.Bool("end_connected", r.EndConnected),
		slog.Any("isolated_nodes", r.IsolatedNodes),
	)
}
