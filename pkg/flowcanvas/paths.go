package flowcanvas

import "sync"

// PathNode is a snapshot of a node as it appears on an enumerated
// path: identity plus the data needed to resolve its contributed
// variables.
type PathNode struct {
	ID   string
	Type NodeType
	Data NodeData
}

// NodeVariables groups the variables contributed by one upstream
// node, in declaration order.
type NodeVariables struct {
	NodeID string       `json:"nodeId"`
	Data   []NodeIOSpec `json:"data"`
}

// AllPathsTo enumerates every node sequence from the start node to
// targetID. Traversal is an explicit breadth-first worklist of
// (node, path-so-far) pairs; a node already on the current path is
// never re-enqueued, which terminates cyclic graphs without blocking
// a node from appearing on several distinct paths.
//
// Missing start node, unreachable target, or target == start all
// yield an empty result, never an error.
func AllPathsTo(nodes []Node, edges []Edge, targetID string) [][]PathNode {
	if len(nodes) == 0 || targetID == "" {
		return nil
	}

	byID := make(map[string]*Node, len(nodes))
	start := ""
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
		if nodes[i].Type == NodeStart && start == "" {
			start = nodes[i].ID
		}
	}
	if start == "" {
		return nil
	}

	outgoing := make(map[string][]string, len(edges))
	for _, e := range edges {
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
	}

	type item struct {
		nodeID string
		path   []PathNode
	}

	var result [][]PathNode
	queue := []item{{nodeID: start}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		n, ok := byID[cur.nodeID]
		if !ok {
			continue
		}

		path := make([]PathNode, len(cur.path), len(cur.path)+1)
		copy(path, cur.path)
		path = append(path, PathNode{ID: n.ID, Type: n.Type, Data: n.Data})

		if cur.nodeID == targetID {
			result = append(result, path)
			continue
		}

		for _, next := range outgoing[cur.nodeID] {
			onPath := false
			for _, p := range path {
				if p.ID == next {
					onPath = true
					break
				}
			}
			if !onPath {
				queue = append(queue, item{nodeID: next, path: path})
			}
		}
	}
	return result
}

// AvailableVariables computes the set of upstream variables a node
// may reference: all paths to the target are flattened, deduplicated
// by node ID with the first occurrence winning, the target itself is
// excluded, and each remaining node contributes its declared
// variables grouped by owning node.
//
// User-input nodes contribute their InputConfig.UserInputs; every
// other type contributes its NodeOutput.
func AvailableVariables(nodes []Node, edges []Edge, targetID string) []NodeVariables {
	paths := AllPathsTo(nodes, edges, targetID)
	if len(paths) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var ordered []PathNode
	for _, path := range paths {
		for _, pn := range path {
			if pn.ID == targetID || seen[pn.ID] {
				continue
			}
			seen[pn.ID] = true
			ordered = append(ordered, pn)
		}
	}

	var result []NodeVariables
	for _, pn := range ordered {
		vars := pn.Data.NodeOutput
		if pn.Type == NodeUserInput {
			vars = pn.Data.InputConfig.UserInputs
		}
		if len(vars) == 0 {
			continue
		}
		result = append(result, NodeVariables{
			NodeID: pn.ID,
			Data:   append([]NodeIOSpec(nil), vars...),
		})
	}
	return result
}

// Contains reports whether the grouped variable set includes the
// (nodeID, name) pair. The reference linker validates extracted
// tokens with this.
func Contains(vars []NodeVariables, nodeID, name string) bool {
	for _, nv := range vars {
		if nv.NodeID != nodeID {
			continue
		}
		for _, spec := range nv.Data {
			if spec.Name == name {
				return true
			}
		}
	}
	return false
}

// Analyzer computes available variables against a Store, memoizing
// per target on the store version. The analysis itself is pure; the
// cache only avoids re-walking an unchanged graph while a property
// panel polls.
type Analyzer struct {
	store *Store

	mu    sync.Mutex
	cache map[string]analyzerEntry
}

type analyzerEntry struct {
	version uint64
	vars    []NodeVariables
}

// NewAnalyzer creates an analyzer bound to a store.
func NewAnalyzer(store *Store) *Analyzer {
	return &Analyzer{
		store: store,
		cache: make(map[string]analyzerEntry),
	}
}

// AvailableVariables returns the upstream variable set for targetID,
// recomputing only when the store has changed since the last call.
func (a *Analyzer) AvailableVariables(targetID string) []NodeVariables {
	version := a.store.Version()

	a.mu.Lock()
	if entry, ok := a.cache[targetID]; ok && entry.version == version {
		a.mu.Unlock()
		return entry.vars
	}
	a.mu.Unlock()

	vars := AvailableVariables(a.store.Nodes(), a.store.Edges(), targetID)

	a.mu.Lock()
	a.cache[targetID] = analyzerEntry{version: version, vars: vars}
	a.mu.Unlock()
	return vars
}
