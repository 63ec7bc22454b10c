package flowcanvas

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds the nodes and edges of a single workflow graph. It is
// the source of truth every other component reads from: the analyzer,
// the validator, and the reference linker all take their input here.
//
// Store is an explicit dependency, not a singleton. Construct one per
// open workflow and pass it to the components that need it.
//
// All methods are safe for concurrent use, though the builder is
// expected to mutate from a single UI-driven goroutine.
type Store struct {
	mu      sync.RWMutex
	catalog *Catalog
	nodes   []Node
	edges   []Edge
	version uint64
}

// NewStore creates an empty store backed by the given catalog.
func NewStore(catalog *Catalog) *Store {
	return &Store{catalog: catalog}
}

// NewTemplateStore creates a store seeded with the default bootstrap
// template.
func NewTemplateStore(catalog *Catalog) *Store {
	s := NewStore(catalog)
	s.nodes, s.edges = DefaultTemplate(catalog)
	return s
}

// Catalog returns the node-type catalog the store was built with.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// Version returns a counter that increments on every mutation.
// Derived computations use it as a memoization key: equal versions
// guarantee identical nodes and edges.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Nodes returns a copy of all nodes in insertion order.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Node(nil), s.nodes...)
}

// Edges returns a copy of all edges in insertion order.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Edge(nil), s.edges...)
}

// Node returns the node with the given ID.
func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// InsertNode creates a node of the given type from catalog defaults
// and adds it to the graph.
//
// Panics if the type is unregistered, matching Catalog.Lookup.
func (s *Store) InsertNode(t NodeType, pos Position) Node {
	n := s.catalog.InstantiateDefault(t, WithPosition(pos.X, pos.Y))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append(s.nodes, n)
	s.version++
	return n
}

// InsertNodeWithID is InsertNode with a caller-chosen identifier,
// used for the reserved START and END nodes. Returns a
// *NodeExistsError if the ID is already taken.
func (s *Store) InsertNodeWithID(id string, t NodeType, pos Position) (Node, error) {
	n := s.catalog.InstantiateDefault(t, WithID(id), WithPosition(pos.X, pos.Y))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.nodes {
		if existing.ID == id {
			return Node{}, &NodeExistsError{ID: id}
		}
	}
	s.nodes = append(s.nodes, n)
	s.version++
	return n, nil
}

// DeleteNode removes a node and cascades removal of every edge
// touching it. Returns ErrNodeNotFound if the node does not exist.
func (s *Store) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, n := range s.nodes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNodeNotFound
	}
	s.nodes = append(s.nodes[:idx], s.nodes[idx+1:]...)

	kept := s.edges[:0]
	for _, e := range s.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	s.edges = kept
	s.version++
	return nil
}

// Connect adds an edge from source to target. The store does not
// validate endpoints; well-formedness is the validator's job, and
// duplicate edges between the same pair are allowed for classifier
// fan-out.
func (s *Store) Connect(source, target string) Edge {
	e := Edge{
		ID:     uuid.New().String(),
		Source: source,
		Target: target,
		Kind:   EdgeDeletable,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = append(s.edges, e)
	s.version++
	return e
}

// DeleteEdge removes a single edge by ID. Missing edges are ignored.
func (s *Store) DeleteEdge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.edges {
		if e.ID == id {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			s.version++
			return
		}
	}
}

// NodeDataPatch is a shallow merge applied to a node's data: non-nil
// fields replace the corresponding NodeData field wholesale.
//
// The merge is shallow on purpose. Replacing InputConfig replaces
// both UserInputs and RefInputs; callers changing one of them must
// read the current value and carry the other across themselves.
type NodeDataPatch struct {
	Label       *string
	Deletable   *bool
	InputConfig *InputConfig
	NodeConfig  NodeConfig
	NodeOutput  []NodeIOSpec
}

// UpdateNodeData applies a shallow patch to a node's data. Returns
// ErrNodeNotFound if the node does not exist.
func (s *Store) UpdateNodeData(id string, patch NodeDataPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nodes {
		if s.nodes[i].ID != id {
			continue
		}
		d := &s.nodes[i].Data
		if patch.Label != nil {
			d.Label = *patch.Label
		}
		if patch.Deletable != nil {
			d.Deletable = *patch.Deletable
		}
		if patch.InputConfig != nil {
			d.InputConfig = *patch.InputConfig
		}
		if patch.NodeConfig != nil {
			d.NodeConfig = patch.NodeConfig
		}
		if patch.NodeOutput != nil {
			d.NodeOutput = patch.NodeOutput
		}
		s.version++
		return nil
	}
	return ErrNodeNotFound
}

// SetRefInputs replaces a node's stored variable references, keeping
// its UserInputs intact. This is the write-back path used by the
// reference linker.
func (s *Store) SetRefInputs(id string, refs []VariableReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nodes {
		if s.nodes[i].ID != id {
			continue
		}
		s.nodes[i].Data.InputConfig.RefInputs = append([]VariableReference(nil), refs...)
		s.version++
		return nil
	}
	return ErrNodeNotFound
}

// MoveNode updates a node's canvas position. Position is opaque to
// the core, so this does not bump derived-data consumers in any
// meaningful way, but it does advance the version like any mutation.
func (s *Store) MoveNode(id string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			s.nodes[i].Position = pos
			s.version++
			return nil
		}
	}
	return ErrNodeNotFound
}

// Replace swaps the entire graph, used when loading a persisted
// workflow or a history snapshot.
func (s *Store) Replace(nodes []Node, edges []Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = append([]Node(nil), nodes...)
	s.edges = append([]Edge(nil), edges...)
	s.version++
}
