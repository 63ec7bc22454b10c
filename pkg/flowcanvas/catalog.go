package flowcanvas

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/registry"
)

// Metadata describes a node type: its display identity, port arity,
// default configuration, and the variables the type requires at run
// time. Metadata records are immutable once registered.
type Metadata struct {
	Type        NodeType
	Title       string
	Description string
	Icon        string
	InputPorts  int
	OutputPorts int
	DefaultData NodeData
	// RequiredVariables names variables the run service expects the
	// node to have bound before execution. Empty for all built-ins.
	RequiredVariables []string
	// Available is false for types the user cannot add from the
	// palette (start and end exist exactly once, from the template).
	Available bool
}

// Catalog is the node-type registry: a lookup table from type tag to
// metadata. The set of types is closed, so a failed lookup is a
// programmer error, not a runtime condition.
type Catalog struct {
	reg *registry.Registry[NodeType, Metadata]
}

// NewCatalog creates an empty catalog. Most callers want
// DefaultCatalog instead.
func NewCatalog() *Catalog {
	return &Catalog{reg: registry.New[NodeType, Metadata]()}
}

// Register adds a node type to the catalog.
//
// Panics if the metadata's Type is empty or does not match its
// registration, since that indicates a wiring defect.
func (c *Catalog) Register(meta Metadata) {
	if meta.Type == "" {
		panic("flowcanvas: metadata type cannot be empty")
	}
	c.reg.Register(meta.Type, meta)
}

// Lookup returns the metadata for a node type.
//
// Panics if the type is unregistered: node types are a closed,
// compile-time-known set, so a miss signals a registry defect rather
// than a recoverable runtime condition.
func (c *Catalog) Lookup(t NodeType) Metadata {
	meta, ok := c.reg.Get(t)
	if !ok {
		panic(fmt.Sprintf("flowcanvas: %v: %s", ErrUnknownNodeType, t))
	}
	return meta
}

// Has reports whether a node type is registered.
func (c *Catalog) Has(t NodeType) bool {
	return c.reg.Has(t)
}

// Types returns all registered node type tags, in no particular order.
func (c *Catalog) Types() []NodeType {
	return c.reg.Keys()
}

// NodeOption adjusts a node built by InstantiateDefault.
type NodeOption func(*Node)

// WithID fixes the node's identifier instead of generating one.
func WithID(id string) NodeOption {
	return func(n *Node) {
		n.ID = id
	}
}

// WithPosition places the node on the canvas.
func WithPosition(x, y float64) NodeOption {
	return func(n *Node) {
		n.Position = Position{X: x, Y: y}
	}
}

// WithLabel overrides the default display label.
func WithLabel(label string) NodeOption {
	return func(n *Node) {
		n.Data.Label = label
	}
}

// InstantiateDefault builds a new node of the given type from the
// catalog's default data, generating a fresh ID unless WithID is
// supplied. The default data is deep-copied: editing the new node
// never mutates the catalog entry.
//
// Panics if the type is unregistered, same as Lookup.
func (c *Catalog) InstantiateDefault(t NodeType, opts ...NodeOption) Node {
	meta := c.Lookup(t)
	n := Node{
		ID:   uuid.New().String(),
		Type: t,
		Data: meta.DefaultData.Clone(),
	}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

// DefaultCatalog returns a catalog with the six built-in node types
// registered with their default configurations.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Register(Metadata{
		Type:        NodeStart,
		Title:       "Start",
		Description: "Entry point of the flow",
		Icon:        "play",
		InputPorts:  0,
		OutputPorts: 1,
		Available:   false,
		DefaultData: NodeData{
			Label:     "Start",
			Deletable: false,
			NodeConfig: StartConfig{
				UserInputs: []NodeIOSpec{
					{Name: "userInput", Label: "User input", Type: IOText, Required: true},
				},
			},
			NodeOutput: []NodeIOSpec{
				{Name: "userInput", Label: "User input", Type: IOText, Required: true},
			},
		},
	})

	c.Register(Metadata{
		Type:        NodeEnd,
		Title:       "End",
		Description: "Terminal point of the flow",
		Icon:        "stop",
		InputPorts:  1,
		OutputPorts: 0,
		Available:   false,
		DefaultData: NodeData{
			Label:      "End",
			Deletable:  false,
			NodeConfig: EndConfig{},
		},
	})

	c.Register(Metadata{
		Type:        NodeUserInput,
		Title:       "User Input",
		Description: "Data entry point during execution",
		Icon:        "form",
		InputPorts:  1,
		OutputPorts: 1,
		Available:   true,
		DefaultData: NodeData{
			Label:     "User Input",
			Deletable: true,
			InputConfig: InputConfig{
				UserInputs: []NodeIOSpec{
					{Name: "user_input", Label: "User input", Type: IOText, Required: true},
					{Name: "user_id", Label: "User ID", Type: IONumber, Required: true},
				},
			},
			NodeConfig: UserInputConfig{},
		},
	})

	c.Register(Metadata{
		Type:        NodePromptSelector,
		Title:       "Prompt Selector",
		Description: "Builds the prompt used for the conversation",
		Icon:        "chat",
		InputPorts:  1,
		OutputPorts: 1,
		Available:   true,
		DefaultData: NodeData{
			Label:     "Prompt Selector",
			Deletable: true,
			NodeConfig: PromptSelectorConfig{
				PromptCode: "default",
				PromptType: "user",
			},
			NodeOutput: []NodeIOSpec{
				{Name: "promptMessage", Label: "Prompt content", Type: IOText, Required: true},
			},
		},
	})

	c.Register(Metadata{
		Type:        NodeLLMOutput,
		Title:       "LLM Output",
		Description: "Model invocation parameters",
		Icon:        "chat",
		InputPorts:  1,
		OutputPorts: 1,
		Available:   true,
		DefaultData: NodeData{
			Label:     "LLM Output",
			Deletable: true,
			NodeConfig: LLMConfig{
				ModelName:      "qwen-plus",
				ContextLength:  10,
				UserMessage:    "Hello!",
				SystemMessage:  "You're a helpful assistant!",
				EnableThinking: true,
				Stream:         true,
			},
			NodeOutput: []NodeIOSpec{
				{Name: "content", Label: "Reply content", Type: IOText, Required: true},
			},
		},
	})

	c.Register(Metadata{
		Type:        NodeQuestionClassifier,
		Title:       "Question Classifier",
		Description: "Routes by AI-recognized question category",
		Icon:        "git-branch",
		InputPorts:  1,
		OutputPorts: 0,
		Available:   true,
		DefaultData: NodeData{
			Label:     "Question Classifier",
			Deletable: true,
			NodeConfig: QuestionClassifierConfig{
				InputText: "Question description",
				Paths:     []ClassifierPath{},
			},
			NodeOutput: []NodeIOSpec{
				{Name: "className", Label: "Category name", Type: IOText, Required: true},
			},
		},
	})

	return c
}

// DefaultTemplate builds the bootstrap graph: start feeding a prompt
// selector into an LLM node, a second LLM node wired to end, and an
// unconnected question classifier for the user to place.
func DefaultTemplate(c *Catalog) ([]Node, []Edge) {
	start := c.InstantiateDefault(NodeStart, WithID(StartNodeID), WithPosition(0, 267))
	classifier := c.InstantiateDefault(NodeQuestionClassifier, WithPosition(230, 230))
	selector := c.InstantiateDefault(NodePromptSelector, WithPosition(550, 200))
	llm1 := c.InstantiateDefault(NodeLLMOutput, WithPosition(850, -67))
	llm2 := c.InstantiateDefault(NodeLLMOutput, WithPosition(850, 233))
	end := c.InstantiateDefault(NodeEnd, WithID(EndNodeID), WithPosition(1500, -100))

	nodes := []Node{start, classifier, selector, llm1, llm2, end}
	edges := []Edge{
		{ID: uuid.New().String(), Source: start.ID, Target: selector.ID, Kind: EdgeDeletable},
		{ID: uuid.New().String(), Source: selector.ID, Target: llm1.ID, Kind: EdgeDeletable},
		{ID: uuid.New().String(), Source: llm2.ID, Target: end.ID, Kind: EdgeDeletable},
	}
	return nodes, edges
}
