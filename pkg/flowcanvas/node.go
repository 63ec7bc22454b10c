package flowcanvas

import (
	"encoding/json"
	"fmt"
)

// Reserved node identifiers for the two fixed endpoints of a flow.
// The bootstrap template and the run service both rely on these IDs.
const (
	StartNodeID = "START"
	EndNodeID   = "END"
)

// NodeType identifies the kind of a node in the builder graph.
// The set of types is closed and known at compile time.
type NodeType string

// Built-in node types.
const (
	NodeStart              NodeType = "start"
	NodeEnd                NodeType = "end"
	NodeUserInput          NodeType = "user-input"
	NodePromptSelector     NodeType = "prompt-selector"
	NodeLLMOutput          NodeType = "llm-output"
	NodeQuestionClassifier NodeType = "question-classifier"
)

// IOType classifies the value carried by a node input or output.
type IOType int

// Input/output value types. The numeric values are part of the wire
// format shared with the run service.
const (
	IOText    IOType = 1
	IONumber  IOType = 2
	IOBoolean IOType = 3
)

// Position is the canvas placement of a node. It is opaque to the
// core: nothing here interprets coordinates, they only round-trip
// through persistence and the debug API.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeIOSpec declares a single named input or output of a node.
// Name is the stable machine key; Label is display-only and may
// change without breaking references.
type NodeIOSpec struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     IOType `json:"type"`
	Required bool   `json:"required"`
}

// VariableReference records that a node consumes the output
// NodeParamName produced by node NodeID. References are only valid
// when NodeID lies on some path from the start node to the owning
// node; see Analyzer and the reference package.
type VariableReference struct {
	NodeID        string `json:"nodeId"`
	NodeParamName string `json:"nodeParamName"`
	Name          string `json:"name"`
}

// InputConfig holds a node's declared inputs: the values the user
// supplies directly and the upstream variables the node references.
type InputConfig struct {
	UserInputs []NodeIOSpec        `json:"userInputs"`
	RefInputs  []VariableReference `json:"refInputs"`
}

// NodeConfig is the per-type configuration payload of a node.
// Each node type carries its own concrete config struct; the node's
// Type tag selects the variant when decoding.
type NodeConfig interface {
	nodeConfig()
}

// StartConfig configures the start node: the inputs collected from
// the user before a run begins.
type StartConfig struct {
	UserInputs []NodeIOSpec `json:"userInputs"`
}

// UserInputConfig configures a user-input node. The node's inputs
// live in InputConfig.UserInputs, so the config itself is empty.
type UserInputConfig struct{}

// PromptSelectorConfig selects a server-side prompt template.
type PromptSelectorConfig struct {
	PromptCode string `json:"promptCode"`
	PromptType string `json:"promptType"`
}

// LLMConfig holds the model invocation parameters of an llm-output
// node. The model itself runs inside the external workflow service.
type LLMConfig struct {
	ModelName      string `json:"modelName"`
	ContextLength  int    `json:"contextLength"`
	UserMessage    string `json:"userMessage"`
	SystemMessage  string `json:"systemMessage"`
	EnableThinking bool   `json:"enableThinking"`
	Stream         bool   `json:"stream"`
}

// ClassifierPath is one routing branch of a question classifier.
type ClassifierPath struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuestionClassifierConfig configures a question-classifier node:
// the text to classify and the candidate branches.
type QuestionClassifierConfig struct {
	InputText string           `json:"inputText"`
	Paths     []ClassifierPath `json:"paths"`
}

// EndConfig configures the end node. It has no parameters.
type EndConfig struct{}

func (StartConfig) nodeConfig()              {}
func (UserInputConfig) nodeConfig()          {}
func (PromptSelectorConfig) nodeConfig()     {}
func (LLMConfig) nodeConfig()                {}
func (QuestionClassifierConfig) nodeConfig() {}
func (EndConfig) nodeConfig()                {}

// NodeData is the configuration block of a node: display label,
// declared inputs and references, the type-specific config, and the
// outputs the node contributes to downstream nodes.
type NodeData struct {
	Label       string       `json:"label"`
	Deletable   bool         `json:"deletable"`
	InputConfig InputConfig  `json:"inputConfig"`
	NodeConfig  NodeConfig   `json:"nodeConfig"`
	NodeOutput  []NodeIOSpec `json:"nodeOutput"`
}

// Clone returns a deep copy of the node data. Slices are copied so
// mutations of the clone never alias the original; NodeConfig
// variants are value types and copy implicitly.
func (d NodeData) Clone() NodeData {
	out := d
	out.InputConfig.UserInputs = append([]NodeIOSpec(nil), d.InputConfig.UserInputs...)
	out.InputConfig.RefInputs = append([]VariableReference(nil), d.InputConfig.RefInputs...)
	out.NodeOutput = append([]NodeIOSpec(nil), d.NodeOutput...)
	if sc, ok := d.NodeConfig.(StartConfig); ok {
		sc.UserInputs = append([]NodeIOSpec(nil), sc.UserInputs...)
		out.NodeConfig = sc
	}
	if qc, ok := d.NodeConfig.(QuestionClassifierConfig); ok {
		qc.Paths = append([]ClassifierPath(nil), qc.Paths...)
		out.NodeConfig = qc
	}
	return out
}

// Node is a typed unit in the workflow graph.
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// EdgeKind distinguishes edge behaviors on the canvas.
type EdgeKind string

// EdgeDeletable is the default edge kind: removable by the user.
const EdgeDeletable EdgeKind = "deletable"

// Edge is a directed connection between two nodes. Multiple edges
// between the same pair are permitted (classifier fan-out).
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`
}

// nodeWire mirrors Node for JSON with the config as a raw message,
// so the variant can be selected by the type tag on decode.
type nodeWire struct {
	ID       string       `json:"id"`
	Type     NodeType     `json:"type"`
	Position Position     `json:"position"`
	Data     nodeDataWire `json:"data"`
}

type nodeDataWire struct {
	Label       string          `json:"label"`
	Deletable   bool            `json:"deletable"`
	InputConfig InputConfig     `json:"inputConfig"`
	NodeConfig  json.RawMessage `json:"nodeConfig"`
	NodeOutput  []NodeIOSpec    `json:"nodeOutput"`
}

// MarshalJSON encodes the node with its typed config inline.
func (n Node) MarshalJSON() ([]byte, error) {
	cfg, err := json.Marshal(n.Data.NodeConfig)
	if err != nil {
		return nil, fmt.Errorf("marshal node config for %s: %w", n.ID, err)
	}
	return json.Marshal(nodeWire{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data: nodeDataWire{
			Label:       n.Data.Label,
			Deletable:   n.Data.Deletable,
			InputConfig: n.Data.InputConfig,
			NodeConfig:  cfg,
			NodeOutput:  n.Data.NodeOutput,
		},
	})
}

// UnmarshalJSON decodes the node, selecting the config variant from
// the node's type tag.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	cfg, err := decodeNodeConfig(w.Type, w.Data.NodeConfig)
	if err != nil {
		return fmt.Errorf("decode node config for %s: %w", w.ID, err)
	}
	n.ID = w.ID
	n.Type = w.Type
	n.Position = w.Position
	n.Data = NodeData{
		Label:       w.Data.Label,
		Deletable:   w.Data.Deletable,
		InputConfig: w.Data.InputConfig,
		NodeConfig:  cfg,
		NodeOutput:  w.Data.NodeOutput,
	}
	return nil
}

// decodeNodeConfig unmarshals raw config bytes into the variant for
// the given node type. Unknown types are a programmer error at the
// call sites that matter (catalog lookups); here they surface as a
// regular error so persisted payloads fail loudly but safely.
func decodeNodeConfig(t NodeType, raw json.RawMessage) (NodeConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	switch t {
	case NodeStart:
		var c StartConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	case NodeEnd:
		var c EndConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	case NodeUserInput:
		var c UserInputConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	case NodePromptSelector:
		var c PromptSelectorConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	case NodeLLMOutput:
		var c LLMConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	case NodeQuestionClassifier:
		var c QuestionClassifierConfig
		err := json.Unmarshal(raw, &c)
		return c, err
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, t)
	}
}
