package history

import (
	"encoding/json"
	"fmt"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
)

// graphEnvelope is the serialized snapshot payload.
type graphEnvelope struct {
	Nodes []flowcanvas.Node `json:"nodes"`
	Edges []flowcanvas.Edge `json:"edges"`
}

// EncodeGraph serializes a graph into a snapshot payload.
func EncodeGraph(nodes []flowcanvas.Node, edges []flowcanvas.Edge) ([]byte, error) {
	data, err := json.Marshal(graphEnvelope{Nodes: nodes, Edges: edges})
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return data, nil
}

// DecodeGraph deserializes a snapshot payload back into a graph.
func DecodeGraph(data []byte) ([]flowcanvas.Node, []flowcanvas.Edge, error) {
	var env graphEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("decode graph: %w", err)
	}
	return env.Nodes, env.Edges, nil
}
