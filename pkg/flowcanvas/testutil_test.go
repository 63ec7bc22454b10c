package flowcanvas

// Shared graph-building helpers for tests in this package.

// testNode builds a minimal node with outputs for path tests.
func testNode(id string, t NodeType, outputs ...string) Node {
	var specs []NodeIOSpec
	for _, name := range outputs {
		specs = append(specs, NodeIOSpec{Name: name, Label: name, Type: IOText})
	}
	return Node{
		ID:   id,
		Type: t,
		Data: NodeData{
			Label:      id,
			NodeOutput: specs,
		},
	}
}

// testUserInputNode builds a user-input node whose contributed
// variables come from InputConfig.UserInputs.
func testUserInputNode(id string, inputs ...string) Node {
	var specs []NodeIOSpec
	for _, name := range inputs {
		specs = append(specs, NodeIOSpec{Name: name, Label: name, Type: IOText})
	}
	return Node{
		ID:   id,
		Type: NodeUserInput,
		Data: NodeData{
			Label: id,
			InputConfig: InputConfig{
				UserInputs: specs,
			},
			NodeConfig: UserInputConfig{},
		},
	}
}

// testEdge builds an edge with a predictable ID.
func testEdge(source, target string) Edge {
	return Edge{
		ID:     source + "->" + target,
		Source: source,
		Target: target,
		Kind:   EdgeDeletable,
	}
}

// pathIDs flattens a path to its node IDs for comparison.
func pathIDs(path []PathNode) []string {
	ids := make([]string, len(path))
	for i, pn := range path {
		ids[i] = pn.ID
	}
	return ids
}
