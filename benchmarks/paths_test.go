package benchmarks

import (
	"fmt"
	"testing"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
)

// buildChain builds a linear graph of n nodes after start.
func buildChain(n int) ([]flowcanvas.Node, []flowcanvas.Edge, string) {
	nodes := []flowcanvas.Node{{
		ID:   flowcanvas.StartNodeID,
		Type: flowcanvas.NodeStart,
		Data: flowcanvas.NodeData{
			NodeOutput: []flowcanvas.NodeIOSpec{{Name: "userInput", Type: flowcanvas.IOText}},
		},
	}}
	var edges []flowcanvas.Edge
	prev := flowcanvas.StartNodeID
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("node-%d", i)
		nodes = append(nodes, flowcanvas.Node{
			ID:   id,
			Type: flowcanvas.NodeLLMOutput,
			Data: flowcanvas.NodeData{
				NodeOutput: []flowcanvas.NodeIOSpec{{Name: "content", Type: flowcanvas.IOText}},
			},
		})
		edges = append(edges, flowcanvas.Edge{
			ID: fmt.Sprintf("e-%d", i), Source: prev, Target: id,
		})
		prev = id
	}
	return nodes, edges, prev
}

// buildFanOut builds a graph where start fans out to width branches
// that all join at a single target.
func buildFanOut(width int) ([]flowcanvas.Node, []flowcanvas.Edge, string) {
	nodes := []flowcanvas.Node{{
		ID:   flowcanvas.StartNodeID,
		Type: flowcanvas.NodeStart,
	}}
	var edges []flowcanvas.Edge
	join := "join"
	for i := 0; i < width; i++ {
		id := fmt.Sprintf("branch-%d", i)
		nodes = append(nodes, flowcanvas.Node{
			ID:   id,
			Type: flowcanvas.NodeLLMOutput,
			Data: flowcanvas.NodeData{
				NodeOutput: []flowcanvas.NodeIOSpec{{Name: "content", Type: flowcanvas.IOText}},
			},
		})
		edges = append(edges,
			flowcanvas.Edge{ID: fmt.Sprintf("in-%d", i), Source: flowcanvas.StartNodeID, Target: id},
			flowcanvas.Edge{ID: fmt.Sprintf("out-%d", i), Source: id, Target: join},
		)
	}
	nodes = append(nodes, flowcanvas.Node{ID: join, Type: flowcanvas.NodeLLMOutput})
	return nodes, edges, join
}

// BenchmarkAllPathsTo_Chain10 enumerates paths on a 10-node chain.
func BenchmarkAllPathsTo_Chain10(b *testing.B) {
	nodes, edges, target := buildChain(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		flowcanvas.AllPathsTo(nodes, edges, target)
	}
}

// BenchmarkAllPathsTo_Chain100 enumerates paths on a 100-node chain.
func BenchmarkAllPathsTo_Chain100(b *testing.B) {
	nodes, edges, target := buildChain(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		flowcanvas.AllPathsTo(nodes, edges, target)
	}
}

// BenchmarkAllPathsTo_FanOut8 enumerates 8 parallel branches.
func BenchmarkAllPathsTo_FanOut8(b *testing.B) {
	nodes, edges, target := buildFanOut(8)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		flowcanvas.AllPathsTo(nodes, edges, target)
	}
}

// BenchmarkAvailableVariables_Chain50 measures the full variable
// analysis on a 50-node chain.
func BenchmarkAvailableVariables_Chain50(b *testing.B) {
	nodes, edges, target := buildChain(50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		flowcanvas.AvailableVariables(nodes, edges, target)
	}
}

// BenchmarkAnalyzer_Memoized measures the cached path: same store
// version, same target.
func BenchmarkAnalyzer_Memoized(b *testing.B) {
	nodes, edges, target := buildChain(50)
	store := flowcanvas.NewStore(flowcanvas.DefaultCatalog())
	store.Replace(nodes, edges)
	analyzer := flowcanvas.NewAnalyzer(store)
	analyzer.AvailableVariables(target)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		analyzer.AvailableVariables(target)
	}
}
