/*
Package flowcanvas models the graph behind a visual AI-workflow
builder and computes the derived data the editor depends on.

# Overview

A workflow is a directed graph of typed nodes (start, end, user-input,
prompt-selector, llm-output, question-classifier) connected by edges.
Execution happens in an external service reached over HTTP; this
module owns the graph itself and everything that can be derived from
it locally:

  - Store: the mutable node/edge graph, the single source of truth
  - Catalog: the closed registry of node types and their defaults
  - AllPathsTo / AvailableVariables: which upstream variables a node
    may reference, via cycle-safe path enumeration
  - Validate: structural well-formedness checks
  - reference: keeping {nodeId.varName} tokens in free text in sync
    with a node's stored references
  - debug: folding the run service's event stream into a replayable
    per-node execution trace

# Basic Usage

Build a store from the default catalog, edit it, then ask for derived
data:

	catalog := flowcanvas.DefaultCatalog()
	store := flowcanvas.NewTemplateStore(catalog)

	node := store.InsertNode(flowcanvas.NodeLLMOutput, flowcanvas.Position{X: 400, Y: 100})
	store.Connect(flowcanvas.StartNodeID, node.ID)

	analyzer := flowcanvas.NewAnalyzer(store)
	vars := analyzer.AvailableVariables(node.ID)

	result := store.Validate()

The analyzer is pure and memoized on the store version: re-invoke it
after any mutation, there is no push-based invalidation channel.
*/
package flowcanvas
