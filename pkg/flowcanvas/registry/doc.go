// Package registry provides a small thread-safe registry for values
// indexed by a comparable key.
//
// flowcanvas uses it to back the node-type catalog: the closed set of
// builder node types maps to immutable metadata records, registered
// once at startup and read on every lookup afterwards. The registry
// is read-heavy by construction and guards entries with sync.RWMutex.
//
// Register values once, then look them up by key:
//
//	r := registry.New[flowcanvas.NodeType, Metadata]()
//	r.Register(flowcanvas.NodeStart, startMetadata)
//
//	meta, ok := r.Get(flowcanvas.NodeStart)
//
// Range iterates over a snapshot, so registering or deleting during
// iteration does not affect the entries already being visited.
package registry
