package flowcanvas

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph mutation and lookup.
var (
	// ErrNodeNotFound indicates an operation referenced a node ID
	// that is not present in the store.
	ErrNodeNotFound = errors.New("node not found")

	// ErrUnknownNodeType indicates a node type tag outside the
	// built-in set. At catalog boundaries this is a programmer
	// error and panics; on decode paths it is returned.
	ErrUnknownNodeType = errors.New("unknown node type")
)

// NodeExistsError indicates an insert collided with an existing ID.
type NodeExistsError struct {
	// ID is the duplicated node identifier.
	ID string
}

// Error implements the error interface.
func (e *NodeExistsError) Error() string {
	return fmt.Sprintf("node %s already exists", e.ID)
}
