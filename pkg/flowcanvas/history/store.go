// Package history persists local draft snapshots of workflow graphs.
//
// The run service owns the canonical saved workflow; history is the
// builder's safety net, keeping the last N graph states per workflow
// so an accidental edit or crash never loses work. Stores hold opaque
// serialized graphs; use EncodeGraph/DecodeGraph for the payload.
package history

import (
	"errors"
	"time"
)

// Sentinel errors for snapshot stores.
var (
	// ErrNotFound indicates no snapshot exists for the workflow.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("history store is closed")
)

// Info describes a stored snapshot without its payload.
type Info struct {
	// WorkflowID identifies the workflow.
	WorkflowID string
	// Sequence orders snapshots within a workflow, oldest first.
	Sequence int64
	// SavedAt is when the snapshot was taken.
	SavedAt time.Time
	// Size is the payload size in bytes.
	Size int
}

// Store persists draft snapshots keyed by workflow ID.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Save appends a new snapshot for the workflow.
	Save(workflowID string, data []byte) error

	// Latest returns the most recent snapshot payload.
	// Returns ErrNotFound if the workflow has no snapshots.
	Latest(workflowID string) ([]byte, error)

	// List returns snapshot metadata for the workflow, oldest first.
	List(workflowID string) ([]Info, error)

	// Prune drops all but the newest keep snapshots.
	Prune(workflowID string, keep int) error

	// DeleteWorkflow removes all snapshots for the workflow.
	DeleteWorkflow(workflowID string) error

	// Close releases store resources.
	Close() error
}
