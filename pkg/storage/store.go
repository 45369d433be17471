package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no snapshot exists for a manager
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is the parameter set of one successful settings resolution
type Snapshot struct {
	Manager    string            `json:"manager"`
	RunID      string            `json:"run_id"`
	Mode       string            `json:"mode"`
	ResolvedAt time.Time         `json:"resolved_at"`
	Params     map[string]string `json:"params"`
}

// Store defines the interface for local manager state
type Store interface {
	// SaveSnapshot replaces the snapshot kept for snap.Manager
	SaveSnapshot(snap *Snapshot) error

	// LatestSnapshot returns the last snapshot saved for manager
	LatestSnapshot(manager string) (*Snapshot, error)

	// ListManagers returns the managers with a saved snapshot, sorted
	ListManagers() ([]string, error)

	Close() error
}
