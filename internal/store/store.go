package store

import (
	"time"

	"github.com/karanj/rewoo/internal/plan"
	"github.com/karanj/rewoo/internal/task"
)

// Snapshot captures one task's state for status queries and restart survival.
// It is owned by the orchestrator and written after each major transition.
type Snapshot struct {
	Request *task.Request `json:"request"`
	Result  *task.Result  `json:"result"`
	Plan    *plan.Plan    `json:"plan,omitempty"`
}

// TaskStore persists task snapshots with a TTL. Implementations must be safe
// for concurrent use.
type TaskStore interface {
	Put(id string, snapshot *Snapshot, ttl time.Duration) error
	// Get returns the snapshot, or (nil, nil) when absent or expired.
	Get(id string) (*Snapshot, error)
	Delete(id string) error
}
