package model

import "time"

// RunStatus tracks a scoring run through its lifecycle.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunParams records the inputs that shaped a scoring run, enough to
// reproduce it.
type RunParams struct {
	Year         int      `json:"year"`
	Level        Level    `json:"level"`
	Variables    []string `json:"variables"`
	Inverse      []string `json:"inverse,omitempty"`
	Interpolate  bool     `json:"interpolate"`
	MinNeighbors int      `json:"min_neighbors"`
}

// Run is one scoring execution over a set of areas.
type Run struct {
	ID        string    `json:"id"`
	Params    RunParams `json:"params"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
