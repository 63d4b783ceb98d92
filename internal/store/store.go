// Package store persists scoring runs and their results.
package store

import (
	"context"

	"github.com/sells-group/svi-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Level  model.Level     `json:"level,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for scoring runs.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, params model.RunParams) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Results
	SaveResults(ctx context.Context, runID string, res *model.ResultTable) error
	GetResults(ctx context.Context, runID string) (*model.ResultTable, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
