package store

import (
	"context"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// RunFilter specifies criteria for listing search runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	UserID string          `json:"user_id,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store persists search-run history. Persistence is fire-and-forget
// relative to the pipeline: callers log failures and move on.
type Store interface {
	SaveRun(ctx context.Context, run *model.SearchRun) error
	GetRun(ctx context.Context, runID string) (*model.SearchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error)
	ListStages(ctx context.Context, runID string) ([]model.RunStage, error)

	Migrate(ctx context.Context) error
	Close() error
}
