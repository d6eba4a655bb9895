package analyses

import (
	"context"
	"time"
)

// ListFilter narrows and pages List results.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

// Repo abstracts analysis persistence.
type Repo interface {
	Create(ctx context.Context, analysis Analysis) error
	GetByID(ctx context.Context, id string) (Analysis, error)
	// List returns a page ordered newest-first plus the total count
	// matching the filter.
	List(ctx context.Context, filter ListFilter) ([]Analysis, int, error)
	// Complete performs the terminal transition to completed, writing
	// all result fields in the same update.
	Complete(ctx context.Context, id string, result ResultUpdate, completedAt time.Time) error
	// Fail performs the terminal transition to failed; reasoning is the
	// only result field written and completed_at stays unset.
	Fail(ctx context.Context, id, reasoning string, failedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
