package tools

import (
	"context"

	"github.com/dohr-michael/taskchat/internal/tasks"
)

// ItemFailure records one task that a bulk action could not process.
type ItemFailure struct {
	TaskID int64  `json:"task_id"`
	Title  string `json:"title,omitempty"`
	Reason string `json:"reason"`
}

// BulkResult aggregates the outcome of a bulk action. A non-empty Failed
// list is reported, never raised.
type BulkResult struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    []ItemFailure `json:"failed,omitempty"`
}

// BulkAction is applied to each matching task in turn.
type BulkAction func(ctx context.Context, task *tasks.Task) error

// BulkExecutor applies an action to every task matching a predicate.
// Items are processed sequentially so failure attribution stays
// unambiguous per item.
type BulkExecutor struct {
	store tasks.Store
	limit int
}

// NewBulkExecutor creates an executor. limit caps how many tasks one
// bulk operation may touch.
func NewBulkExecutor(store tasks.Store, limit int) *BulkExecutor {
	if limit <= 0 {
		limit = 1000
	}
	return &BulkExecutor{store: store, limit: limit}
}

// Apply runs action over every task matching filter. An empty matching
// set is a no-op success with Attempted=0. Per-item failures do not
// abort the remaining items; only the initial fetch can fail outright.
func (e *BulkExecutor) Apply(ctx context.Context, filter *tasks.Filter, action BulkAction) (*BulkResult, error) {
	matching, err := e.store.List(ctx, 0, e.limit, filter)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Attempted: len(matching)}
	for _, t := range matching {
		if err := action(ctx, t); err != nil {
			result.Failed = append(result.Failed, ItemFailure{
				TaskID: t.ID,
				Title:  t.Title,
				Reason: err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}
