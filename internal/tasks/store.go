package tasks

import "context"

// Store is the persistence interface for tasks. Listings are ordered
// most-recent-first (creation time descending).
type Store interface {
	// Create inserts a new task. Params must already be validated.
	Create(ctx context.Context, params CreateParams) (*Task, error)

	// Get returns the task with the given ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Task, error)

	// GetByTitle returns the most recent task whose title contains text
	// (case-insensitive substring), or ErrNotFound.
	GetByTitle(ctx context.Context, text string) (*Task, error)

	// List returns up to limit tasks after skipping skip, newest first,
	// optionally narrowed by filter.
	List(ctx context.Context, skip, limit int, filter *Filter) ([]*Task, error)

	// Update applies the set fields of params to the task, or ErrNotFound.
	Update(ctx context.Context, id int64, params UpdateParams) (*Task, error)

	// Delete removes the task. Returns false if no task had that ID.
	Delete(ctx context.Context, id int64) (bool, error)

	// Count returns the number of tasks matching filter.
	Count(ctx context.Context, filter *Filter) (int, error)

	// Close releases store resources.
	Close() error
}
