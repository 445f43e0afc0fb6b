package tools

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dohr-michael/taskchat/internal/tasks"
)

// TieBreak selects which candidate wins when several titles match.
type TieBreak string

const (
	// TieBreakStoreOrder picks the first match in store order (most
	// recent first).
	TieBreakStoreOrder TieBreak = "store-order"
	// TieBreakLastMentioned prefers the task last mentioned in the
	// conversation, falling back to store order.
	TieBreakLastMentioned TieBreak = "last-mentioned"
)

// LastMentionedProvider reports the task the conversation last referred to.
// Returns 0 when no task has been mentioned.
type LastMentionedProvider interface {
	LastMentionedID() int64
}

// bulkKeywords is the reserved vocabulary that resolves to a filter
// instead of a single task. Matching is case-insensitive on the
// trimmed identifier.
var bulkKeywords = map[string]tasks.Filter{
	"all":           {},
	"all tasks":     {},
	"everything":    {},
	"completed":     {Status: tasks.StatusDone},
	"done":          {Status: tasks.StatusDone},
	"finished":      {Status: tasks.StatusDone},
	"pending":       {Status: tasks.StatusPending},
	"not started":   {Status: tasks.StatusPending},
	"todo":          {Status: tasks.StatusPending},
	"high priority": {Priority: tasks.PriorityHigh},
}

// Resolution is the outcome of resolving an identifier. Exactly one of
// Task and Predicate is set.
type Resolution struct {
	Task      *tasks.Task
	Predicate *tasks.Filter
	Keyword   string // matched bulk keyword, for user-facing messages
	Method    string // how the task was found, e.g. `exact title 'x'`
}

// Bulk reports whether the resolution is a bulk predicate.
func (r *Resolution) Bulk() bool { return r.Predicate != nil }

// Resolver maps an identifier string to a task or a bulk predicate.
type Resolver struct {
	store     tasks.Store
	tieBreak  TieBreak
	scanLimit int
	mentioned LastMentionedProvider
}

// NewResolver creates a resolver over the given store. scanLimit bounds
// the title scan; mentioned may be nil when tie-break is store order.
func NewResolver(store tasks.Store, tieBreak TieBreak, scanLimit int, mentioned LastMentionedProvider) *Resolver {
	if scanLimit <= 0 {
		scanLimit = 1000
	}
	if tieBreak == "" {
		tieBreak = TieBreakStoreOrder
	}
	return &Resolver{
		store:     store,
		tieBreak:  tieBreak,
		scanLimit: scanLimit,
		mentioned: mentioned,
	}
}

// Resolve maps identifier to a single task or a bulk predicate.
// Resolution order: numeric ID (no fallback on miss), bulk keyword,
// exact case-insensitive title, then substring match. A miss at the
// end returns *NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*Resolution, error) {
	trimmed := strings.TrimSpace(identifier)
	lowered := strings.ToLower(trimmed)

	if id, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		task, err := r.store.Get(ctx, id)
		if errors.Is(err, tasks.ErrNotFound) {
			return nil, newNotFound(trimmed)
		}
		if err != nil {
			return nil, err
		}
		return &Resolution{Task: task, Method: fmt.Sprintf("ID %d", id)}, nil
	}

	if filter, ok := bulkKeywords[lowered]; ok {
		f := filter
		return &Resolution{Predicate: &f, Keyword: lowered}, nil
	}

	all, err := r.store.List(ctx, 0, r.scanLimit, nil)
	if err != nil {
		return nil, err
	}

	if task := r.pick(all, func(t *tasks.Task) bool {
		return strings.ToLower(t.Title) == lowered
	}); task != nil {
		return &Resolution{Task: task, Method: fmt.Sprintf("exact title '%s'", trimmed)}, nil
	}

	if task := r.pick(all, func(t *tasks.Task) bool {
		return strings.Contains(strings.ToLower(t.Title), lowered)
	}); task != nil {
		return &Resolution{Task: task, Method: fmt.Sprintf("partial title '%s'", trimmed)}, nil
	}

	return nil, newNotFound(trimmed)
}

// pick returns the winning candidate under the configured tie-break.
func (r *Resolver) pick(all []*tasks.Task, match func(*tasks.Task) bool) *tasks.Task {
	var first *tasks.Task
	preferred := int64(0)
	if r.tieBreak == TieBreakLastMentioned && r.mentioned != nil {
		preferred = r.mentioned.LastMentionedID()
	}

	for _, t := range all {
		if !match(t) {
			continue
		}
		if preferred != 0 && t.ID == preferred {
			return t
		}
		if first == nil {
			first = t
			if preferred == 0 {
				return first
			}
		}
	}
	return first
}
