// Package tasks provides the task model and persistent task store.
package tasks

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority represents the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Field length limits.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
)

// Task is a single task record. The store owns all Task state; the
// orchestration layer never holds a mutable copy beyond one operation.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateParams holds the fields for creating a task.
type CreateParams struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
}

// Validate checks field constraints, filling in default status/priority.
func (p *CreateParams) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return &ValidationError{Field: "title", Reason: "title is required"}
	}
	if len(p.Title) > MaxTitleLen {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("title must be %d characters or less", MaxTitleLen)}
	}
	if len(p.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("description must be %d characters or less", MaxDescriptionLen)}
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	if !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid status %q: must be pending, in_progress, or done", string(p.Status))}
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("invalid priority %q: must be low, medium, or high", string(p.Priority))}
	}
	return nil
}

// UpdateParams holds an optional subset of fields to change. Nil fields are
// left untouched.
type UpdateParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	ClearDue    bool
}

// IsEmpty reports whether no field is set.
func (p UpdateParams) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.DueDate == nil && !p.ClearDue
}

// Validate checks field constraints on the set fields.
func (p *UpdateParams) Validate() error {
	if p.IsEmpty() {
		return &ValidationError{Reason: "no fields provided for update"}
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return &ValidationError{Field: "title", Reason: "title cannot be empty"}
		}
		if len(title) > MaxTitleLen {
			return &ValidationError{Field: "title", Reason: fmt.Sprintf("title must be %d characters or less", MaxTitleLen)}
		}
		p.Title = &title
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("description must be %d characters or less", MaxDescriptionLen)}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("invalid status %q: must be pending, in_progress, or done", string(*p.Status))}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("invalid priority %q: must be low, medium, or high", string(*p.Priority))}
	}
	return nil
}

// Filter narrows a task listing. Zero-value fields are ignored.
type Filter struct {
	Status    Status
	Priority  Priority
	DueBefore *time.Time
	DueAfter  *time.Time
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Status == "" && f.Priority == "" && f.DueBefore == nil && f.DueAfter == nil
}

// Describe renders the filter for user-facing messages, e.g. "status=done".
func (f Filter) Describe() string {
	var parts []string
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.Priority != "" {
		parts = append(parts, "priority="+string(f.Priority))
	}
	if f.DueBefore != nil {
		parts = append(parts, "due before "+f.DueBefore.Format("2006-01-02"))
	}
	if f.DueAfter != nil {
		parts = append(parts, "due after "+f.DueAfter.Format("2006-01-02"))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}
