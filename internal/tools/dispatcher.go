package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/tasks"
)

// Dispatcher validates and executes the five task operations. Every
// method returns a JSON string; failures are encoded in the payload
// (an "error" key) rather than raised, so the model can read them.
type Dispatcher struct {
	store        tasks.Store
	resolver     *Resolver
	bulk         *BulkExecutor
	bus          *events.Bus
	logger       *slog.Logger
	listLimit    int
	maxListLimit int
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Resolver     *Resolver
	Bulk         *BulkExecutor
	Bus          *events.Bus // optional
	Logger       *slog.Logger
	ListLimit    int // default page size (default 20)
	MaxListLimit int // hard cap on requested limits (default 100)
}

// NewDispatcher creates a dispatcher over the given store.
func NewDispatcher(store tasks.Store, opts DispatcherOptions) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ListLimit <= 0 {
		opts.ListLimit = 20
	}
	if opts.MaxListLimit <= 0 {
		opts.MaxListLimit = 100
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver(store, TieBreakStoreOrder, 0, nil)
	}
	if opts.Bulk == nil {
		opts.Bulk = NewBulkExecutor(store, 0)
	}
	return &Dispatcher{
		store:        store,
		resolver:     opts.Resolver,
		bulk:         opts.Bulk,
		bus:          opts.Bus,
		logger:       opts.Logger,
		listLimit:    opts.ListLimit,
		maxListLimit: opts.MaxListLimit,
	}
}

// CreateArgs are the parameters of the create_task operation.
type CreateArgs struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// UpdateArgs are the parameters of the update_task operation. Empty
// strings mean "field not provided".
type UpdateArgs struct {
	TaskIdentifier string `json:"task_identifier"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
	Status         string `json:"status,omitempty"`
	DueDate        string `json:"due_date,omitempty"`
	Priority       string `json:"priority,omitempty"`
}

// DeleteArgs are the parameters of the delete_task operation.
type DeleteArgs struct {
	TaskIdentifier string `json:"task_identifier"`
}

// ListArgs are the parameters of the list_tasks operation.
type ListArgs struct {
	Limit int `json:"limit,omitempty"`
	Skip  int `json:"skip,omitempty"`
}

// FilterArgs are the parameters of the filter_tasks operation.
type FilterArgs struct {
	Status    string `json:"status,omitempty"`
	Priority  string `json:"priority,omitempty"`
	DueBefore string `json:"due_before,omitempty"`
	DueAfter  string `json:"due_after,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type taskResult struct {
	Success       bool        `json:"success"`
	Task          *tasks.Task `json:"task"`
	Message       string      `json:"message"`
	UpdatedFields []string    `json:"updated_fields,omitempty"`
}

type listResult struct {
	Success bool          `json:"success"`
	Tasks   []*tasks.Task `json:"tasks"`
	Count   int           `json:"count"`
	Filters string        `json:"filters,omitempty"`
	Message string        `json:"message"`
}

type bulkResult struct {
	Success       bool          `json:"success"`
	Message       string        `json:"message"`
	Count         int           `json:"count"`
	BulkOperation bool          `json:"bulk_operation"`
	Failed        []ItemFailure `json:"failed,omitempty"`
}

type errorResult struct {
	Error          string      `json:"error"`
	Suggestion     string      `json:"suggestion,omitempty"`
	IdentifierUsed string      `json:"identifier_used,omitempty"`
	CurrentTask    *tasks.Task `json:"current_task,omitempty"`
}

func encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"error": "failed to encode result"}`
	}
	return string(data)
}

func (d *Dispatcher) fail(format string, args ...any) string {
	return encode(errorResult{Error: fmt.Sprintf(format, args...)})
}

// CreateTask validates the arguments and creates a task.
func (d *Dispatcher) CreateTask(ctx context.Context, args CreateArgs) string {
	params := tasks.CreateParams{
		Title:       args.Title,
		Description: args.Description,
		Priority:    tasks.Priority(strings.ToLower(args.Priority)),
	}

	if args.DueDate != "" {
		due, err := tasks.ParseNaturalDate(args.DueDate, time.Now())
		if err != nil {
			return d.fail("Invalid due_date format. Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
		}
		params.DueDate = &due
	}

	if err := params.Validate(); err != nil {
		return d.fail("%s", err.Error())
	}

	task, err := d.store.Create(ctx, params)
	if err != nil {
		return d.fail("Failed to create task: %s", err.Error())
	}

	d.logger.Info("task created", "id", task.ID, "title", task.Title)
	d.publishChange(ctx, "created", task)

	return encode(taskResult{
		Success: true,
		Task:    task,
		Message: fmt.Sprintf("Created task: %s", task.Title),
	})
}

// UpdateTask resolves the identifier and applies the given fields.
// A bulk identifier updates every matching task.
func (d *Dispatcher) UpdateTask(ctx context.Context, args UpdateArgs) string {
	params, fields, errMsg := d.buildUpdate(args)
	if errMsg != "" {
		return errMsg
	}

	res, err := d.resolver.Resolve(ctx, args.TaskIdentifier)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return encode(errorResult{
				Error:      fmt.Sprintf("Task not found with identifier: %s", nf.Identifier),
				Suggestion: nf.Suggestion,
			})
		}
		return d.fail("Failed to update task: %s", err.Error())
	}

	if len(fields) == 0 {
		result := errorResult{Error: "No valid fields provided for update"}
		if !res.Bulk() {
			result.CurrentTask = res.Task
		}
		return encode(result)
	}

	if res.Bulk() {
		outcome, err := d.bulk.Apply(ctx, res.Predicate, func(ctx context.Context, t *tasks.Task) error {
			updated, err := d.store.Update(ctx, t.ID, params)
			if err != nil {
				return err
			}
			d.publishChange(ctx, "updated", updated)
			return nil
		})
		if err != nil {
			return d.fail("Failed to update tasks: %s", err.Error())
		}
		return encode(bulkResult{
			Success:       true,
			Message:       fmt.Sprintf("Successfully updated %d %s", outcome.Succeeded, keywordLabel(res.Keyword, "tasks")),
			Count:         outcome.Succeeded,
			BulkOperation: true,
			Failed:        outcome.Failed,
		})
	}

	updated, err := d.store.Update(ctx, res.Task.ID, params)
	if err != nil {
		return d.fail("Failed to update task with ID %d: %s", res.Task.ID, err.Error())
	}

	d.logger.Info("task updated", "id", updated.ID, "fields", fields)
	d.publishChange(ctx, "updated", updated)

	return encode(taskResult{
		Success:       true,
		Task:          updated,
		Message:       fmt.Sprintf("Successfully updated task '%s' (found by %s)", updated.Title, res.Method),
		UpdatedFields: fields,
	})
}

// buildUpdate converts UpdateArgs to validated UpdateParams plus the
// list of fields actually set. Returns a JSON error string on invalid
// input, "" otherwise.
func (d *Dispatcher) buildUpdate(args UpdateArgs) (tasks.UpdateParams, []string, string) {
	var params tasks.UpdateParams
	var fields []string

	if t := strings.TrimSpace(args.Title); t != "" {
		params.Title = &t
		fields = append(fields, "title")
	}
	if args.Description != "" {
		desc := strings.TrimSpace(args.Description)
		params.Description = &desc
		fields = append(fields, "description")
	}
	if s := strings.TrimSpace(args.Status); s != "" {
		status := tasks.Status(strings.ToLower(s))
		if !status.Valid() {
			return params, nil, d.fail("Invalid status: %s. Must be: pending, in_progress, or done", args.Status)
		}
		params.Status = &status
		fields = append(fields, "status")
	}
	if p := strings.TrimSpace(args.Priority); p != "" {
		priority := tasks.Priority(strings.ToLower(p))
		if !priority.Valid() {
			return params, nil, d.fail("Invalid priority: %s. Must be: low, medium, or high", args.Priority)
		}
		params.Priority = &priority
		fields = append(fields, "priority")
	}
	if args.DueDate != "" {
		due, err := tasks.ParseNaturalDate(args.DueDate, time.Now())
		if err != nil {
			return params, nil, d.fail("Invalid due_date format. Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS")
		}
		params.DueDate = &due
		fields = append(fields, "due_date")
	}

	return params, fields, ""
}

// DeleteTask resolves the identifier and deletes the matching task or
// every task matching a bulk keyword.
func (d *Dispatcher) DeleteTask(ctx context.Context, args DeleteArgs) string {
	res, err := d.resolver.Resolve(ctx, args.TaskIdentifier)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return encode(errorResult{
				Error:      fmt.Sprintf("Task not found with identifier: %s", nf.Identifier),
				Suggestion: nf.Suggestion,
			})
		}
		return d.fail("Failed to delete task: %s", err.Error())
	}

	if res.Bulk() {
		outcome, err := d.bulk.Apply(ctx, res.Predicate, func(ctx context.Context, t *tasks.Task) error {
			ok, err := d.store.Delete(ctx, t.ID)
			if err != nil {
				return err
			}
			if !ok {
				return tasks.ErrNotFound
			}
			d.publishChange(ctx, "deleted", t)
			return nil
		})
		if err != nil {
			return d.fail("Failed to delete tasks: %s", err.Error())
		}

		label := keywordLabel(res.Keyword, "tasks")
		if outcome.Attempted == 0 {
			return encode(bulkResult{
				Success:       true,
				Message:       fmt.Sprintf("No %s found to delete", label),
				BulkOperation: true,
			})
		}
		d.logger.Info("bulk delete", "keyword", res.Keyword, "deleted", outcome.Succeeded, "failed", len(outcome.Failed))
		return encode(bulkResult{
			Success:       true,
			Message:       fmt.Sprintf("Successfully deleted %d %s", outcome.Succeeded, label),
			Count:         outcome.Succeeded,
			BulkOperation: true,
			Failed:        outcome.Failed,
		})
	}

	title := res.Task.Title
	ok, err := d.store.Delete(ctx, res.Task.ID)
	if err != nil || !ok {
		return d.fail("Failed to delete task '%s' with ID %d", title, res.Task.ID)
	}

	d.logger.Info("task deleted", "id", res.Task.ID, "title", title)
	d.publishChange(ctx, "deleted", res.Task)

	return encode(bulkResult{
		Success: true,
		Message: fmt.Sprintf("Successfully deleted task '%s' (found by %s)", title, res.Method),
	})
}

// ListTasks returns a page of tasks, newest first.
func (d *Dispatcher) ListTasks(ctx context.Context, args ListArgs) string {
	limit := args.Limit
	if limit <= 0 {
		limit = d.listLimit
	}
	if limit > d.maxListLimit {
		limit = d.maxListLimit
	}
	skip := args.Skip
	if skip < 0 {
		skip = 0
	}

	list, err := d.store.List(ctx, skip, limit, nil)
	if err != nil {
		return d.fail("Failed to list tasks: %s", err.Error())
	}
	if list == nil {
		list = []*tasks.Task{}
	}

	return encode(listResult{
		Success: true,
		Tasks:   list,
		Count:   len(list),
		Message: fmt.Sprintf("Found %d tasks", len(list)),
	})
}

// FilterTasks returns tasks matching the given criteria.
func (d *Dispatcher) FilterTasks(ctx context.Context, args FilterArgs) string {
	var filter tasks.Filter

	if s := strings.TrimSpace(args.Status); s != "" {
		status := tasks.Status(strings.ToLower(s))
		if !status.Valid() {
			return d.fail("Invalid status: %s. Must be: pending, in_progress, or done", args.Status)
		}
		filter.Status = status
	}
	if p := strings.TrimSpace(args.Priority); p != "" {
		priority := tasks.Priority(strings.ToLower(p))
		if !priority.Valid() {
			return d.fail("Invalid priority: %s. Must be: low, medium, or high", args.Priority)
		}
		filter.Priority = priority
	}
	if args.DueBefore != "" {
		due, err := tasks.ParseDate(args.DueBefore)
		if err != nil {
			return d.fail("Invalid due_before format. Use YYYY-MM-DD")
		}
		// Bare dates parse to midnight; include the whole day.
		endOfDay := due.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		filter.DueBefore = &endOfDay
	}
	if args.DueAfter != "" {
		due, err := tasks.ParseDate(args.DueAfter)
		if err != nil {
			return d.fail("Invalid due_after format. Use YYYY-MM-DD")
		}
		filter.DueAfter = &due
	}

	limit := args.Limit
	if limit <= 0 {
		limit = d.listLimit
	}
	if limit > d.maxListLimit {
		limit = d.maxListLimit
	}

	list, err := d.store.List(ctx, 0, limit, &filter)
	if err != nil {
		return d.fail("Failed to filter tasks: %s", err.Error())
	}
	if list == nil {
		list = []*tasks.Task{}
	}

	filterText := filter.Describe()
	return encode(listResult{
		Success: true,
		Tasks:   list,
		Count:   len(list),
		Filters: filterText,
		Message: fmt.Sprintf("Found %d tasks with %s", len(list), filterText),
	})
}

// keywordLabel renders a bulk keyword for messages: "all" style keywords
// collapse to the plain noun, status/priority keywords qualify it.
func keywordLabel(keyword, noun string) string {
	switch keyword {
	case "all", "all tasks", "everything", "":
		return noun
	case "completed", "done", "finished":
		return "completed " + noun
	case "pending", "not started", "todo":
		return "pending " + noun
	case "high priority":
		return "high priority " + noun
	default:
		return noun
	}
}

func (d *Dispatcher) publishChange(ctx context.Context, action string, task *tasks.Task) {
	if d.bus == nil {
		return
	}
	d.bus.Publish(events.NewTypedEventWithSession(events.SourceTools, events.TaskChangedPayload{
		Action: action,
		TaskID: task.ID,
		Title:  task.Title,
	}, events.SessionIDFromContext(ctx)))
}
