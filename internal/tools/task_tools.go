package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// CreateTaskTool exposes create_task to the model.
type CreateTaskTool struct {
	dispatcher *Dispatcher
}

func createTaskSpec() *ToolSpec {
	return &ToolSpec{
		Name:        "create_task",
		Description: "Create a new task with a title and optional description, due date, and priority.",
		Parameters: map[string]ParamSpec{
			"title": {
				Type:        "string",
				Description: "The task title",
				Required:    true,
			},
			"description": {
				Type:        "string",
				Description: "Optional task description",
			},
			"due_date": {
				Type:        "string",
				Description: "Optional due date in ISO format (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)",
			},
			"priority": {
				Type:        "string",
				Description: "Task priority",
				Enum:        []string{"low", "medium", "high"},
			},
		},
	}
}

func (t *CreateTaskTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return specToToolInfo(createTaskSpec()), nil
}

func (t *CreateTaskTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args CreateArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("create_task: parse input: %w", err)
	}
	return t.dispatcher.CreateTask(ctx, args), nil
}

// UpdateTaskTool exposes update_task to the model.
type UpdateTaskTool struct {
	dispatcher *Dispatcher
}

func updateTaskSpec() *ToolSpec {
	return &ToolSpec{
		Name:        "update_task",
		Description: "Update an existing task by ID or title. Bulk keywords ('all', 'completed', 'pending', 'high priority') update every matching task.",
		Parameters: map[string]ParamSpec{
			"task_identifier": {
				Type:        "string",
				Description: "Task ID (number), exact or partial title, or a bulk keyword",
				Required:    true,
			},
			"title": {
				Type:        "string",
				Description: "New task title",
			},
			"description": {
				Type:        "string",
				Description: "New task description",
			},
			"status": {
				Type:        "string",
				Description: "New status",
				Enum:        []string{"pending", "in_progress", "done"},
			},
			"due_date": {
				Type:        "string",
				Description: "New due date in ISO format",
			},
			"priority": {
				Type:        "string",
				Description: "New priority",
				Enum:        []string{"low", "medium", "high"},
			},
		},
	}
}

func (t *UpdateTaskTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return specToToolInfo(updateTaskSpec()), nil
}

func (t *UpdateTaskTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args UpdateArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("update_task: parse input: %w", err)
	}
	return t.dispatcher.UpdateTask(ctx, args), nil
}

// DeleteTaskTool exposes delete_task to the model.
type DeleteTaskTool struct {
	dispatcher *Dispatcher
}

func deleteTaskSpec() *ToolSpec {
	return &ToolSpec{
		Name:        "delete_task",
		Description: "Delete a task by ID or title. Bulk keywords: 'all'/'all tasks' deletes everything, 'completed'/'done' deletes completed tasks, 'pending' deletes pending tasks, 'high priority' deletes high priority tasks.",
		Parameters: map[string]ParamSpec{
			"task_identifier": {
				Type:        "string",
				Description: "Task ID (number), exact or partial title, or a bulk keyword",
				Required:    true,
			},
		},
	}
}

func (t *DeleteTaskTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return specToToolInfo(deleteTaskSpec()), nil
}

func (t *DeleteTaskTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args DeleteArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("delete_task: parse input: %w", err)
	}
	return t.dispatcher.DeleteTask(ctx, args), nil
}

// ListTasksTool exposes list_tasks to the model.
type ListTasksTool struct {
	dispatcher *Dispatcher
}

func listTasksSpec() *ToolSpec {
	return &ToolSpec{
		Name:        "list_tasks",
		Description: "List all tasks, newest first.",
		Parameters: map[string]ParamSpec{
			"limit": {
				Type:        "integer",
				Description: "Maximum number of tasks to return (default: 20)",
			},
			"skip": {
				Type:        "integer",
				Description: "Number of tasks to skip (default: 0)",
			},
		},
	}
}

func (t *ListTasksTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return specToToolInfo(listTasksSpec()), nil
}

func (t *ListTasksTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args ListArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("list_tasks: parse input: %w", err)
	}
	return t.dispatcher.ListTasks(ctx, args), nil
}

// FilterTasksTool exposes filter_tasks to the model.
type FilterTasksTool struct {
	dispatcher *Dispatcher
}

func filterTasksSpec() *ToolSpec {
	return &ToolSpec{
		Name:        "filter_tasks",
		Description: "Filter tasks by status, priority, or due date range.",
		Parameters: map[string]ParamSpec{
			"status": {
				Type:        "string",
				Description: "Filter by status",
				Enum:        []string{"pending", "in_progress", "done"},
			},
			"priority": {
				Type:        "string",
				Description: "Filter by priority",
				Enum:        []string{"low", "medium", "high"},
			},
			"due_before": {
				Type:        "string",
				Description: "Show tasks due before this date (YYYY-MM-DD)",
			},
			"due_after": {
				Type:        "string",
				Description: "Show tasks due after this date (YYYY-MM-DD)",
			},
			"limit": {
				Type:        "integer",
				Description: "Maximum number of tasks to return",
			},
		},
	}
}

func (t *FilterTasksTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return specToToolInfo(filterTasksSpec()), nil
}

func (t *FilterTasksTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var args FilterArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("filter_tasks: parse input: %w", err)
	}
	return t.dispatcher.FilterTasks(ctx, args), nil
}

// All returns the five task tools bound to the given dispatcher.
func All(d *Dispatcher) []tool.BaseTool {
	return []tool.BaseTool{
		&CreateTaskTool{dispatcher: d},
		&UpdateTaskTool{dispatcher: d},
		&DeleteTaskTool{dispatcher: d},
		&ListTasksTool{dispatcher: d},
		&FilterTasksTool{dispatcher: d},
	}
}

var (
	_ tool.InvokableTool = (*CreateTaskTool)(nil)
	_ tool.InvokableTool = (*UpdateTaskTool)(nil)
	_ tool.InvokableTool = (*DeleteTaskTool)(nil)
	_ tool.InvokableTool = (*ListTasksTool)(nil)
	_ tool.InvokableTool = (*FilterTasksTool)(nil)
)
