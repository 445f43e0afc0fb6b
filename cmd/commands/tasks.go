package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/dohr-michael/taskchat/internal/tasks"
)

// NewTasksCommand returns the tasks subcommand for direct store access.
func NewTasksCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasks",
		Usage: "Inspect and export the task store",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, in_progress, done)",
					},
					&cli.StringFlag{
						Name:  "priority",
						Usage: "Filter by priority (low, medium, high)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tasks",
						Value: 100,
					},
				},
				Action: runTasksList,
			},
			{
				Name:      "show",
				Usage:     "Show task details",
				ArgsUsage: "<task_id>",
				Action:    runTasksShow,
			},
			{
				Name:  "export",
				Usage: "Export all tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (yaml or json)",
						Value: "yaml",
					},
				},
				Action: runTasksExport,
			},
		},
		DefaultCommand: "list",
	}
}

func runTasksList(ctx context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer store.Close()

	var filter *tasks.Filter
	if cmd.String("status") != "" || cmd.String("priority") != "" {
		filter = &tasks.Filter{}
		if v := cmd.String("status"); v != "" {
			status := tasks.Status(v)
			if !status.Valid() {
				return fmt.Errorf("invalid status %q: must be pending, in_progress, or done", v)
			}
			filter.Status = status
		}
		if v := cmd.String("priority"); v != "" {
			priority := tasks.Priority(v)
			if !priority.Valid() {
				return fmt.Errorf("invalid priority %q: must be low, medium, or high", v)
			}
			filter.Priority = priority
		}
	}

	list, err := store.List(ctx, 0, cmd.Int("limit"), filter)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, t := range list {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(tasks.Summarize(list))
	return nil
}

func runTasksShow(ctx context.Context, cmd *cli.Command) error {
	idArg := cmd.Args().First()
	if idArg == "" {
		return fmt.Errorf("usage: taskchat tasks show <task_id>")
	}
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", idArg)
	}

	cfg := loadConfig(cmd)
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer store.Close()

	t, err := store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	fmt.Printf("ID:        %d\n", t.ID)
	fmt.Printf("Title:     %s\n", t.Title)
	fmt.Printf("Status:    %s\n", t.Status)
	fmt.Printf("Priority:  %s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Printf("Due:       %s\n", t.DueDate.Format("2006-01-02"))
	}
	fmt.Printf("Created:   %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:   %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
	if t.Description != "" {
		fmt.Printf("\nDescription:\n%s\n", t.Description)
	}
	return nil
}

func runTasksExport(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("format")
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	cfg := loadConfig(cmd)
	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer store.Close()

	count, err := store.Count(ctx, nil)
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}
	list, err := store.List(ctx, 0, count, nil)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	return yaml.NewEncoder(os.Stdout).Encode(list)
}
