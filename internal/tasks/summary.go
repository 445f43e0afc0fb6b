package tasks

import (
	"fmt"
	"strings"
)

var statusMarks = map[Status]string{
	StatusPending:    "[ ]",
	StatusInProgress: "[~]",
	StatusDone:       "[x]",
}

var priorityMarks = map[Priority]string{
	PriorityHigh:   "!",
	PriorityMedium: "-",
	PriorityLow:    ".",
}

// Summarize renders a plain-text listing of tasks for terminal output.
func Summarize(list []*Task) string {
	if len(list) == 0 {
		return "No tasks found."
	}

	plural := ""
	if len(list) > 1 {
		plural = "s"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d task%s:\n", len(list), plural)

	for i, t := range list {
		mark := statusMarks[t.Status]
		if mark == "" {
			mark = "[ ]"
		}
		prio := priorityMarks[t.Priority]
		if prio == "" {
			prio = "-"
		}

		due := ""
		if t.DueDate != nil {
			due = fmt.Sprintf(" (due %s)", t.DueDate.Format("2006-01-02"))
		}
		fmt.Fprintf(&sb, "%d. %s %s #%d %s%s\n", i+1, mark, prio, t.ID, t.Title, due)

		if t.Description != "" {
			desc := t.Description
			if len(desc) > 100 {
				desc = desc[:100] + "..."
			}
			fmt.Fprintf(&sb, "   %s\n", desc)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
