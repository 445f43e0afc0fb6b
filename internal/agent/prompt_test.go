package agent

import (
	"strings"
	"testing"
)

func TestTaskContext(t *testing.T) {
	got := TaskContext(7, "Buy milk", "pending")
	if !strings.Contains(got, "LAST MENTIONED TASK") {
		t.Errorf("missing context header: %q", got)
	}
	if !strings.Contains(got, "Title: Buy milk") || !strings.Contains(got, "ID: 7") || !strings.Contains(got, "Status: pending") {
		t.Errorf("missing task fields: %q", got)
	}
}

func TestTaskContext_EmptyTitle(t *testing.T) {
	if got := TaskContext(1, "", "pending"); got != "" {
		t.Errorf("expected empty block without a title, got %q", got)
	}
}

func TestDefaultInstructions_MentionTools(t *testing.T) {
	for _, name := range []string{"create_task", "update_task", "delete_task", "list_tasks", "filter_tasks"} {
		if !strings.Contains(DefaultInstructions, name) {
			t.Errorf("instructions do not mention %s", name)
		}
	}
}
