package chat

import (
	"encoding/json"
	"strings"
)

// DisplayItem is a transient, presentation-oriented projection of a
// task. Never persisted.
type DisplayItem struct {
	Kind   string         `json:"type"`
	Format string         `json:"display_format"`
	Data   map[string]any `json:"data"`
}

// ExtractOutcome reports what the extractor found. Candidates counts
// brace-balanced substrings considered; Malformed counts those that
// failed structured parsing, so callers can tell "no payload present"
// from "payload present but broken".
type ExtractOutcome struct {
	Items      []DisplayItem
	Format     string // "table", "card", or ""
	TaskRef    *TaskRef
	Candidates int
	Malformed  int
}

// Extractor scrapes structured payloads out of free-text fragments.
// The brace-scanning implementation is the fallback adapter; a typed
// tool-result channel can replace it without touching callers.
type Extractor interface {
	Extract(fragments []string) ExtractOutcome
}

// BraceScanExtractor locates candidate JSON objects with a nested-brace
// scan. Depth counting only: braces inside string literals will confuse
// it, a known limitation of the heuristic.
type BraceScanExtractor struct{}

func (BraceScanExtractor) Extract(fragments []string) ExtractOutcome {
	var out ExtractOutcome

	for _, fragment := range fragments {
		for _, candidate := range scanBraceCandidates(fragment) {
			out.Candidates++

			var payload map[string]any
			if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
				out.Malformed++
				continue
			}
			classifyPayload(payload, &out)
		}
	}

	return out
}

// classifyPayload sorts a parsed payload into display items. A task
// list renders as a table; a single task renders as a card and becomes
// the last-mentioned candidate.
func classifyPayload(payload map[string]any, out *ExtractOutcome) {
	if list, ok := payload["tasks"].([]any); ok {
		for _, item := range list {
			task, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out.Items = append(out.Items, taskDisplayItem(task, "table"))
		}
		if out.Format == "" {
			out.Format = "table"
		}
		return
	}

	if task, ok := payload["task"].(map[string]any); ok {
		out.Items = append(out.Items, taskDisplayItem(task, "card"))
		if out.Format == "" {
			out.Format = "card"
		}
		out.TaskRef = taskRefFromPayload(task)
	}
}

func taskDisplayItem(task map[string]any, format string) DisplayItem {
	return DisplayItem{
		Kind:   "task",
		Format: format,
		Data: map[string]any{
			"id":          task["id"],
			"title":       task["title"],
			"description": task["description"],
			"status":      task["status"],
			"priority":    task["priority"],
			"due_date":    task["due_date"],
			"created_at":  task["created_at"],
			"updated_at":  task["updated_at"],
		},
	}
}

func taskRefFromPayload(task map[string]any) *TaskRef {
	ref := &TaskRef{}
	if id, ok := task["id"].(float64); ok {
		ref.ID = int64(id)
	}
	if title, ok := task["title"].(string); ok {
		ref.Title = title
	}
	if status, ok := task["status"].(string); ok {
		ref.Status = status
	}
	if priority, ok := task["priority"].(string); ok {
		ref.Priority = priority
	}
	return ref
}

// scanBraceCandidates returns every top-level brace-balanced substring.
func scanBraceCandidates(s string) []string {
	var candidates []string
	depth := 0
	start := -1

	for i, r := range s {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidates = append(candidates, s[start:i+1])
				start = -1
			}
		}
	}

	return candidates
}

// listIntentKeywords suggest the user wants to see their tasks even
// when no structured payload came back.
var listIntentKeywords = []string{"show", "list", "all tasks", "my tasks", "tasks", "what are", "display"}

// DetectListIntent reports whether the raw user text looks like a
// request to display tasks.
func DetectListIntent(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range listIntentKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
