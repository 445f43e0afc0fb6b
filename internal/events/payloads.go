package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

type UserMessagePayload struct {
	Content string `json:"content"`
}

func (UserMessagePayload) EventType() EventType { return EventUserMessage }

// ChatResponsePayload carries the formatted reply for a processed message.
type ChatResponsePayload struct {
	Response      string `json:"response"`
	Success       bool   `json:"success"`
	DisplayFormat string `json:"display_format,omitempty"`
	ItemCount     int    `json:"item_count,omitempty"`
	ContextLength int    `json:"context_length"`
}

func (ChatResponsePayload) EventType() EventType { return EventChatResponse }

type ToolStatus string

const (
	ToolStatusStarted   ToolStatus = "started"
	ToolStatusCompleted ToolStatus = "completed"
	ToolStatusFailed    ToolStatus = "failed"
)

type ToolCallPayload struct {
	Status    ToolStatus     `json:"status"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Result    string         `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (ToolCallPayload) EventType() EventType { return EventToolCall }

// LLMCallPayload carries model invocation telemetry. Phase is one of
// "request", "response", "error".
type LLMCallPayload struct {
	Phase        string `json:"phase"`
	Model        string `json:"model"`
	MessageCount int    `json:"message_count,omitempty"`
	TokensInput  int    `json:"tokens_input,omitempty"`
	TokensOutput int    `json:"tokens_output,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (LLMCallPayload) EventType() EventType { return EventLLMCall }

// TaskChangedPayload signals a task mutation. Action is one of
// "created", "updated", "deleted".
type TaskChangedPayload struct {
	Action string `json:"action"`
	TaskID int64  `json:"task_id"`
	Title  string `json:"title,omitempty"`
}

func (TaskChangedPayload) EventType() EventType { return EventTaskChanged }

// TaskDuePayload signals a task approaching its due date.
type TaskDuePayload struct {
	TaskID  int64     `json:"task_id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date"`
}

func (TaskDuePayload) EventType() EventType { return EventTaskDue }

type SessionPayload struct {
	SessionID string `json:"session_id"`
}

func (SessionPayload) EventType() EventType { return EventSessionCreated }

// NewTypedEvent builds an event from a typed payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        generateEventID(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

// NewTypedEventWithSession builds an event from a typed payload with
// session context.
func NewTypedEventWithSession(source EventSource, payload EventPayload, sessionID string) Event {
	e := NewTypedEvent(source, payload)
	e.SessionID = sessionID
	return e
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// ExtractPayload decodes an event payload back into its typed form.
func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}
