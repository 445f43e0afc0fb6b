package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	// User → Orchestrator
	EventUserMessage EventType = "user.message"

	// Orchestrator → Client
	EventChatResponse EventType = "chat.response"

	// Tool execution
	EventToolCall EventType = "tool.call"

	// Model invocation telemetry
	EventLLMCall EventType = "llm.call"

	// Task lifecycle
	EventTaskChanged EventType = "task.changed"
	EventTaskDue     EventType = "task.due"

	// Session lifecycle
	EventSessionCreated EventType = "session.created"
	EventSessionCleared EventType = "session.cleared"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceChat     EventSource = "chat"
	SourceTools    EventSource = "tools"
	SourceGateway  EventSource = "gateway"
	SourceReminder EventSource = "reminder"
)

// Event represents an event in the system.
type Event struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload"`
}

func generateEventID() string {
	return uuid.NewString()
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, source EventSource, payload map[string]any) Event {
	return Event{
		ID:        generateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

// NewEventWithSession creates a new event with session context.
func NewEventWithSession(eventType EventType, source EventSource, payload map[string]any, sessionID string) Event {
	e := NewEvent(eventType, source, payload)
	e.SessionID = sessionID
	return e
}
