// Package chat implements the conversational orchestration layer:
// per-session context, payload extraction, response formatting, and the
// message processing pipeline.
package chat

import (
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
)

// TaskRef is a snapshot of a task captured at the time of a turn. It is
// a weak reference: the store owns the task, this only caches fields
// for anaphora resolution.
type TaskRef struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Turn is one entry in the conversation log.
type Turn struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"content"`
	Task *TaskRef  `json:"task_info,omitempty"`
	At   time.Time `json:"timestamp"`
}

// ConversationContext keeps a bounded turn log plus the last-mentioned
// task pointer. The pointer is tracked independently of the log: it
// survives trimming of older turns.
type ConversationContext struct {
	mu            sync.Mutex
	turns         []Turn
	maxHistory    int
	lastMentioned *TaskRef
}

// NewConversationContext creates a context bounded to maxHistory turns.
func NewConversationContext(maxHistory int) *ConversationContext {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return &ConversationContext{maxHistory: maxHistory}
}

// AddTurn appends a turn, trims the log to the most recent maxHistory
// entries, and updates the last-mentioned task iff ref carries a title.
func (c *ConversationContext) AddTurn(role, text string, ref *TaskRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, Turn{Role: role, Text: text, Task: ref, At: time.Now()})

	if ref != nil && ref.Title != "" {
		r := *ref
		c.lastMentioned = &r
	}

	if len(c.turns) > c.maxHistory {
		c.turns = append(c.turns[:0:0], c.turns[len(c.turns)-c.maxHistory:]...)
	}
}

// Snapshot translates the turn log into priming messages for the next
// model call. Only user and assistant turns are included.
func (c *ConversationContext) Snapshot() []*schema.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*schema.Message, 0, len(c.turns))
	for _, t := range c.turns {
		switch t.Role {
		case "user":
			out = append(out, &schema.Message{Role: schema.User, Content: t.Text})
		case "assistant":
			out = append(out, &schema.Message{Role: schema.Assistant, Content: t.Text})
		}
	}
	return out
}

// Recent returns copies of the most recent n turns in order.
func (c *ConversationContext) Recent(n int) []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n > len(c.turns) {
		n = len(c.turns)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Turn, n)
	copy(out, c.turns[len(c.turns)-n:])
	return out
}

// Len returns the number of turns currently in the log.
func (c *ConversationContext) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

// MaxHistory returns the configured bound.
func (c *ConversationContext) MaxHistory() int { return c.maxHistory }

// LastMentioned returns a copy of the last-mentioned task, or nil.
func (c *ConversationContext) LastMentioned() *TaskRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastMentioned == nil {
		return nil
	}
	r := *c.lastMentioned
	return &r
}

// LastMentionedID reports the last-mentioned task ID, 0 when none.
// Satisfies the resolver's tie-break hook.
func (c *ConversationContext) LastMentionedID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastMentioned == nil {
		return 0
	}
	return c.lastMentioned.ID
}

// Clear empties the log and the last-mentioned pointer.
func (c *ConversationContext) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	c.lastMentioned = nil
}
