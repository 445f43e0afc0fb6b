package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dohr-michael/taskchat/internal/agent"
	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/tasks"
)

// Reply is the structured result of processing one message. Every
// failure path still produces a Reply; Success=false flags operational
// failures, extraction misses stay invisible.
type Reply struct {
	Response      string        `json:"response"`
	DisplayItems  []DisplayItem `json:"data_to_show"`
	DisplayFormat string        `json:"data_format,omitempty"`
	Success       bool          `json:"success"`
	ContextLength int           `json:"context_length"`
}

// Orchestrator processes messages for one session. A mutex serializes
// processing: at most one in-flight message per session.
type Orchestrator struct {
	mu        sync.Mutex
	sessionID string
	context   *ConversationContext
	invoker   Invoker
	extractor Extractor
	store     tasks.Store
	bus       *events.Bus
	logger    *slog.Logger
	listLimit int
}

// OrchestratorConfig wires an Orchestrator. Context must be the same
// instance bound to the session's resolver so tie-break sees the
// current last-mentioned task.
type OrchestratorConfig struct {
	SessionID string
	Context   *ConversationContext
	Invoker   Invoker
	Extractor Extractor // defaults to BraceScanExtractor
	Store     tasks.Store
	Bus       *events.Bus // optional
	Logger    *slog.Logger
	ListLimit int // intent-fallback page size (default 20)
}

// NewOrchestrator creates a session orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	if cfg.Context == nil {
		cfg.Context = NewConversationContext(0)
	}
	if cfg.Extractor == nil {
		cfg.Extractor = BraceScanExtractor{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 20
	}
	return &Orchestrator{
		sessionID: cfg.SessionID,
		context:   cfg.Context,
		invoker:   cfg.Invoker,
		extractor: cfg.Extractor,
		store:     cfg.Store,
		bus:       cfg.Bus,
		logger:    cfg.Logger,
		listLimit: cfg.ListLimit,
	}
}

// Context returns the session's conversation context.
func (o *Orchestrator) Context() *ConversationContext { return o.context }

// ProcessMessage runs the full pipeline: record the user turn, invoke
// the model, extract payloads, format the reply, record the assistant
// turn. Upstream failures come back as an apologetic reply with
// Success=false and are still recorded into history.
func (o *Orchestrator) ProcessMessage(ctx context.Context, text string) *Reply {
	o.mu.Lock()
	defer o.mu.Unlock()

	ctx = events.ContextWithSessionID(ctx, o.sessionID)
	o.context.AddTurn("user", text, nil)

	turnContext := ""
	if last := o.context.LastMentioned(); last != nil {
		turnContext = agent.TaskContext(last.ID, last.Title, last.Status)
	}

	reply, fragments, err := o.invoker.Invoke(ctx, turnContext, o.context.Snapshot())
	if err != nil {
		o.logger.Error("model invocation failed", "session", o.sessionID, "error", err)
		errMsg := fmt.Sprintf("I encountered an error: %s", err.Error())
		o.context.AddTurn("assistant", errMsg, nil)
		return o.finish(&Reply{
			Response:      errMsg,
			DisplayItems:  []DisplayItem{},
			Success:       false,
			ContextLength: o.context.Len(),
		})
	}

	outcome := o.extractor.Extract(fragments)
	if outcome.Malformed > 0 {
		o.logger.Debug("discarded malformed payloads",
			"session", o.sessionID,
			"candidates", outcome.Candidates,
			"malformed", outcome.Malformed)
	}

	items := outcome.Items
	format := outcome.Format
	if len(items) == 0 && DetectListIntent(text) {
		items, format = o.listFallback(ctx)
	}
	if items == nil {
		items = []DisplayItem{}
	}

	formatted := FormatResponse(reply)
	o.context.AddTurn("assistant", formatted, outcome.TaskRef)

	return o.finish(&Reply{
		Response:      formatted,
		DisplayItems:  items,
		DisplayFormat: format,
		Success:       true,
		ContextLength: o.context.Len(),
	})
}

// listFallback issues a direct list query when the user clearly asked
// to see tasks but no payload was extracted.
func (o *Orchestrator) listFallback(ctx context.Context) ([]DisplayItem, string) {
	if o.store == nil {
		return nil, ""
	}
	list, err := o.store.List(ctx, 0, o.listLimit, nil)
	if err != nil {
		o.logger.Warn("list fallback failed", "session", o.sessionID, "error", err)
		return nil, ""
	}
	if len(list) == 0 {
		return nil, ""
	}

	items := make([]DisplayItem, 0, len(list))
	for _, t := range list {
		data := map[string]any{
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"status":      string(t.Status),
			"priority":    string(t.Priority),
			"due_date":    t.DueDate,
			"created_at":  t.CreatedAt,
			"updated_at":  t.UpdatedAt,
		}
		items = append(items, DisplayItem{Kind: "task", Format: "table", Data: data})
	}
	return items, "table"
}

func (o *Orchestrator) finish(r *Reply) *Reply {
	if o.bus != nil {
		o.bus.Publish(events.NewTypedEventWithSession(events.SourceChat, events.ChatResponsePayload{
			Response:      r.Response,
			Success:       r.Success,
			DisplayFormat: r.DisplayFormat,
			ItemCount:     len(r.DisplayItems),
			ContextLength: r.ContextLength,
		}, o.sessionID))
	}
	return r
}

// ContextSummary reports the session's context state.
type ContextSummary struct {
	MessageCount   int    `json:"message_count"`
	RecentMessages []Turn `json:"recent_messages"`
	MaxHistory     int    `json:"max_history"`
}

// Summary returns a snapshot of the conversation state.
func (o *Orchestrator) Summary() ContextSummary {
	recent := o.context.Recent(3)
	if recent == nil {
		recent = []Turn{}
	}
	return ContextSummary{
		MessageCount:   o.context.Len(),
		RecentMessages: recent,
		MaxHistory:     o.context.MaxHistory(),
	}
}
