// Package ws bridges the event bus to WebSocket clients and accepts
// chat requests over the same connection.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/dohr-michael/taskchat/internal/events"
)

// Handlers are the application callbacks a Hub dispatches requests to.
type Handlers struct {
	// ProcessMessage runs one chat turn and returns the reply payload.
	ProcessMessage func(ctx context.Context, sessionID, message string) (any, error)
	// ClearSession resets a session's conversation context.
	ClearSession func(sessionID string) bool
	// ListTasks returns the current task snapshot for task frames.
	ListTasks func(ctx context.Context) (any, error)
}

// Client represents a connected WebSocket client. Each connection gets
// its own session; requests may override it with an explicit session_id.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	hub       *Hub
	sessionID string
}

// Hub manages WebSocket clients and bridges them to the event bus.
// Every chat.response, task.changed, task.due and session event is
// broadcast to all connected clients as an event frame.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	bus         *events.Bus
	handlers    Handlers
	unsubscribe func()
}

// NewHub creates a hub connected to an event bus.
func NewHub(bus *events.Bus, handlers Handlers) *Hub {
	h := &Hub{
		clients:  make(map[*Client]struct{}),
		bus:      bus,
		handlers: handlers,
	}

	h.unsubscribe = bus.Subscribe(func(e events.Event) {
		frame, err := NewEventFrame(string(e.Type), e.SessionID, e.Payload)
		if err != nil {
			slog.Error("marshal event frame", "error", err)
			return
		}
		data, err := MarshalFrame(frame)
		if err != nil {
			slog.Error("marshal frame", "error", err)
			return
		}
		h.broadcast(data)
	},
		events.EventChatResponse,
		events.EventTaskChanged,
		events.EventTaskDue,
		events.EventSessionCreated,
		events.EventSessionCleared,
	)

	return h
}

// broadcast sends data to all connected clients.
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Info("ws client connected", "clients", len(h.clients))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Info("ws client disconnected", "clients", len(h.clients))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS handles a WebSocket upgrade and manages the client lifecycle.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow any origin for dev
	})
	if err != nil {
		slog.Error("ws accept", "error", err)
		return
	}

	client := &Client{
		conn:      conn,
		send:      make(chan []byte, 256),
		hub:       h,
		sessionID: "sess_" + uuid.NewString(),
	}

	h.register(client)

	ctx := r.Context()
	go client.writePump(ctx)
	client.readPump(ctx)
}

// readPump reads frames from the WS connection and dispatches them.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("ws read closed", "status", websocket.CloseStatus(err))
			} else {
				slog.Debug("ws read error", "error", err)
			}
			return
		}

		frame, err := UnmarshalFrame(data)
		if err != nil {
			slog.Error("ws unmarshal frame", "error", err)
			continue
		}

		if frame.Type == FrameTypeRequest {
			c.handleRequest(ctx, frame)
		} else {
			slog.Debug("ws unknown frame type", "type", frame.Type)
		}
	}
}

// handleRequest processes a request frame (method dispatch).
func (c *Client) handleRequest(ctx context.Context, frame Frame) {
	switch Method(frame.Method) {
	case MethodSendMessage:
		var params struct {
			Message   string `json:"message"`
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(frame.Params, &params); err != nil {
			c.sendError(frame.ID, "invalid params")
			return
		}
		if params.Message == "" {
			c.sendError(frame.ID, "message is required")
			return
		}
		if c.hub.handlers.ProcessMessage == nil {
			c.sendError(frame.ID, "chat not available")
			return
		}
		if params.SessionID == "" {
			params.SessionID = c.sessionID
		}

		reply, err := c.hub.handlers.ProcessMessage(ctx, params.SessionID, params.Message)
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, reply)

	case MethodClearSession:
		var params struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal(frame.Params, &params); err != nil {
			c.sendError(frame.ID, "invalid params")
			return
		}
		if c.hub.handlers.ClearSession == nil {
			c.sendError(frame.ID, "sessions not available")
			return
		}
		if params.SessionID == "" {
			params.SessionID = c.sessionID
		}
		cleared := c.hub.handlers.ClearSession(params.SessionID)
		c.sendOK(frame.ID, map[string]bool{"cleared": cleared})

	case MethodListTasks:
		if c.hub.handlers.ListTasks == nil {
			c.sendError(frame.ID, "tasks not available")
			return
		}
		snapshot, err := c.hub.handlers.ListTasks(ctx)
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, snapshot)

	case MethodPing:
		c.sendOK(frame.ID, map[string]string{"status": "pong"})

	default:
		c.sendError(frame.ID, "unknown method: "+frame.Method)
	}
}

// writePump writes queued messages to the WS connection.
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendOK(id string, payload any) {
	f, err := NewResponseFrame(id, true, payload, "")
	if err != nil {
		return
	}
	data, err := MarshalFrame(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(id string, errMsg string) {
	f, err := NewResponseFrame(id, false, nil, errMsg)
	if err != nil {
		return
	}
	data, err := MarshalFrame(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Close shuts down the hub and all client connections.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutdown")
		delete(h.clients, c)
	}
}
