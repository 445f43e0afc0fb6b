// Package gateway exposes the chat orchestrator and the task store
// over HTTP and WebSocket.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/taskchat/internal/chat"
	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/gateway/ws"
	"github.com/dohr-michael/taskchat/internal/tasks"
)

// broadcastListLimit bounds the task snapshot attached to chat replies.
const broadcastListLimit = 100

// Server is the taskchat gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	bus        *events.Bus
	registry   *chat.Registry
	store      tasks.Store
	logger     *slog.Logger
}

// Config wires a gateway Server.
type Config struct {
	Registry *chat.Registry
	Store    tasks.Store
	Bus      *events.Bus
	Logger   *slog.Logger
	Host     string
	Port     int
}

// NewServer creates a gateway server with all routes registered.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		bus:      cfg.Bus,
		registry: cfg.Registry,
		store:    cfg.Store,
		logger:   cfg.Logger,
	}

	s.hub = ws.NewHub(cfg.Bus, ws.Handlers{
		ProcessMessage: func(ctx context.Context, sessionID, message string) (any, error) {
			return s.processChat(ctx, sessionID, message), nil
		},
		ClearSession: cfg.Registry.Clear,
		ListTasks: func(ctx context.Context) (any, error) {
			list, err := s.store.List(ctx, 0, broadcastListLimit, nil)
			if err != nil {
				return nil, err
			}
			return map[string]any{"tasks": taskList(list)}, nil
		},
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ws", s.hub.ServeWS)
	r.Get("/api/events", s.handleEvents)

	r.Post("/api/chat", s.handleChat)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleSessions)
		r.Post("/{id}/clear", s.handleSessionClear)
		r.Delete("/{id}", s.handleSessionRemove)
		r.Get("/{id}/context", s.handleSessionContext)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Post("/", s.handleTaskCreate)
		r.Post("/quick", s.handleTaskQuickAdd)
		r.Get("/", s.handleTaskList)
		r.Get("/filter", s.handleTaskFilter)
		r.Get("/count", s.handleTaskCount)
		r.Get("/{id}", s.handleTaskGet)
		r.Put("/{id}", s.handleTaskUpdate)
		r.Delete("/{id}", s.handleTaskDelete)
	})

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: r,
	}

	return s
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("taskchat gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"ws_clients": s.hub.ClientCount(),
		"sessions":   len(s.registry.Sessions()),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		fmt.Sscanf(limitStr, "%d", &limit)
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID        string             `json:"id"`
		SessionID string             `json:"session_id,omitempty"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:        e.ID,
			SessionID: e.SessionID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// chatResponse is the chat reply plus a snapshot of all tasks so
// clients can refresh their board without a second request.
type chatResponse struct {
	*chat.Reply
	SessionID   string           `json:"session_id"`
	TaskUpdates []map[string]any `json:"task_updates"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	writeJSON(w, http.StatusOK, s.processChat(r.Context(), req.SessionID, req.Message))
}

func (s *Server) processChat(ctx context.Context, sessionID, message string) *chatResponse {
	if sessionID == "" {
		sessionID = chat.DefaultSessionID
	}

	reply := s.registry.Get(sessionID).ProcessMessage(ctx, message)

	updates := []map[string]any{}
	if list, err := s.store.List(ctx, 0, broadcastListLimit, nil); err == nil {
		updates = taskList(list)
	} else {
		s.logger.Warn("task snapshot failed", "error", err)
	}

	return &chatResponse{Reply: reply, SessionID: sessionID, TaskUpdates: updates}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.registry.Sessions()})
}

func (s *Server) handleSessionClear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.registry.Clear(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session context cleared"})
}

func (s *Server) handleSessionRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.registry.Remove(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session removed"})
}

func (s *Server) handleSessionContext(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found := false
	for _, sid := range s.registry.Sessions() {
		if sid == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, s.registry.Get(id).Summary())
}

// taskList renders tasks for wire transport with ISO-8601 dates.
func taskList(list []*tasks.Task) []map[string]any {
	result := make([]map[string]any, 0, len(list))
	for _, t := range list {
		result = append(result, taskJSON(t))
	}
	return result
}

func taskJSON(t *tasks.Task) map[string]any {
	m := map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"due_date":    nil,
		"created_at":  t.CreatedAt.Format(time.RFC3339),
		"updated_at":  t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		m["due_date"] = t.DueDate.Format(time.RFC3339)
	}
	return m
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
