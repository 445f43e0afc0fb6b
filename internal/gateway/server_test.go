package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/taskchat/internal/chat"
	"github.com/dohr-michael/taskchat/internal/events"
	"github.com/dohr-michael/taskchat/internal/tasks"
)

// stubInvoker returns a canned reply without touching a model.
type stubInvoker struct {
	reply     string
	fragments []string
	err       error
}

func (s *stubInvoker) Invoke(ctx context.Context, turnContext string, history []*schema.Message) (string, []string, error) {
	return s.reply, s.fragments, s.err
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	bus := events.NewBus(64)
	t.Cleanup(bus.Close)

	store, err := tasks.NewSQLStore(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	registry := chat.NewRegistry(func(sessionID string) *chat.Orchestrator {
		return chat.NewOrchestrator(chat.OrchestratorConfig{
			SessionID: sessionID,
			Context:   chat.NewConversationContext(10),
			Invoker:   &stubInvoker{reply: "Happy to help with your tasks."},
			Store:     store,
			Bus:       bus,
		})
	}, bus)

	return NewServer(Config{
		Registry: registry,
		Store:    store,
		Bus:      bus,
		Host:     "localhost",
		Port:     0,
	})
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decodeBody[map[string]any](t, w)
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestHandleChat(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodPost, "/api/chat", `{"message": "hello there"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody[map[string]any](t, w)
	if body["response"] != "Happy to help with your tasks." {
		t.Errorf("unexpected response: %v", body["response"])
	}
	if body["session_id"] != chat.DefaultSessionID {
		t.Errorf("expected default session, got %v", body["session_id"])
	}
	if body["success"] != true {
		t.Errorf("expected success, got %v", body["success"])
	}
	if _, ok := body["task_updates"].([]any); !ok {
		t.Errorf("expected task_updates array, got %T", body["task_updates"])
	}
}

func TestHandleChat_MessageRequired(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodPost, "/api/chat", `{"session_id": "abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	body := decodeBody[map[string]string](t, w)
	if body["error"] != "message is required" {
		t.Errorf("unexpected error: %q", body["error"])
	}
}

func TestHandleChat_InvalidJSON(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodPost, "/api/chat", `{broken`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHandleChat_IsolatesSessions(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	doRequest(t, srv, http.MethodPost, "/api/chat", `{"message": "hello", "session_id": "alpha"}`)
	doRequest(t, srv, http.MethodPost, "/api/chat", `{"message": "hello", "session_id": "beta"}`)

	sessions := srv.registry.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %v", sessions)
	}
}

func TestHandleSessions_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	doRequest(t, srv, http.MethodPost, "/api/chat", `{"message": "hello", "session_id": "alpha"}`)

	w := doRequest(t, srv, http.MethodGet, "/api/sessions/", "")
	body := decodeBody[map[string][]string](t, w)
	if len(body["sessions"]) != 1 || body["sessions"][0] != "alpha" {
		t.Fatalf("unexpected sessions: %v", body)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/sessions/alpha/context", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	summary := decodeBody[map[string]any](t, w)
	if summary["message_count"] != float64(2) {
		t.Errorf("expected 2 messages, got %v", summary["message_count"])
	}

	w = doRequest(t, srv, http.MethodPost, "/api/sessions/alpha/clear", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/sessions/alpha/context", "")
	summary = decodeBody[map[string]any](t, w)
	if summary["message_count"] != float64(0) {
		t.Errorf("expected cleared context, got %v", summary["message_count"])
	}

	w = doRequest(t, srv, http.MethodDelete, "/api/sessions/alpha", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodDelete, "/api/sessions/alpha", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after removal, got %d", w.Code)
	}
}

func TestHandleSessionClear_Unknown(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodPost, "/api/sessions/ghost/clear", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleEvents(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodGet, "/api/events", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decodeBody[[]map[string]any](t, w)
	if len(body) != 0 {
		t.Fatalf("expected empty history, got %d", len(body))
	}
}
