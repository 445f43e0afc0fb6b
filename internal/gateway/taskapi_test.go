package gateway

import (
	"fmt"
	"net/http"
	"testing"
)

func createTestTask(t *testing.T, srv *Server, body string) map[string]any {
	t.Helper()
	w := doRequest(t, srv, http.MethodPost, "/api/tasks/", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed with %d: %s", w.Code, w.Body.String())
	}
	return decodeBody[map[string]any](t, w)
}

func TestTaskCreate(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	task := createTestTask(t, srv, `{"title": "Buy milk", "priority": "high", "due_date": "2026-09-01"}`)

	if task["title"] != "Buy milk" {
		t.Errorf("unexpected title: %v", task["title"])
	}
	if task["status"] != "pending" {
		t.Errorf("expected default status pending, got %v", task["status"])
	}
	if task["priority"] != "high" {
		t.Errorf("unexpected priority: %v", task["priority"])
	}
	if task["due_date"] == nil {
		t.Error("expected due_date set")
	}
}

func TestTaskCreate_Invalid(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"description": "no title"}`},
		{"bad status", `{"title": "x", "status": "archived"}`},
		{"bad priority", `{"title": "x", "priority": "extreme"}`},
		{"bad date", `{"title": "x", "due_date": "next month"}`},
		{"broken json", `{broken`},
	}
	for _, tt := range tests {
		w := doRequest(t, srv, http.MethodPost, "/api/tasks/", tt.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tt.name, w.Code)
		}
	}
}

func TestTaskQuickAdd(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodPost, "/api/tasks/quick", `{"text": "submit the urgent report tomorrow"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	task := decodeBody[map[string]any](t, w)

	if task["title"] != "submit the urgent report" {
		t.Errorf("unexpected title: %v", task["title"])
	}
	if task["priority"] != "high" {
		t.Errorf("expected high priority from wording, got %v", task["priority"])
	}
	if task["due_date"] == nil {
		t.Error("expected due_date from date phrase")
	}
}

func TestTaskQuickAdd_PlainText(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodPost, "/api/tasks/quick", `{"text": "water the plants"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	task := decodeBody[map[string]any](t, w)

	if task["title"] != "water the plants" {
		t.Errorf("unexpected title: %v", task["title"])
	}
	if task["priority"] != "medium" {
		t.Errorf("expected default medium priority, got %v", task["priority"])
	}
	if task["due_date"] != nil {
		t.Errorf("expected no due_date, got %v", task["due_date"])
	}
}

func TestTaskQuickAdd_Empty(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodPost, "/api/tasks/quick", `{"text": "   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTaskGet(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	created := createTestTask(t, srv, `{"title": "Buy milk"}`)
	id := int64(created["id"].(float64))

	w := doRequest(t, srv, http.MethodGet, fmt.Sprintf("/api/tasks/%d", id), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	task := decodeBody[map[string]any](t, w)
	if task["title"] != "Buy milk" {
		t.Errorf("unexpected task: %v", task)
	}
}

func TestTaskGet_NotFound(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	w := doRequest(t, srv, http.MethodGet, "/api/tasks/999", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/tasks/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
}

func TestTaskList(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	createTestTask(t, srv, `{"title": "first"}`)
	createTestTask(t, srv, `{"title": "second"}`)

	w := doRequest(t, srv, http.MethodGet, "/api/tasks/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	list := decodeBody[[]map[string]any](t, w)
	if len(list) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(list))
	}
	if list[0]["title"] != "second" {
		t.Errorf("expected newest first, got %v", list[0]["title"])
	}

	w = doRequest(t, srv, http.MethodGet, "/api/tasks/?limit=1&skip=1", "")
	list = decodeBody[[]map[string]any](t, w)
	if len(list) != 1 || list[0]["title"] != "first" {
		t.Errorf("unexpected page: %v", list)
	}
}

func TestTaskFilter(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	createTestTask(t, srv, `{"title": "urgent thing", "priority": "high"}`)
	createTestTask(t, srv, `{"title": "someday", "priority": "low"}`)
	createTestTask(t, srv, `{"title": "finished", "status": "done"}`)

	w := doRequest(t, srv, http.MethodGet, "/api/tasks/filter?priority=high", "")
	list := decodeBody[[]map[string]any](t, w)
	if len(list) != 1 || list[0]["title"] != "urgent thing" {
		t.Errorf("unexpected filter result: %v", list)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/tasks/filter?status=done", "")
	list = decodeBody[[]map[string]any](t, w)
	if len(list) != 1 || list[0]["title"] != "finished" {
		t.Errorf("unexpected filter result: %v", list)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/tasks/filter?status=archived", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodGet, "/api/tasks/filter?due_before=not-a-date", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestTaskCount(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	createTestTask(t, srv, `{"title": "a"}`)
	createTestTask(t, srv, `{"title": "b", "status": "done"}`)

	w := doRequest(t, srv, http.MethodGet, "/api/tasks/count", "")
	body := decodeBody[map[string]int](t, w)
	if body["count"] != 2 {
		t.Errorf("expected count 2, got %d", body["count"])
	}

	w = doRequest(t, srv, http.MethodGet, "/api/tasks/count?status=done", "")
	body = decodeBody[map[string]int](t, w)
	if body["count"] != 1 {
		t.Errorf("expected count 1, got %d", body["count"])
	}
}

func TestTaskUpdate(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	created := createTestTask(t, srv, `{"title": "Buy milk", "due_date": "2026-09-01"}`)
	id := int64(created["id"].(float64))

	w := doRequest(t, srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), `{"status": "done", "priority": "low"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	task := decodeBody[map[string]any](t, w)
	if task["status"] != "done" || task["priority"] != "low" {
		t.Errorf("unexpected task: %v", task)
	}

	// Empty due_date clears the deadline.
	w = doRequest(t, srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), `{"due_date": ""}`)
	task = decodeBody[map[string]any](t, w)
	if task["due_date"] != nil {
		t.Errorf("expected cleared due date, got %v", task["due_date"])
	}
}

func TestTaskUpdate_Errors(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	created := createTestTask(t, srv, `{"title": "Buy milk"}`)
	id := int64(created["id"].(float64))

	w := doRequest(t, srv, http.MethodPut, "/api/tasks/999", `{"status": "done"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty update, got %d", w.Code)
	}

	w = doRequest(t, srv, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), `{"status": "archived"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad status, got %d", w.Code)
	}
}

func TestTaskDelete(t *testing.T) {
	srv := newTestServer(t)
	defer srv.hub.Close()

	created := createTestTask(t, srv, `{"title": "Buy milk"}`)
	id := int64(created["id"].(float64))

	w := doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody[map[string]string](t, w)
	if body["message"] != "Task deleted successfully" {
		t.Errorf("unexpected message: %q", body["message"])
	}

	w = doRequest(t, srv, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", w.Code)
	}
}
