package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := NewSQLStore(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreate(t *testing.T, s *SQLStore, params CreateParams) *Task {
	t.Helper()
	if err := params.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	task, err := s.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return task
}

func TestSQLStore_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due := time.Date(2025, 9, 25, 23, 59, 59, 0, time.UTC)
	created := mustCreate(t, s, CreateParams{Title: "Buy milk", Description: "2 liters", DueDate: &due})

	if created.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	if created.Status != StatusPending || created.Priority != PriorityMedium {
		t.Errorf("defaults not applied: %q/%q", created.Status, created.Priority)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Buy milk" || got.Description != "2 liters" {
		t.Errorf("unexpected task: %+v", got)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due date mismatch: %v", got.DueDate)
	}
}

func TestSQLStore_GetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_GetByTitle_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := mustCreate(t, s, CreateParams{Title: "Buy milk"})

	got, err := s.GetByTitle(ctx, "BUY MILK")
	if err != nil {
		t.Fatalf("get by title: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, got.ID)
	}

	got, err = s.GetByTitle(ctx, "milk")
	if err != nil {
		t.Fatalf("substring lookup: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("substring lookup: expected id %d, got %d", created.ID, got.ID)
	}

	if _, err := s.GetByTitle(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_ListOrderAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// created_at has second precision in some drivers; IDs break ties, so
	// newest-first means highest ID first here.
	for _, title := range []string{"first", "second", "third"} {
		mustCreate(t, s, CreateParams{Title: title})
	}

	all, err := s.List(ctx, 0, 10, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	if all[0].Title != "third" || all[2].Title != "first" {
		t.Errorf("expected newest first, got %q..%q", all[0].Title, all[2].Title)
	}

	page, err := s.List(ctx, 1, 1, nil)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].Title != "second" {
		t.Errorf("paging: got %+v", page)
	}
}

func TestSQLStore_ListFiltered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	done := StatusDone
	a := mustCreate(t, s, CreateParams{Title: "done one"})
	if _, err := s.Update(ctx, a.ID, UpdateParams{Status: &done}); err != nil {
		t.Fatalf("update: %v", err)
	}
	mustCreate(t, s, CreateParams{Title: "pending one"})
	mustCreate(t, s, CreateParams{Title: "urgent", Priority: PriorityHigh})

	got, err := s.List(ctx, 0, 10, &Filter{Status: StatusDone})
	if err != nil {
		t.Fatalf("list done: %v", err)
	}
	if len(got) != 1 || got[0].Title != "done one" {
		t.Errorf("status filter: got %+v", got)
	}

	got, err = s.List(ctx, 0, 10, &Filter{Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("list high: %v", err)
	}
	if len(got) != 1 || got[0].Title != "urgent" {
		t.Errorf("priority filter: got %+v", got)
	}

	n, err := s.Count(ctx, &Filter{Status: StatusPending})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 pending, got %d", n)
	}
}

func TestSQLStore_ListDueWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	early := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)
	mustCreate(t, s, CreateParams{Title: "early", DueDate: &early})
	mustCreate(t, s, CreateParams{Title: "late", DueDate: &late})
	mustCreate(t, s, CreateParams{Title: "no due"})

	cut := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	got, err := s.List(ctx, 0, 10, &Filter{DueBefore: &cut})
	if err != nil {
		t.Fatalf("list due before: %v", err)
	}
	if len(got) != 1 || got[0].Title != "early" {
		t.Errorf("due_before filter: got %+v", got)
	}

	got, err = s.List(ctx, 0, 10, &Filter{DueAfter: &cut})
	if err != nil {
		t.Fatalf("list due after: %v", err)
	}
	if len(got) != 1 || got[0].Title != "late" {
		t.Errorf("due_after filter: got %+v", got)
	}
}

func TestSQLStore_Update(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := mustCreate(t, s, CreateParams{Title: "Buy milk"})

	title := "Buy oat milk"
	status := StatusDone
	updated, err := s.Update(ctx, task.ID, UpdateParams{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Buy oat milk" || updated.Status != StatusDone {
		t.Errorf("update not applied: %+v", updated)
	}

	if _, err := s.Update(ctx, 404, UpdateParams{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_ClearDue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	due := time.Now().UTC()
	task := mustCreate(t, s, CreateParams{Title: "dated", DueDate: &due})

	updated, err := s.Update(ctx, task.ID, UpdateParams{ClearDue: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", updated.DueDate)
	}
}

func TestSQLStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	task := mustCreate(t, s, CreateParams{Title: "to delete"})

	ok, err := s.Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Fatal("expected delete to report true")
	}

	ok, err = s.Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Fatal("expected second delete to report false")
	}

	if _, err := s.Get(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
