package chat

import (
	"context"
	"testing"
)

func newTestRegistry() *Registry {
	return NewRegistry(func(sessionID string) *Orchestrator {
		return NewOrchestrator(OrchestratorConfig{
			SessionID: sessionID,
			Context:   NewConversationContext(10),
			Invoker:   &stubInvoker{reply: "All done with that request."},
		})
	}, nil)
}

func TestRegistry_GetCreatesLazily(t *testing.T) {
	r := newTestRegistry()

	if len(r.Sessions()) != 0 {
		t.Fatal("expected empty registry")
	}

	a := r.Get("alpha")
	if a == nil {
		t.Fatal("expected orchestrator")
	}
	if r.Get("alpha") != a {
		t.Error("expected same instance on repeat access")
	}
	if b := r.Get("beta"); b == a {
		t.Error("expected distinct orchestrators per session")
	}
}

func TestRegistry_EmptyIDMapsToDefault(t *testing.T) {
	r := newTestRegistry()

	o := r.Get("")
	if o != r.Get(DefaultSessionID) {
		t.Error("empty id must map to the default session")
	}
	sessions := r.Sessions()
	if len(sessions) != 1 || sessions[0] != DefaultSessionID {
		t.Errorf("unexpected sessions: %v", sessions)
	}
}

func TestRegistry_ClearResetsContextKeepsSession(t *testing.T) {
	r := newTestRegistry()

	o := r.Get("alpha")
	o.ProcessMessage(context.Background(), "hello over there")
	if o.Context().Len() == 0 {
		t.Fatal("expected populated context")
	}

	if !r.Clear("alpha") {
		t.Fatal("expected clear to report existing session")
	}
	if o.Context().Len() != 0 {
		t.Error("expected context reset")
	}
	if r.Get("alpha") != o {
		t.Error("clear must keep the session alive")
	}

	if r.Clear("missing") {
		t.Error("expected false for unknown session")
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := newTestRegistry()

	first := r.Get("alpha")
	if !r.Remove("alpha") {
		t.Fatal("expected remove to report existing session")
	}
	if r.Remove("alpha") {
		t.Error("expected false on repeat removal")
	}
	if r.Get("alpha") == first {
		t.Error("expected a fresh orchestrator after removal")
	}
}

func TestRegistry_SessionsSorted(t *testing.T) {
	r := newTestRegistry()
	for _, id := range []string{"zulu", "alpha", "mike"} {
		r.Get(id)
	}

	sessions := r.Sessions()
	want := []string{"alpha", "mike", "zulu"}
	if len(sessions) != len(want) {
		t.Fatalf("expected %d sessions, got %d", len(want), len(sessions))
	}
	for i := range want {
		if sessions[i] != want[i] {
			t.Errorf("session %d: got %q, want %q", i, sessions[i], want[i])
		}
	}
}
