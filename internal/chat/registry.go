package chat

import (
	"sort"
	"sync"

	"github.com/dohr-michael/taskchat/internal/events"
)

// DefaultSessionID is used when a caller supplies no session identifier.
const DefaultSessionID = "default"

// Registry maps session identifiers to isolated orchestrators. It is
// injected wherever session access is needed; there is no package-level
// instance. Sessions are never evicted automatically.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Orchestrator
	build    func(sessionID string) *Orchestrator
	bus      *events.Bus
}

// NewRegistry creates a registry. build constructs a fresh orchestrator
// (own context and tool bindings) for a new session; bus is optional.
func NewRegistry(build func(sessionID string) *Orchestrator, bus *events.Bus) *Registry {
	return &Registry{
		sessions: make(map[string]*Orchestrator),
		build:    build,
		bus:      bus,
	}
}

// Get returns the orchestrator for id, creating it on first access.
// An empty id maps to DefaultSessionID.
func (r *Registry) Get(id string) *Orchestrator {
	if id == "" {
		id = DefaultSessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.sessions[id]; ok {
		return o
	}

	o := r.build(id)
	r.sessions[id] = o

	if r.bus != nil {
		r.bus.Publish(events.NewTypedEventWithSession(events.SourceChat, events.SessionPayload{SessionID: id}, id))
	}
	return o
}

// Clear resets the session's conversation context. Reports whether the
// session existed.
func (r *Registry) Clear(id string) bool {
	r.mu.Lock()
	o, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok {
		return false
	}
	o.Context().Clear()

	if r.bus != nil {
		r.bus.Publish(events.NewEventWithSession(events.EventSessionCleared, events.SourceChat, nil, id))
	}
	return true
}

// Remove deletes the session entirely. Reports whether it existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Sessions returns all live session identifiers, sorted.
func (r *Registry) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
