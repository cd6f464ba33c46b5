package hub

import (
	"sync"

	"github.com/E-LOVE-APP/chat-service/pkg/log"
)

// Registry tracks which live sessions are subscribed to which conversation.
// It is a pure synchronization primitive: operations never fail and never
// perform I/O. Register and Unregister are idempotent per session instance.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Session]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subscribers: make(map[string]map[*Session]struct{}),
	}
}

// Register adds a session to a conversation's subscriber set.
// Registering the same session twice is a no-op.
func (r *Registry) Register(conversationID string, s *Session) {
	r.mu.Lock()
	set, ok := r.subscribers[conversationID]
	if !ok {
		set = make(map[*Session]struct{})
		r.subscribers[conversationID] = set
	}
	set[s] = struct{}{}
	r.mu.Unlock()

	lg := log.L()
	lg.Debug().
		Str(log.FieldSessionID, s.ID).
		Str(log.FieldConversationID, conversationID).
		Msg("session registered")
}

// Unregister removes a session from a conversation's subscriber set.
// Safe to call multiple times; removal happens at most once.
func (r *Registry) Unregister(conversationID string, s *Session) {
	r.mu.Lock()
	removed := false
	if set, ok := r.subscribers[conversationID]; ok {
		if _, member := set[s]; member {
			delete(set, s)
			removed = true
		}
		if len(set) == 0 {
			delete(r.subscribers, conversationID)
		}
	}
	r.mu.Unlock()

	if removed {
		lg := log.L()
		lg.Debug().
			Str(log.FieldSessionID, s.ID).
			Str(log.FieldConversationID, conversationID).
			Msg("session unregistered")
	}
}

// SubscribersOf returns a point-in-time snapshot of the sessions subscribed
// to a conversation. The returned slice is owned by the caller.
func (r *Registry) SubscribersOf(conversationID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.subscribers[conversationID]
	if !ok {
		return nil
	}
	snapshot := make([]*Session, 0, len(set))
	for s := range set {
		snapshot = append(snapshot, s)
	}
	return snapshot
}

// Count returns the number of sessions subscribed to a conversation.
func (r *Registry) Count(conversationID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers[conversationID])
}
