package ws

import "sync"

// PresenceTracker maps sessions to their sets of live connections. It holds
// non-owning references: clients are created and closed by the gateway, and
// the tracker is pruned whenever a connection proves dead.
type PresenceTracker struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]bool
}

// NewPresenceTracker creates an empty PresenceTracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		sessions: make(map[string]map[*Client]bool),
	}
}

// Add registers a connection as live for a session.
func (p *PresenceTracker) Add(sessionID string, client *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sessions[sessionID] == nil {
		p.sessions[sessionID] = make(map[*Client]bool)
	}
	p.sessions[sessionID][client] = true
}

// Remove deregisters a connection. The per-session set is dropped entirely
// once it becomes empty. Removing an absent connection is a no-op.
func (p *PresenceTracker) Remove(sessionID string, client *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	clients, ok := p.sessions[sessionID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(p.sessions, sessionID)
	}
}

// Count returns the number of live connections for a session.
func (p *PresenceTracker) Count(sessionID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions[sessionID])
}

// Snapshot returns a momentarily-fixed copy of the connection set, so a
// broadcast never iterates a set being mutated by a concurrent join/leave.
func (p *PresenceTracker) Snapshot(sessionID string) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clients := p.sessions[sessionID]
	out := make([]*Client, 0, len(clients))
	for client := range clients {
		out = append(out, client)
	}
	return out
}
