package ws

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Hub fans messages out to all live connections of a session. Delivery is
// best-effort per connection: a failed send marks that connection for
// pruning but never aborts delivery to the remaining peers.
type Hub struct {
	presence *PresenceTracker
}

// NewHub creates a hub over the given presence tracker.
func NewHub(presence *PresenceTracker) *Hub {
	return &Hub{presence: presence}
}

// Presence returns the tracker backing this hub.
func (h *Hub) Presence() *PresenceTracker {
	return h.presence
}

// Broadcast sends msg to every live connection of the session except
// exclude (which may be nil). Connections whose send fails are removed
// from presence as a batch after the fan-out pass.
func (h *Hub) Broadcast(sessionID string, msg *Message, exclude *Client) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).
			Str("sessionId", sessionID).
			Str("type", string(msg.Type)).
			Msg("failed to marshal broadcast message")
		return
	}

	var failed []*Client
	for _, client := range h.presence.Snapshot(sessionID) {
		if client == exclude {
			continue
		}
		if err := client.Send(data); err != nil {
			failed = append(failed, client)
		}
	}

	for _, client := range failed {
		h.presence.Remove(sessionID, client)
	}
	if len(failed) > 0 {
		log.Debug().
			Str("sessionId", sessionID).
			Int("pruned", len(failed)).
			Msg("pruned dead connections during broadcast")
	}
}
