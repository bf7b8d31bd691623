package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/collab-code-pad/backend/internal/store"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway is the public entry point for collaboration connections. It
// validates session existence, upgrades the connection and owns the
// receive loop lifetime.
type Gateway struct {
	store    *store.SessionStore
	presence *PresenceTracker
	hub      *Hub
}

// NewGateway creates a gateway over the given store.
func NewGateway(sessions *store.SessionStore) *Gateway {
	presence := NewPresenceTracker()
	return &Gateway{
		store:    sessions,
		presence: presence,
		hub:      NewHub(presence),
	}
}

// Hub returns the broadcast hub.
func (g *Gateway) Hub() *Hub {
	return g.hub
}

// Presence returns the presence tracker.
func (g *Gateway) Presence() *PresenceTracker {
	return g.presence
}

// HandleConnection upgrades the HTTP request for the given session and
// services it until disconnect. Unknown sessions are rejected with a
// policy-violation closure and no channel state is created.
func (g *Gateway) HandleConnection(w http.ResponseWriter, r *http.Request, sessionID string) error {
	_, exists := g.store.Get(sessionID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	if !exists {
		deadline := time.Now().Add(writeWait)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "Session not found"),
			deadline)
		conn.Close()
		log.Warn().Str("sessionId", sessionID).Msg("rejected connection for unknown session")
		return nil
	}

	client := NewClient(conn, sessionID)
	g.presence.Add(sessionID, client)

	channel := NewChannel(client, sessionID, g.store, g.hub)
	if err := channel.Welcome(); err != nil {
		channel.Cleanup()
		conn.Close()
		return nil
	}

	go g.writePump(client)
	g.readLoop(client, channel)

	return nil
}

// readLoop pumps inbound messages into the channel until the peer goes
// away. Unexpected faults take the same cleanup path as a disconnect and
// are never propagated to other connections.
func (g *Gateway) readLoop(client *Client, channel *Channel) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("sessionId", client.SessionID()).
				Msg("receive loop fault")
		}
		channel.Cleanup()
		client.Conn().Close()
	}()

	conn := client.Conn()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).
					Str("sessionId", client.SessionID()).
					Msg("websocket read error")
			}
			return
		}
		channel.HandleMessage(message)
	}
}

// writePump pumps queued messages to the WebSocket connection, sending each
// in its own frame, and keeps the connection alive with periodic pings.
func (g *Gateway) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn().Close()
	}()

	for {
		select {
		case message, ok := <-client.SendChan():
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn().WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn().WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			n := len(client.SendChan())
			for i := 0; i < n; i++ {
				queued, ok := <-client.SendChan()
				if !ok {
					return
				}
				client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.Conn().WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}
		case <-ticker.C:
			client.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn().WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SetCheckOrigin sets a custom origin checker for the WebSocket upgrader.
func SetCheckOrigin(fn func(r *http.Request) bool) {
	upgrader.CheckOrigin = fn
}
