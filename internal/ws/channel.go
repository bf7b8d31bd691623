package ws

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/collab-code-pad/backend/internal/model"
	"github.com/collab-code-pad/backend/internal/store"
)

const anonymousName = "Anonymous User"

var emptyPayload = json.RawMessage("{}")

// Channel is the per-connection protocol handler for one collaboration
// session. It runs the welcome handshake, dispatches inbound messages,
// mutates the store as a side effect and triggers hub fan-out.
//
// A channel starts anonymous; the first join message identifies it. Only
// identified channels have a roster entry to remove on disconnect.
type Channel struct {
	client    *Client
	sessionID string
	store     *store.SessionStore
	hub       *Hub

	userID string
	joined bool
}

// NewChannel creates a channel for a freshly accepted connection.
func NewChannel(client *Client, sessionID string, sessions *store.SessionStore, hub *Hub) *Channel {
	return &Channel{
		client:    client,
		sessionID: sessionID,
		store:     sessions,
		hub:       hub,
	}
}

// Welcome sends the handshake message: session id, current code, current
// language and the roster snapshotted at this instant. The connection is
// registered in presence but carries no roster entry yet.
func (ch *Channel) Welcome() error {
	code, ok := ch.store.GetCode(ch.sessionID)
	if !ok {
		return model.ErrSessionNotFound
	}

	roster, _ := ch.store.ListParticipants(ch.sessionID)
	participants := make([]WelcomeParticipant, 0, len(roster))
	for _, p := range roster {
		participants = append(participants, WelcomeParticipant{UserID: p.UserID, Name: p.Name})
	}

	return ch.client.SendMessage(NewMessage(MessageTypeWelcome, "", WelcomePayload{
		SessionID:    ch.sessionID,
		CurrentCode:  code.Code,
		Language:     code.Language,
		Participants: participants,
	}))
}

// HandleMessage dispatches one inbound message. Malformed messages and
// unrecognized types are ignored; the channel is never torn down for them.
func (ch *Channel) HandleMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().Err(err).
			Str("sessionId", ch.sessionID).
			Msg("ignoring unparsable message")
		return
	}

	switch msg.Type {
	case MessageTypeJoin:
		ch.handleJoin(&msg)
	case MessageTypePing:
		ch.handlePing()
	case MessageTypeCodeUpdate:
		ch.handleCodeUpdate(&msg)
	case MessageTypeCursorPosition:
		ch.handleCursorPosition(&msg)
	case MessageTypeLanguageChange:
		ch.handleLanguageChange(&msg)
	}
}

// handleJoin identifies the connection and registers its participant.
// Joining again with the same user id replaces the roster entry.
func (ch *Channel) handleJoin(msg *Message) {
	userID := msg.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	var payload JoinPayload
	if len(msg.Data) > 0 {
		_ = json.Unmarshal(msg.Data, &payload)
	}
	name := payload.Name
	if name == "" {
		name = anonymousName
	}

	if !ch.store.AddParticipant(ch.sessionID, userID, name) {
		return
	}
	ch.userID = userID
	ch.joined = true

	log.Info().
		Str("sessionId", ch.sessionID).
		Str("userId", userID).
		Str("name", name).
		Msg("participant joined")

	ch.hub.Broadcast(ch.sessionID, NewMessage(MessageTypeUserJoined, userID, UserJoinedPayload{
		Name:             name,
		ParticipantCount: ch.store.ParticipantCount(ch.sessionID),
	}), ch.client)
}

// handlePing replies to the sender only. No broadcast, no store mutation.
func (ch *Channel) handlePing() {
	_ = ch.client.SendMessage(NewMessage(MessageTypePong, "", nil))
}

// handleCodeUpdate persists the code if the payload carries a code field,
// empty or not, and relays the payload verbatim to all other connections
// either way.
func (ch *Channel) handleCodeUpdate(msg *Message) {
	userID := ch.effectiveUserID()

	var payload CodeUpdatePayload
	if len(msg.Data) > 0 && json.Unmarshal(msg.Data, &payload) == nil && payload.Code != nil {
		if session, ok := ch.store.Get(ch.sessionID); ok {
			ch.store.SaveCode(ch.sessionID, *payload.Code, session.Language, userID)
		}
	}

	out := NewMessage(MessageTypeCodeUpdate, userID, nil)
	out.Data = forwardedData(msg.Data)
	ch.hub.Broadcast(ch.sessionID, out, ch.client)
}

// handleCursorPosition relays the payload verbatim. No persistence.
func (ch *Channel) handleCursorPosition(msg *Message) {
	out := NewMessage(MessageTypeCursorPosition, ch.effectiveUserID(), nil)
	out.Data = forwardedData(msg.Data)
	ch.hub.Broadcast(ch.sessionID, out, ch.client)
}

// handleLanguageChange updates the session language and notifies peers.
// Payloads without a language are silently ignored. The language string is
// applied as-is; only the REST surface validates against the supported set.
func (ch *Channel) handleLanguageChange(msg *Message) {
	var payload LanguageChangePayload
	if len(msg.Data) > 0 {
		_ = json.Unmarshal(msg.Data, &payload)
	}
	if payload.Language == "" {
		return
	}

	language := model.Language(payload.Language)
	if !ch.store.UpdateLanguageRaw(ch.sessionID, language) {
		return
	}

	userID := ch.effectiveUserID()
	ch.store.AppendHistory(ch.sessionID, userID, model.ChangeTypeLanguageChange,
		store.DescribeLanguageChange(language), "")

	ch.hub.Broadcast(ch.sessionID, NewMessage(MessageTypeLanguageChanged, userID, LanguageChangedPayload{
		Language: payload.Language,
	}), ch.client)
}

// Cleanup releases the connection from presence and, if the channel had
// identified, removes its participant and notifies the remaining peers.
// Transport disconnects and internal faults both land here.
func (ch *Channel) Cleanup() {
	ch.hub.Presence().Remove(ch.sessionID, ch.client)
	ch.client.Close()

	if !ch.joined {
		return
	}

	ch.store.RemoveParticipant(ch.sessionID, ch.userID)

	log.Info().
		Str("sessionId", ch.sessionID).
		Str("userId", ch.userID).
		Msg("participant left")

	ch.hub.Broadcast(ch.sessionID, NewMessage(MessageTypeUserLeft, ch.userID, UserLeftPayload{
		ParticipantCount: ch.store.ParticipantCount(ch.sessionID),
	}), nil)
}

// effectiveUserID returns the joined user id, or a fresh generated one for
// connections that never identified.
func (ch *Channel) effectiveUserID() string {
	if ch.joined {
		return ch.userID
	}
	return uuid.New().String()
}

func forwardedData(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return emptyPayload
	}
	return data
}
