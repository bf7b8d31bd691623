package ws

import (
	"encoding/json"
	"time"

	"github.com/collab-code-pad/backend/internal/model"
)

// MessageType represents the type of a collaboration message.
type MessageType string

const (
	// Client -> Server message types
	MessageTypeJoin           MessageType = "join"
	MessageTypePing           MessageType = "ping"
	MessageTypeCodeUpdate     MessageType = "code-update"
	MessageTypeCursorPosition MessageType = "cursor-position"
	MessageTypeLanguageChange MessageType = "language-change"

	// Server -> Client message types
	MessageTypeWelcome         MessageType = "welcome"
	MessageTypeUserJoined      MessageType = "user-joined"
	MessageTypeUserLeft        MessageType = "user-left"
	MessageTypePong            MessageType = "pong"
	MessageTypeLanguageChanged MessageType = "language-changed"
)

// Message is the wire envelope for all collaboration messages. Data holds a
// type-specific payload; decoding of the payload is deferred until the type
// is known. Timestamp is the creation time of the message, not send time.
type Message struct {
	Type      MessageType     `json:"type"`
	UserID    string          `json:"userId,omitempty"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates an outbound message, stamping it with the current time.
// A nil payload leaves Data empty; marshal failures of caller-built payloads
// do not occur for the payload types used here.
func NewMessage(msgType MessageType, userID string, payload interface{}) *Message {
	msg := &Message{
		Type:      msgType,
		UserID:    userID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			msg.Data = data
		}
	}
	return msg
}

// JoinPayload carries the display name of a joining user.
type JoinPayload struct {
	Name string `json:"name"`
}

// CodeUpdatePayload carries an edited code text. Code is a pointer so a
// present-but-empty code field (a cleared editor) is distinguishable from
// a payload without one.
type CodeUpdatePayload struct {
	Code *string `json:"code"`
}

// LanguageChangePayload carries a requested language switch.
type LanguageChangePayload struct {
	Language string `json:"language"`
}

// WelcomeParticipant is the roster entry shape sent in welcome messages.
type WelcomeParticipant struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

// WelcomePayload is the handshake payload sent to every new connection.
type WelcomePayload struct {
	SessionID    string               `json:"sessionId"`
	CurrentCode  string               `json:"currentCode"`
	Language     model.Language       `json:"language"`
	Participants []WelcomeParticipant `json:"participants"`
}

// UserJoinedPayload announces a newly identified participant.
type UserJoinedPayload struct {
	Name             string `json:"name"`
	ParticipantCount int    `json:"participantCount"`
}

// UserLeftPayload announces a departed participant.
type UserLeftPayload struct {
	ParticipantCount int `json:"participantCount"`
}

// LanguageChangedPayload announces an applied language switch.
type LanguageChangedPayload struct {
	Language string `json:"language"`
}
