package model

import (
	"fmt"
	"time"
)

// Language represents a supported programming language for a session.
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
)

// Valid reports whether the language is one of the supported set.
func (l Language) Valid() bool {
	switch l {
	case LanguageJavaScript, LanguagePython, LanguageJava, LanguageCPP:
		return true
	}
	return false
}

// Placeholder returns the starter code shown before any snapshot is saved.
func (l Language) Placeholder() string {
	return fmt.Sprintf("// Write your %s code here\n", l)
}

// Session represents a collaborative editing session.
type Session struct {
	ID                 string    `json:"sessionId"`
	Title              string    `json:"title,omitempty"`
	Language           Language  `json:"language"`
	CreatedAt          time.Time `json:"createdAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
	ActiveParticipants int       `json:"activeParticipants"`
	Code               string    `json:"-"`
}

// CodeSnapshot is an immutable record of a saved code revision.
type CodeSnapshot struct {
	ID        string    `json:"snapshotId"`
	SessionID string    `json:"sessionId"`
	Code      string    `json:"code"`
	Language  Language  `json:"language"`
	SavedAt   time.Time `json:"savedAt"`
	UserID    string    `json:"userId"`
}

// Participant is a user currently present in a session's roster.
type Participant struct {
	UserID         string                 `json:"userId"`
	Name           string                 `json:"name"`
	JoinedAt       time.Time              `json:"joinedAt"`
	CursorPosition map[string]interface{} `json:"cursorPosition,omitempty"`
}

// History change types.
const (
	ChangeTypeSnapshot       = "snapshot"
	ChangeTypeLanguageChange = "language-change"
)

// HistoryEntry is an immutable audit record of a state-changing event.
type HistoryEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	UserID       string    `json:"userId"`
	ChangeType   string    `json:"changeType"`
	Description  string    `json:"description"`
	CodeSnapshot string    `json:"codeSnapshot,omitempty"`
}

// Expiry bounds for session creation, in hours.
const (
	MinExpiresInHours     = 1
	MaxExpiresInHours     = 168
	DefaultExpiresInHours = 24
)

// CreateSessionRequest represents a request to create a new session.
type CreateSessionRequest struct {
	Language  Language `json:"language"`
	Title     string   `json:"title"`
	ExpiresIn int      `json:"expiresIn"`
}

// Validate normalizes defaults and validates the create request.
func (r *CreateSessionRequest) Validate() error {
	if r.Language == "" {
		r.Language = LanguageJavaScript
	}
	if !r.Language.Valid() {
		return ErrInvalidLanguage
	}
	if r.ExpiresIn == 0 {
		r.ExpiresIn = DefaultExpiresInHours
	}
	if r.ExpiresIn < MinExpiresInHours || r.ExpiresIn > MaxExpiresInHours {
		return ErrInvalidExpiry
	}
	return nil
}

// UpdateSessionRequest represents a partial session update.
// Nil fields are left untouched.
type UpdateSessionRequest struct {
	Language *Language `json:"language"`
	Title    *string   `json:"title"`
}

// Validate validates the update request.
func (r *UpdateSessionRequest) Validate() error {
	if r.Language != nil && !r.Language.Valid() {
		return ErrInvalidLanguage
	}
	return nil
}

// SaveCodeRequest represents a request to save a code snapshot.
type SaveCodeRequest struct {
	Code     string   `json:"code"`
	Language Language `json:"language" binding:"required"`
}

// Validate validates the save request.
func (r *SaveCodeRequest) Validate() error {
	if !r.Language.Valid() {
		return ErrInvalidLanguage
	}
	return nil
}

// CodeState is the current code for a session as returned by the store.
type CodeState struct {
	Code         string    `json:"code"`
	Language     Language  `json:"language"`
	LastModified time.Time `json:"lastModified"`
}

// SaveCodeResult identifies a newly created snapshot.
type SaveCodeResult struct {
	SnapshotID string    `json:"snapshotId"`
	SavedAt    time.Time `json:"savedAt"`
}
