// Package store provides the in-memory session store. State lives for the
// lifetime of the process; expiry timestamps are advisory and not enforced.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/collab-code-pad/backend/internal/model"
)

// SessionStore owns session records, code snapshots, participant rosters and
// history logs. All operations are safe for concurrent use; a single lock
// keeps participant counts, history order and code state consistent under
// concurrent channel traffic.
type SessionStore struct {
	mu           sync.RWMutex
	sessions     map[string]*model.Session
	snapshots    map[string][]model.CodeSnapshot
	participants map[string][]model.Participant
	history      map[string][]model.HistoryEntry
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:     make(map[string]*model.Session),
		snapshots:    make(map[string][]model.CodeSnapshot),
		participants: make(map[string][]model.Participant),
		history:      make(map[string][]model.HistoryEntry),
	}
}

// Create creates a new session with the given language, title and expiry.
func (s *SessionStore) Create(language model.Language, title string, expiresIn int) (*model.Session, error) {
	req := model.CreateSessionRequest{Language: language, Title: title, ExpiresIn: expiresIn}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:        uuid.New().String(),
		Title:     req.Title,
		Language:  req.Language,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(req.ExpiresIn) * time.Hour),
		Code:      req.Language.Placeholder(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.snapshots[session.ID] = nil
	s.participants[session.ID] = nil
	s.history[session.ID] = nil
	s.mu.Unlock()

	log.Info().
		Str("sessionId", session.ID).
		Str("language", string(session.Language)).
		Time("expiresAt", session.ExpiresAt).
		Msg("session created")

	return copySession(session), nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(id string) (*model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return copySession(session), true
}

// Update applies a partial update to a session. Nil fields are left as-is.
func (s *SessionStore) Update(id string, req model.UpdateSessionRequest) (*model.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	if req.Language != nil {
		session.Language = *req.Language
	}
	if req.Title != nil {
		session.Title = *req.Title
	}
	return copySession(session), nil
}

// UpdateLanguageRaw sets the session language without enum validation.
// The collaboration channel accepts any non-empty language string; only the
// REST surface validates against the supported set.
func (s *SessionStore) UpdateLanguageRaw(id string, language model.Language) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false
	}
	session.Language = language
	return true
}

// Delete removes a session and all of its associated state.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	delete(s.snapshots, id)
	delete(s.participants, id)
	delete(s.history, id)
	return true
}

// GetCode returns the current code state for a session. Before any snapshot
// is saved the code is the language placeholder and lastModified is the
// session creation time.
func (s *SessionStore) GetCode(id string) (*model.CodeState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	lastModified := session.CreatedAt
	if snaps := s.snapshots[id]; len(snaps) > 0 {
		lastModified = snaps[len(snaps)-1].SavedAt
	}

	return &model.CodeState{
		Code:         session.Code,
		Language:     session.Language,
		LastModified: lastModified,
	}, true
}

// SaveCode appends a code snapshot, updates the session's current code and
// records a history entry of type "snapshot".
func (s *SessionStore) SaveCode(id, code string, language model.Language, userID string) (*model.SaveCodeResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}

	snapshot := model.CodeSnapshot{
		ID:        uuid.New().String(),
		SessionID: id,
		Code:      code,
		Language:  language,
		SavedAt:   time.Now().UTC(),
		UserID:    userID,
	}
	s.snapshots[id] = append(s.snapshots[id], snapshot)
	session.Code = code

	s.appendHistoryLocked(id, userID, model.ChangeTypeSnapshot, "Code snapshot saved", code)

	return &model.SaveCodeResult{SnapshotID: snapshot.ID, SavedAt: snapshot.SavedAt}, true
}

// AddParticipant adds a user to the session roster. Re-adding an existing
// user ID replaces the prior entry rather than duplicating it.
func (s *SessionStore) AddParticipant(id, userID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}

	roster := removeByUserID(s.participants[id], userID)
	roster = append(roster, model.Participant{
		UserID:   userID,
		Name:     name,
		JoinedAt: time.Now().UTC(),
	})
	s.participants[id] = roster
	s.sessions[id].ActiveParticipants = len(roster)
	return true
}

// RemoveParticipant removes a user from the session roster.
func (s *SessionStore) RemoveParticipant(id, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}

	roster := removeByUserID(s.participants[id], userID)
	s.participants[id] = roster
	s.sessions[id].ActiveParticipants = len(roster)
	return true
}

// ListParticipants returns the roster for a session.
func (s *SessionStore) ListParticipants(id string) ([]model.Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[id]; !ok {
		return nil, false
	}

	roster := s.participants[id]
	out := make([]model.Participant, len(roster))
	copy(out, roster)
	return out, true
}

// ParticipantCount returns the current roster size for a session.
func (s *SessionStore) ParticipantCount(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants[id])
}

// AppendHistory records an audit entry for a session.
func (s *SessionStore) AppendHistory(id, userID, changeType, description, codeSnapshot string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	s.appendHistoryLocked(id, userID, changeType, description, codeSnapshot)
	return true
}

// GetHistory returns the most recent limit entries in chronological order.
// The underlying log is never truncated.
func (s *SessionStore) GetHistory(id string, limit int) ([]model.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[id]; !ok {
		return nil, false
	}

	entries := s.history[id]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]model.HistoryEntry, len(entries))
	copy(out, entries)
	return out, true
}

func (s *SessionStore) appendHistoryLocked(id, userID, changeType, description, codeSnapshot string) {
	s.history[id] = append(s.history[id], model.HistoryEntry{
		Timestamp:    time.Now().UTC(),
		UserID:       userID,
		ChangeType:   changeType,
		Description:  description,
		CodeSnapshot: codeSnapshot,
	})
}

// DescribeLanguageChange builds the audit description for a language switch.
func DescribeLanguageChange(language model.Language) string {
	return fmt.Sprintf("Changed language to %s", language)
}

func removeByUserID(roster []model.Participant, userID string) []model.Participant {
	out := roster[:0]
	for _, p := range roster {
		if p.UserID != userID {
			out = append(out, p)
		}
	}
	return out
}

func copySession(s *model.Session) *model.Session {
	c := *s
	return &c
}
