package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collab-code-pad/backend/internal/model"
)

func TestCreateDefaults(t *testing.T) {
	s := NewSessionStore()

	sess, err := s.Create("", "", 0)
	require.NoError(t, err)

	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, model.LanguageJavaScript, sess.Language)
	assert.Equal(t, 0, sess.ActiveParticipants)
	assert.Equal(t, model.DefaultExpiresInHours, int(sess.ExpiresAt.Sub(sess.CreatedAt).Hours()))
}

func TestCreateValidation(t *testing.T) {
	s := NewSessionStore()

	_, err := s.Create("brainfuck", "", 0)
	assert.ErrorIs(t, err, model.ErrInvalidLanguage)

	_, err = s.Create(model.LanguagePython, "", 169)
	assert.ErrorIs(t, err, model.ErrInvalidExpiry)

	_, err = s.Create(model.LanguagePython, "", -1)
	assert.ErrorIs(t, err, model.ErrInvalidExpiry)
}

func TestGetUnknownSession(t *testing.T) {
	s := NewSessionStore()

	_, ok := s.Get("nope")
	assert.False(t, ok)
	_, ok = s.GetCode("nope")
	assert.False(t, ok)
	_, ok = s.ListParticipants("nope")
	assert.False(t, ok)
	_, ok = s.GetHistory("nope", 10)
	assert.False(t, ok)
	assert.False(t, s.Delete("nope"))
	assert.False(t, s.AddParticipant("nope", "u1", "Alice"))
	assert.False(t, s.RemoveParticipant("nope", "u1"))
	_, ok = s.SaveCode("nope", "x", model.LanguagePython, "u1")
	assert.False(t, ok)
}

func TestUpdateSession(t *testing.T) {
	s := NewSessionStore()
	sess, err := s.Create(model.LanguageJavaScript, "Old title", 24)
	require.NoError(t, err)

	lang := model.LanguagePython
	title := "New title"
	updated, err := s.Update(sess.ID, model.UpdateSessionRequest{Language: &lang, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, model.LanguagePython, updated.Language)
	assert.Equal(t, "New title", updated.Title)

	// Partial update leaves the other field alone.
	other := model.LanguageCPP
	updated, err = s.Update(sess.ID, model.UpdateSessionRequest{Language: &other})
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)

	bad := model.Language("cobol")
	_, err = s.Update(sess.ID, model.UpdateSessionRequest{Language: &bad})
	assert.ErrorIs(t, err, model.ErrInvalidLanguage)

	_, err = s.Update("nope", model.UpdateSessionRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestCodePlaceholderBeforeFirstSave(t *testing.T) {
	s := NewSessionStore()
	sess, err := s.Create(model.LanguagePython, "", 24)
	require.NoError(t, err)

	code, ok := s.GetCode(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "// Write your python code here\n", code.Code)
	assert.Equal(t, model.LanguagePython, code.Language)
}

func TestSaveCodeRoundTrip(t *testing.T) {
	s := NewSessionStore()
	sess, err := s.Create(model.LanguagePython, "", 24)
	require.NoError(t, err)

	result, ok := s.SaveCode(sess.ID, "print('hi')", model.LanguagePython, "u1")
	require.True(t, ok)
	assert.NotEmpty(t, result.SnapshotID)

	code, ok := s.GetCode(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "print('hi')", code.Code)
	assert.Equal(t, model.LanguagePython, code.Language)
	assert.Equal(t, result.SavedAt, code.LastModified)

	// Saving records a snapshot history entry.
	history, ok := s.GetHistory(sess.ID, 10)
	require.True(t, ok)
	require.Len(t, history, 1)
	assert.Equal(t, model.ChangeTypeSnapshot, history[0].ChangeType)
	assert.Equal(t, "u1", history[0].UserID)
	assert.Equal(t, "print('hi')", history[0].CodeSnapshot)
}

func TestParticipantRoster(t *testing.T) {
	s := NewSessionStore()
	sess, err := s.Create(model.LanguageJavaScript, "", 24)
	require.NoError(t, err)

	require.True(t, s.AddParticipant(sess.ID, "u1", "Alice"))
	require.True(t, s.AddParticipant(sess.ID, "u2", "Bob"))

	got, _ := s.Get(sess.ID)
	assert.Equal(t, 2, got.ActiveParticipants)

	// Re-adding the same user id replaces, not duplicates.
	require.True(t, s.AddParticipant(sess.ID, "u1", "Alice II"))
	roster, ok := s.ListParticipants(sess.ID)
	require.True(t, ok)
	require.Len(t, roster, 2)

	names := map[string]string{}
	for _, p := range roster {
		names[p.UserID] = p.Name
	}
	assert.Equal(t, "Alice II", names["u1"])

	require.True(t, s.RemoveParticipant(sess.ID, "u1"))
	got, _ = s.Get(sess.ID)
	assert.Equal(t, 1, got.ActiveParticipants)

	// Removing an absent participant is harmless.
	require.True(t, s.RemoveParticipant(sess.ID, "u1"))
	got, _ = s.Get(sess.ID)
	assert.Equal(t, 1, got.ActiveParticipants)
}

func TestHistoryLimitAndOrder(t *testing.T) {
	s := NewSessionStore()
	sess, err := s.Create(model.LanguageJavaScript, "", 24)
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		require.True(t, s.AppendHistory(sess.ID, "u1", model.ChangeTypeSnapshot, descriptionN(i), ""))
	}

	history, ok := s.GetHistory(sess.ID, 10)
	require.True(t, ok)
	require.Len(t, history, 10)

	// Most recent 10, oldest first.
	assert.Equal(t, descriptionN(15), history[0].Description)
	assert.Equal(t, descriptionN(24), history[9].Description)

	// A large limit returns everything without padding.
	history, ok = s.GetHistory(sess.ID, 100)
	require.True(t, ok)
	assert.Len(t, history, 25)
}

func TestDeleteSession(t *testing.T) {
	s := NewSessionStore()
	sess, err := s.Create(model.LanguageJavaScript, "", 24)
	require.NoError(t, err)

	require.True(t, s.Delete(sess.ID))
	_, ok := s.Get(sess.ID)
	assert.False(t, ok)
	assert.False(t, s.Delete(sess.ID))
}

func descriptionN(i int) string {
	return string(rune('a'+i%26)) + "-entry"
}
