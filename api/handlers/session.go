// Package handlers provides HTTP API request handlers.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collab-code-pad/backend/internal/model"
	"github.com/collab-code-pad/backend/internal/store"
)

// History query bounds.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// SessionHandler handles HTTP requests for session management.
type SessionHandler struct {
	store      *store.SessionStore
	sessionURL func(sessionID string) string
}

// NewSessionHandler creates a new SessionHandler. sessionURL builds the
// shareable join URL included in session responses.
func NewSessionHandler(sessions *store.SessionStore, sessionURL func(sessionID string) string) *SessionHandler {
	return &SessionHandler{
		store:      sessions,
		sessionURL: sessionURL,
	}
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	SessionID          string `json:"sessionId"`
	Title              string `json:"title,omitempty"`
	Language           string `json:"language"`
	CreatedAt          string `json:"createdAt"`
	ExpiresAt          string `json:"expiresAt"`
	ActiveParticipants int    `json:"activeParticipants"`
	URL                string `json:"url"`
}

// CodeResponse represents the current code of a session.
type CodeResponse struct {
	SessionID    string `json:"sessionId"`
	Code         string `json:"code"`
	Language     string `json:"language"`
	LastModified string `json:"lastModified"`
}

// CodeSaveResponse identifies a saved snapshot.
type CodeSaveResponse struct {
	SessionID  string `json:"sessionId"`
	SnapshotID string `json:"snapshotId"`
	SavedAt    string `json:"savedAt"`
}

// ParticipantsResponse lists a session's roster.
type ParticipantsResponse struct {
	SessionID    string              `json:"sessionId"`
	Participants []model.Participant `json:"participants"`
}

// HistoryResponse lists a session's recent audit entries.
type HistoryResponse struct {
	SessionID string               `json:"sessionId"`
	History   []model.HistoryEntry `json:"history"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sendError sends an error response with the appropriate status code.
func sendError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func sendNotFound(c *gin.Context, sessionID string) {
	sendError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session "+sessionID+" not found")
}

// toSessionResponse converts a model.Session to SessionResponse.
func (h *SessionHandler) toSessionResponse(s *model.Session) *SessionResponse {
	return &SessionResponse{
		SessionID:          s.ID,
		Title:              s.Title,
		Language:           string(s.Language),
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
		ExpiresAt:          s.ExpiresAt.Format(time.RFC3339),
		ActiveParticipants: s.ActiveParticipants,
		URL:                h.sessionURL(s.ID),
	}
}

// Create handles POST /api/sessions - creates a new session.
// An empty body creates a javascript session with the default expiry.
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
			return
		}
	}

	sess, err := h.store.Create(req.Language, req.Title, req.ExpiresIn)
	if err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusCreated, h.toSessionResponse(sess))
}

// Get handles GET /api/sessions/:id - gets a specific session.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID := c.Param("id")

	sess, ok := h.store.Get(sessionID)
	if !ok {
		sendNotFound(c, sessionID)
		return
	}

	c.JSON(http.StatusOK, h.toSessionResponse(sess))
}

// Update handles PATCH /api/sessions/:id - updates language and/or title.
func (h *SessionHandler) Update(c *gin.Context) {
	sessionID := c.Param("id")

	var req model.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}

	sess, err := h.store.Update(sessionID, req)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			sendNotFound(c, sessionID)
			return
		}
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, h.toSessionResponse(sess))
}

// Delete handles DELETE /api/sessions/:id - deletes a session.
func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID := c.Param("id")

	if !h.store.Delete(sessionID) {
		sendNotFound(c, sessionID)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCode handles GET /api/sessions/:id/code - gets the current code.
func (h *SessionHandler) GetCode(c *gin.Context) {
	sessionID := c.Param("id")

	code, ok := h.store.GetCode(sessionID)
	if !ok {
		sendNotFound(c, sessionID)
		return
	}

	c.JSON(http.StatusOK, CodeResponse{
		SessionID:    sessionID,
		Code:         code.Code,
		Language:     string(code.Language),
		LastModified: code.LastModified.Format(time.RFC3339),
	})
}

// SaveCode handles POST /api/sessions/:id/code - saves a code snapshot.
func (h *SessionHandler) SaveCode(c *gin.Context) {
	sessionID := c.Param("id")

	var req model.SaveCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, ok := h.store.SaveCode(sessionID, req.Code, req.Language, "anonymous")
	if !ok {
		sendNotFound(c, sessionID)
		return
	}

	c.JSON(http.StatusOK, CodeSaveResponse{
		SessionID:  sessionID,
		SnapshotID: result.SnapshotID,
		SavedAt:    result.SavedAt.Format(time.RFC3339),
	})
}

// GetParticipants handles GET /api/sessions/:id/participants.
func (h *SessionHandler) GetParticipants(c *gin.Context) {
	sessionID := c.Param("id")

	participants, ok := h.store.ListParticipants(sessionID)
	if !ok {
		sendNotFound(c, sessionID)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}

	c.JSON(http.StatusOK, ParticipantsResponse{
		SessionID:    sessionID,
		Participants: participants,
	})
}

// GetHistory handles GET /api/sessions/:id/history?limit= - returns the
// most recent entries in chronological order.
func (h *SessionHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("id")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	history, ok := h.store.GetHistory(sessionID, limit)
	if !ok {
		sendNotFound(c, sessionID)
		return
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}

	c.JSON(http.StatusOK, HistoryResponse{
		SessionID: sessionID,
		History:   history,
	})
}

// RegisterRoutes registers the session handler routes on a Gin router group.
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.Create)
		sessions.GET("/:id", h.Get)
		sessions.PATCH("/:id", h.Update)
		sessions.DELETE("/:id", h.Delete)
		sessions.GET("/:id/code", h.GetCode)
		sessions.POST("/:id/code", h.SaveCode)
		sessions.GET("/:id/participants", h.GetParticipants)
		sessions.GET("/:id/history", h.GetHistory)
	}
}
