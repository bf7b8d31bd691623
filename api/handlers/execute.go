package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collab-code-pad/backend/internal/executor"
	"github.com/collab-code-pad/backend/internal/model"
)

// ExecuteHandler handles code execution requests.
type ExecuteHandler struct {
	executor *executor.Executor
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(exec *executor.Executor) *ExecuteHandler {
	return &ExecuteHandler{executor: exec}
}

// ExecuteRequest represents the request body for code execution.
type ExecuteRequest struct {
	Code     string         `json:"code" binding:"required"`
	Language model.Language `json:"language" binding:"required"`
	Stdin    string         `json:"stdin"`
	Timeout  int            `json:"timeout"`
}

// Execute handles POST /api/execute - runs submitted code and returns the
// captured output and exit status.
func (h *ExecuteHandler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}

	result, err := h.executor.Execute(c.Request.Context(), req.Code, req.Language, req.Stdin, req.Timeout)
	if err != nil {
		if errors.Is(err, executor.ErrUnsupportedLanguage) {
			sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unsupported language: "+string(req.Language))
			return
		}
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterRoutes registers the execute handler routes on a Gin router group.
func (h *ExecuteHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/execute", h.Execute)
}
