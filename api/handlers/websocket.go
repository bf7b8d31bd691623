package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/collab-code-pad/backend/internal/ws"
)

// WebSocketHandler routes collaboration connection upgrades to the gateway.
type WebSocketHandler struct {
	gateway *ws.Gateway
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(gateway *ws.Gateway) *WebSocketHandler {
	return &WebSocketHandler{gateway: gateway}
}

// Connect handles GET /ws/sessions/:id - joins a collaboration session.
// Session existence checks and the policy-violation rejection for unknown
// sessions happen inside the gateway, after the upgrade.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	sessionID := c.Param("id")
	h.gateway.HandleConnection(c.Writer, c.Request, sessionID)
}

// RegisterRoutes registers the WebSocket route on the root engine. The
// upgrade endpoint lives outside the /api group.
func (h *WebSocketHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/sessions/:id", h.Connect)
}
