// internal/handlers/websocket/websocket.go
package websocket

import (
	"net/http"
	"strings"
	"time"

	"bookly-service/internal/middleware"
	"bookly-service/internal/pkg/response"
	ws "bookly-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler builds the /ws endpoint. Browser origins are checked
// against the same list the CORS middleware uses.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		logger: logger,
	}
}

// HandleConnection authenticates with the same rules as an access-token
// route and then upgrades the connection.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := h.extractToken(c)

	auth, err := h.hub.AuthenticateClient(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("websocket authentication failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, auth)
	if !h.hub.RegisterClient(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// extractToken prefers the query parameter because browsers cannot set
// headers on a websocket handshake.
func (h *WebSocketHandler) extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}

	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// GetStats returns websocket connection statistics (admin only). A user_uid
// query parameter adds that user's open connection count.
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	}
	if uid := c.Query("user_uid"); uid != "" {
		stats["user_uid"] = uid
		stats["user_connections"] = h.hub.GetConnectedClients(uid)
	}

	response.Success(c, http.StatusOK, "websocket stats", stats)
}
