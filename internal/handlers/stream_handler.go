package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"omniq/internal/services"
	"omniq/internal/ws"
)

// StreamHandler relays WebSocket traffic for an open conversation
type StreamHandler struct {
	manager      *ws.ConnectionManager
	tokenService *services.TokenService
	logger       *log.Logger
	upgrader     websocket.Upgrader
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(manager *ws.ConnectionManager, tokenService *services.TokenService, logger *log.Logger) *StreamHandler {
	return &StreamHandler{
		manager:      manager,
		tokenService: tokenService,
		logger:       logger,
		upgrader: websocket.Upgrader{
			// Origins are already wide open via the CORS middleware
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream upgrades the request and echoes received JSON frames back to the
// client. Requests without the token (`t`) and `connectionId` query
// parameters are rejected before the upgrade.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("t")
	connectionID := r.URL.Query().Get("connectionId")
	if token == "" || connectionID == "" {
		http.Error(w, "Missing t or connectionId query parameter", http.StatusForbidden)
		return
	}

	if _, err := h.tokenService.ValidateToken(token); err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.manager.Connect(conn)
	defer func() {
		h.manager.Disconnect(conn)
		conn.Close()
	}()

	h.logger.Printf("Stream connected (connection %s, %d active)", connectionID, h.manager.Count())

	for {
		var payload interface{}
		if err := conn.ReadJSON(&payload); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Printf("Stream read error: %v", err)
			}
			return
		}
		if err := conn.WriteJSON(payload); err != nil {
			h.logger.Printf("Stream write error: %v", err)
			return
		}
	}
}
