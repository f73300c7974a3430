package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// ConnectionManager tracks active WebSocket connections. All methods are
// safe for concurrent use.
type ConnectionManager struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewConnectionManager creates an empty connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Connect registers an accepted connection
func (m *ConnectionManager) Connect(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[conn] = struct{}{}
}

// Disconnect removes a connection from the registry
func (m *ConnectionManager) Disconnect(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, conn)
}

// Count returns the number of active connections
func (m *ConnectionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}
