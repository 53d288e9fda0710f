package signal

import (
	"fmt"
	"sync"
	"time"

	"chatrelay/internal/core/domain"
	"chatrelay/internal/core/ports"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client wraps one WebSocket connection. gorilla/websocket allows a single
// writer at a time, and fan-out means other connections' handler goroutines
// write here concurrently with the ping ticker, so every write goes through
// the mutex.
type client struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *client) writeJSON(v interface{}, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(timeout))
	return c.ws.WriteJSON(v)
}

func (c *client) ping(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(timeout))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

// ConnectionManager tracks live connections and delivers outbound events.
// It is the ports.EventSink the services emit through.
type ConnectionManager struct {
	connections map[domain.ConnID]*client
	mu          sync.RWMutex

	writeTimeout time.Duration
	logger       *zap.SugaredLogger
}

var _ ports.EventSink = (*ConnectionManager)(nil)

func NewConnectionManager(writeTimeout time.Duration, logger *zap.SugaredLogger) *ConnectionManager {
	return &ConnectionManager{
		connections:  make(map[domain.ConnID]*client),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

func (m *ConnectionManager) add(conn domain.ConnID, ws *websocket.Conn) *client {
	c := &client{ws: ws}
	m.mu.Lock()
	m.connections[conn] = c
	m.mu.Unlock()
	return c
}

func (m *ConnectionManager) remove(conn domain.ConnID) {
	m.mu.Lock()
	delete(m.connections, conn)
	m.mu.Unlock()
}

// SendToConn delivers the event to one connection. A target that is no
// longer connected returns an error for logging only; callers treat it as a
// silent no-op.
func (m *ConnectionManager) SendToConn(conn domain.ConnID, event domain.Event) error {
	m.mu.RLock()
	c, exists := m.connections[conn]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection %s not registered", conn)
	}
	return c.writeJSON(event, m.writeTimeout)
}

// Broadcast delivers the event to every live connection.
func (m *ConnectionManager) Broadcast(event domain.Event) {
	m.mu.RLock()
	targets := make(map[domain.ConnID]*client, len(m.connections))
	for conn, c := range m.connections {
		targets[conn] = c
	}
	m.mu.RUnlock()

	for conn, c := range targets {
		if err := c.writeJSON(event, m.writeTimeout); err != nil {
			m.logger.Debugw("broadcast write failed", "conn_id", conn, "event", event.Type, "error", err)
		}
	}
}

// Count returns the number of live connections.
func (m *ConnectionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// ConnectionIDs returns the ids of all live connections.
func (m *ConnectionManager) ConnectionIDs() []domain.ConnID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]domain.ConnID, 0, len(m.connections))
	for conn := range m.connections {
		ids = append(ids, conn)
	}
	return ids
}

// IsConnected reports whether the connection is live.
func (m *ConnectionManager) IsConnected(conn domain.ConnID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.connections[conn]
	return exists
}
