package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/console"
)

// ConnectionManager pushes rendered views to every dashboard socket and
// routes operator requests from those sockets to the port controller.
type ConnectionManager struct {
	connections map[*Connection]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig
	actions  console.PortActions

	broadcastCh chan []byte

	// lastFrame is sent to new connections so they do not wait for the next change.
	lastFrame   []byte
	lastFrameMu sync.RWMutex
}

// Connection is one attached dashboard.
type Connection struct {
	ID      string
	Conn    *websocket.Conn
	Send    chan []byte
	Manager *ConnectionManager

	ConnectedAt time.Time
}

// ConnectionConfig bounds dashboard socket timing and frame sizes.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	CommandTimeout  time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig suits a dashboard on the console's local network.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		CommandTimeout:  5 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			// The dashboard is served on the console's local network.
			return true
		},
	}
}

func NewConnectionManager(config ConnectionConfig, actions console.PortActions) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		actions:     actions,
		broadcastCh: make(chan []byte, 64),
	}
}

// Start fans rendered frames out to dashboards until ctx is done.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("dashboard connection manager started")

	for {
		select {
		case <-ctx.Done():
			cm.closeAll()
			log.Info().Msg("dashboard connection manager shutting down")
			return
		case frame := <-cm.broadcastCh:
			cm.handleBroadcast(frame)
		}
	}
}

// Render implements console.Renderer.
func (cm *ConnectionManager) Render(view console.View) error {
	frame, err := encodeMessage(MessageTypeView, view)
	if err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}

	cm.lastFrameMu.Lock()
	cm.lastFrame = frame
	cm.lastFrameMu.Unlock()

	select {
	case cm.broadcastCh <- frame:
	default:
		log.Warn().Msg("dashboard broadcast channel full, dropping frame")
	}
	return nil
}

// UpgradeConnection attaches a dashboard client and replays the latest view to it.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) error {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     cm,
		ConnectedAt: time.Now(),
	}

	cm.registerConnection(connection)

	cm.lastFrameMu.RLock()
	lastFrame := cm.lastFrame
	cm.lastFrameMu.RUnlock()
	if lastFrame != nil {
		cm.send(connection, lastFrame)
	}

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("remote_addr", r.RemoteAddr).
		Msg("dashboard connection established")

	return nil
}

func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.connections[conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.connections[conn]; exists {
		delete(cm.connections, conn)
		close(conn.Send)

		log.Info().
			Str("connection_id", conn.ID).
			Msg("connection unregistered")
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.RLock()
	targets := make([]*Connection, 0, len(cm.connections))
	for conn := range cm.connections {
		targets = append(targets, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range targets {
		cm.unregisterConnection(conn)
	}
}

// handleBroadcast queues a view frame on every live dashboard connection.
// Sends happen under the read lock, which unregisterConnection must exclude
// before closing Send. Slow connections are dropped after it is released.
func (cm *ConnectionManager) handleBroadcast(frame []byte) {
	var slow []*Connection

	cm.mu.RLock()
	for conn := range cm.connections {
		select {
		case conn.Send <- frame:
		default:
			slow = append(slow, conn)
		}
	}
	cm.mu.RUnlock()

	for _, conn := range slow {
		log.Warn().
			Str("connection_id", conn.ID).
			Msg("connection send buffer full, closing connection")
		cm.unregisterConnection(conn)
		conn.Conn.Close()
	}
}

// send queues a frame for one connection, tolerating a concurrent unregister.
func (cm *ConnectionManager) send(conn *Connection, frame []byte) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.connections[conn] {
		return
	}
	select {
	case conn.Send <- frame:
	default:
		log.Warn().Str("connection_id", conn.ID).Msg("connection send buffer full, dropping reply")
	}
}

// GetConnectionStats reports how many dashboards are attached.
func (cm *ConnectionManager) GetConnectionStats() map[string]interface{} {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return map[string]interface{}{
		"total_connections": len(cm.connections),
	}
}

// writePump drains queued frames onto the socket and keeps it alive with pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Manager.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump reads operator requests until the dashboard client goes away.
func (c *Connection) readPump() {
	defer func() {
		c.Manager.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.config.ReadTimeout))
	}
}

// handleClientMessage runs an operator request and replies with an ack or error.
func (c *Connection) handleClientMessage(message []byte) {
	var req console.OperatorRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.replyError(fmt.Errorf("invalid request: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Manager.config.CommandTimeout)
	defer cancel()

	cmd, outcome, err := console.Dispatch(ctx, c.Manager.actions, req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", c.ID).
			Str("action", req.Action).
			Int("bay", req.Bay).
			Int("port", req.Port).
			Msg("dashboard command rejected")
		c.replyError(err)
		return
	}

	frame, err := encodeMessage(MessageTypeAck, AckPayload{Request: req, Command: cmd, Outcome: outcome})
	if err != nil {
		log.Error().Err(err).Msg("failed to encode ack")
		return
	}
	c.Manager.send(c, frame)
}

func (c *Connection) replyError(err error) {
	frame, encErr := encodeMessage(MessageTypeError, ErrorPayload{Error: err.Error()})
	if encErr != nil {
		log.Error().Err(encErr).Msg("failed to encode error reply")
		return
	}
	c.Manager.send(c, frame)
}
