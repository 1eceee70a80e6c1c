package hud

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/driftlab/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const mirrorWriteTimeout = time.Second

// Mirror streams board snapshots as JSON to websocket spectators. It is
// read-only: client messages are discarded.
type Mirror struct {
	board  *Board
	logger log.Log

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
	sent    uint64
}

func NewMirror(board *Board, logger log.Log) *Mirror {
	if logger == nil {
		logger = log.Nop()
	}
	return &Mirror{
		board:   board,
		logger:  logger.Named("hud.mirror"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the request and registers the spectator. The current
// snapshot is sent immediately.
func (m *Mirror) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	// the first snapshot goes out before registration so that Broadcast is
	// the only writer afterwards
	if err := m.send(conn, m.board.Snapshot()); err != nil {
		_ = conn.Close()
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = conn.Close()
		return
	}
	m.clients[conn] = struct{}{}
	m.mu.Unlock()
	m.logger.Debug("spectator joined", log.String("remote", conn.RemoteAddr().String()))

	go m.discardReads(conn)
}

// Clients is the number of connected spectators.
func (m *Mirror) Clients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// Broadcast pushes a snapshot to every spectator, dropping the ones that fail.
// It must not be called concurrently with itself.
func (m *Mirror) Broadcast(s Snapshot) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMirrorClosed
	}
	conns := make([]*websocket.Conn, 0, len(m.clients))
	for c := range m.clients {
		conns = append(conns, c)
	}
	m.sent = s.Revision
	m.mu.Unlock()

	for _, c := range conns {
		if err := m.send(c, s); err != nil {
			m.logger.Debug("dropping spectator", log.Error(err))
			m.drop(c)
		}
	}
	return nil
}

// Run broadcasts whenever the board revision moves, polling at interval.
func (m *Mirror) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.Close()
			return nil
		case <-ticker.C:
			m.mu.Lock()
			last := m.sent
			m.mu.Unlock()
			if rev := m.board.Revision(); rev != last {
				if err := m.Broadcast(m.board.Snapshot()); err != nil {
					return err
				}
			}
		}
	}
}

// Close disconnects every spectator. Further broadcasts fail with
// ErrMirrorClosed.
func (m *Mirror) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for c := range m.clients {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
			time.Now().Add(mirrorWriteTimeout))
		_ = c.Close()
		delete(m.clients, c)
	}
}

func (m *Mirror) send(c *websocket.Conn, s Snapshot) error {
	_ = c.SetWriteDeadline(time.Now().Add(mirrorWriteTimeout))
	return c.WriteJSON(s)
}

func (m *Mirror) drop(c *websocket.Conn) {
	m.mu.Lock()
	delete(m.clients, c)
	m.mu.Unlock()
	_ = c.Close()
}

func (m *Mirror) discardReads(c *websocket.Conn) {
	for {
		if _, _, err := c.NextReader(); err != nil {
			m.drop(c)
			return
		}
	}
}
