package transport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mahjong3p/internal/logging"
	"mahjong3p/internal/wire"
)

var (
	pongWait       = 30 * time.Second
	writeWait      = 10 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize int64 = 8192
)

// wsConnection is one client's websocket lifecycle: read pump, write pump,
// ping/pong keepalive. Grounded on framework/conn/connection.go's
// LongConnection, adapted from its binary pomelo-packet framing to this
// repo's JSON wire.Frame and from its worker-bucket dispatch to calling
// directly into the Server that owns it (this repo has no connector-node
// sharding to preserve).
type wsConnection struct {
	userId string
	conn   *websocket.Conn
	server *Server

	writeChan chan wire.Frame
	closeChan chan struct{}
	closeOnce sync.Once
}

func newWSConnection(userId string, conn *websocket.Conn, server *Server) *wsConnection {
	return &wsConnection{
		userId:    userId,
		conn:      conn,
		server:    server,
		writeChan: make(chan wire.Frame, 64),
		closeChan: make(chan struct{}),
	}
}

// SendFrame implements session.Connection.
func (c *wsConnection) SendFrame(f wire.Frame) error {
	select {
	case c.writeChan <- f:
		return nil
	case <-c.closeChan:
		return websocket.ErrCloseSent
	}
}

// Close implements session.Connection.
func (c *wsConnection) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		_ = c.conn.Close()
	})
	return nil
}

func (c *wsConnection) run() {
	go c.writePump()
	c.readPump()
}

func (c *wsConnection) readPump() {
	defer func() {
		c.server.onConnectionClosed(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn("transport: user %s read error: %v", c.userId, err)
			}
			return
		}
		frame, err := wire.Decode(raw)
		if err != nil {
			logging.Warn("transport: user %s sent malformed frame: %v", c.userId, err)
			continue
		}
		c.server.handleFrame(c, frame)
	}
}

func (c *wsConnection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.writeChan:
			if !ok {
				return
			}
			raw, err := wire.Encode(frame)
			if err != nil {
				logging.Error("transport: encode frame for %s: %v", c.userId, err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				logging.Warn("transport: write to %s failed: %v", c.userId, err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}
