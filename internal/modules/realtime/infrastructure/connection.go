package infrastructure

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"kanbanApi/internal/modules/realtime/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 1 << 20
)

type enqueueResult int

const (
	enqueued enqueueResult = iota
	overflowed
	closed
)

// Connection is one live socket. Its topic, user binding and watch rooms are
// guarded by the owning Hub; the send queue preserves per-connection order.
type Connection struct {
	id       string
	hub      *Hub
	conn     *websocket.Conn
	commands *CommandProcessor

	topic    string
	userID   string
	watching map[string]struct{}

	sendMu   sync.Mutex
	send     chan []byte
	isClosed bool
}

// NewConnection wraps conn with a buffered send queue of size buf. conn may be
// nil for connections driven only through the queue.
func NewConnection(hub *Hub, conn *websocket.Conn, buf int, commands *CommandProcessor) *Connection {
	if buf <= 0 {
		buf = 32
	}
	return &Connection{
		id:       uuid.NewString(),
		hub:      hub,
		conn:     conn,
		commands: commands,
		watching: make(map[string]struct{}),
		send:     make(chan []byte, buf),
	}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) enqueue(data []byte) enqueueResult {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.isClosed {
		return closed
	}
	select {
	case c.send <- data:
		return enqueued
	default:
		return overflowed
	}
}

func (c *Connection) close() {
	c.sendMu.Lock()
	if c.isClosed {
		c.sendMu.Unlock()
		return
	}
	c.isClosed = true
	close(c.send)
	c.sendMu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Send queues a frame for this connection only.
func (c *Connection) Send(eventType string, payload any) {
	c.hub.deliver(context.Background(), []*Connection{c}, eventType, payload)
}

func (c *Connection) WritePump() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.hub.Detach(c)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Warn("socket write error", slog.String("connId", c.id), slog.Any("error", err))
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				slog.Warn("socket ping error", slog.String("connId", c.id), slog.Any("error", err))
				return
			}
		}
	}
}

func (c *Connection) ReadPump() {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	defer c.hub.Detach(c)
	for {
		var frame domain.InboundFrame
		if err := c.conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("socket read error", slog.String("connId", c.id), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if c.commands != nil {
			c.commands.Process(c, frame)
		}
	}
}
