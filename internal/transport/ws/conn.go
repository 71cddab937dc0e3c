package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cwrk-planet/signal-relay/internal/domain"
)

// wsConn owns one upgraded socket. Outbound frames go through send and are
// written by a single writer goroutine, so per-peer order is FIFO.
type wsConn struct {
	id     string
	conn   *websocket.Conn
	roomID string

	send   chan Message
	closed chan struct{}
	once   sync.Once

	writeWait time.Duration
}

func newWsConn(c *websocket.Conn, roomID string, queue int, writeWait time.Duration) *wsConn {
	return &wsConn{
		id:        uuid.NewString(),
		conn:      c,
		roomID:    roomID,
		send:      make(chan Message, queue),
		closed:    make(chan struct{}),
		writeWait: writeWait,
	}
}

// Send queues msg without blocking.
func (c *wsConn) Send(msg Message) error {
	select {
	case <-c.closed:
		return domain.ErrConnClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.closed:
		return domain.ErrConnClosed
	default:
		return domain.ErrSendQueueFull
	}
}

// Close sends a going-away frame and closes the socket. Safe to call repeatedly.
func (c *wsConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closed)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(c.writeWait),
		)
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) ID() string     { return c.id }
func (c *wsConn) RoomID() string { return c.roomID }
