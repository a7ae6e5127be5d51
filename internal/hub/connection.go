package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/notify-service/internal/domain"
)

// transportConn is the slice of a WebSocket connection the hub needs. Both
// the fasthttp-backed server conn and the gorilla conn satisfy it.
type transportConn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Connection is one live, authenticated transport session bound to a
// single identity for its lifetime.
type Connection struct {
	id           string
	identity     string
	conn         transportConn
	writeTimeout time.Duration

	mu        sync.Mutex // serializes writes; websocket conns allow one writer
	closeOnce sync.Once
}

// NewConnection wraps an upgraded transport for the given identity.
func NewConnection(identity string, conn transportConn, writeTimeout time.Duration) *Connection {
	return &Connection{
		id:           uuid.NewString(),
		identity:     identity,
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

// ID returns the connection's unique id.
func (c *Connection) ID() string {
	return c.id
}

// Identity returns the owning identity.
func (c *Connection) Identity() string {
	return c.identity
}

// Send writes one notification payload, bounded by the write deadline.
func (c *Connection) Send(n domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteJSON(n)
}

// Close releases the underlying transport. Safe to call repeatedly.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}
