package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultSendBuffer is the outbound queue size used when none is given.
const DefaultSendBuffer = 256

// Conn is one live client session. The transport drains Outbound and writes
// each frame; the registry owns the queue and closes it on disconnect.
type Conn struct {
	id   uuid.UUID
	send chan []byte

	mu     sync.Mutex
	userID uint
	bound  bool
	closed bool
}

// NewConn returns a connection with a bounded outbound queue.
func NewConn(buffer int) *Conn {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Conn{
		id:   uuid.New(),
		send: make(chan []byte, buffer),
	}
}

func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Outbound yields queued frames. It is closed once the connection is
// disconnected.
func (c *Conn) Outbound() <-chan []byte {
	return c.send
}

// UserID returns the bound user, if the connection has authenticated.
func (c *Conn) UserID() (uint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.bound
}

func (c *Conn) bind(userID uint) {
	c.mu.Lock()
	c.userID = userID
	c.bound = true
	c.mu.Unlock()
}

// enqueue never blocks. It reports false when the queue is full or closed.
func (c *Conn) enqueue(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
