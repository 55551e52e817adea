package viewersync

import (
	"context"
	"errors"
	"sync"
)

// ErrConnClosed is returned when sending on a closed connection.
var ErrConnClosed = errors.New("viewersync: connection closed")

// Conn is one end of an asynchronous message channel between the host and
// the viewing surface. Implementations carry opaque encoded messages; the
// protocol layer never sees shared memory on the other side.
type Conn interface {
	// Send delivers an encoded message to the peer.
	Send(ctx context.Context, data []byte) error
	// Receive returns the channel of inbound messages. Implementations may
	// close it when the connection closes; consumers must also honor their
	// context.
	Receive() <-chan []byte
	// Close tears the connection down. Safe to call more than once.
	Close() error
}

type pipeState struct {
	once   sync.Once
	closed chan struct{}
}

type chanConn struct {
	out   chan<- []byte
	in    <-chan []byte
	state *pipeState
}

// Pipe returns a connected host/viewer pair backed by in-process channels.
// It mirrors the posted-message semantics of an embedded frame: buffered,
// ordered, one-way per direction. Closing either end stops both.
func Pipe(buffer int) (host, viewer Conn) {
	if buffer <= 0 {
		buffer = 16
	}
	a := make(chan []byte, buffer)
	b := make(chan []byte, buffer)
	state := &pipeState{closed: make(chan struct{})}

	return &chanConn{out: a, in: b, state: state},
		&chanConn{out: b, in: a, state: state}
}

func (c *chanConn) Send(ctx context.Context, data []byte) error {
	select {
	case <-c.state.closed:
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- data:
		return nil
	case <-c.state.closed:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *chanConn) Receive() <-chan []byte {
	return c.in
}

func (c *chanConn) Close() error {
	c.state.once.Do(func() { close(c.state.closed) })
	return nil
}
