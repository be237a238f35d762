// Package zmqrep is a ZeroMQ REQ/REP transport.Manager, grounded in the
// same github.com/go-zeromq/zmq4 socket lifecycle (NewRep/Listen/Recv/
// Send) the teacher's Jupyter kernel transport uses for its shell and
// control channels.
//
// REP sockets are strictly request-then-reply: a client's next request
// blocks until this process sends exactly one reply to its last one.
// Since a successful SET produces no reply at all (spec.md §6), this
// backend synthesizes an empty acknowledgement frame for SET so the
// socket's lockstep state machine stays satisfied; tcpline and ws, which
// aren't request/reply-locked, send nothing in that case.
package zmqrep

import (
	"context"
	"fmt"

	"github.com/go-zeromq/zmq4"

	"sheetsrv/transport"
)

// Manager serializes connections through a single bound REP socket: one
// ZeroMQ REP socket fans in every client's requests, so Accept hands out
// exactly one Connection that is safe to drive from a single goroutine.
type Manager struct {
	sock   zmq4.Socket
	handed bool
}

// Listen binds a REP socket at addr (e.g. "tcp://0.0.0.0:5555").
func Listen(addr string) (*Manager, error) {
	sock := zmq4.NewRep(context.Background())
	if err := sock.Listen(addr); err != nil {
		return nil, fmt.Errorf("zmqrep: listen %s: %w", addr, err)
	}
	return &Manager{sock: sock}, nil
}

// Close releases the underlying socket.
func (m *Manager) Close() error { return m.sock.Close() }

// Accept returns the single REP-backed Connection exactly once; a REP
// socket has no notion of discrete client connections, only a serialized
// request stream, so there is nothing left to accept afterward.
func (m *Manager) Accept() (transport.Connection, bool) {
	if m.handed {
		return transport.Connection{}, false
	}
	m.handed = true
	rw := &repConn{sock: m.sock}
	return transport.Connection{Reader: rw, Writer: rw}, true
}

// repConn reads/writes against the same REP socket; ReadMessage and
// WriteMessage must alternate since that's the protocol's contract.
type repConn struct {
	sock zmq4.Socket
}

func (c *repConn) ReadMessage() (string, transport.ReadOutcome) {
	msg, err := c.sock.Recv()
	if err != nil {
		return "", transport.ReadConnectionClosed
	}
	return string(msg.Bytes()), transport.ReadOK
}

func (c *repConn) WriteMessage(payload string) transport.WriteOutcome {
	if err := c.sock.Send(zmq4.NewMsgFrom([]byte(payload))); err != nil {
		return transport.WriteError
	}
	return transport.WriteOK
}
