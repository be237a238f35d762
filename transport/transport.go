// Package transport defines the connection-oriented abstraction the
// command handler is built against, independent of which wire protocol
// carries it. Three concrete backends implement it: transport/tcpline
// (newline-delimited TCP), transport/zmqrep (ZeroMQ REQ/REP), and
// transport/ws (WebSocket).
package transport

// Reader reads one client-submitted command line at a time.
type Reader interface {
	ReadMessage() (string, ReadOutcome)
}

// Writer sends one reply line back to the client.
type Writer interface {
	WriteMessage(msg string) WriteOutcome
}

// ReadOutcome classifies the result of a Reader.ReadMessage call.
type ReadOutcome int

const (
	ReadOK ReadOutcome = iota
	ReadConnectionClosed
	ReadError
)

// WriteOutcome classifies the result of a Writer.WriteMessage call.
type WriteOutcome int

const (
	WriteOK WriteOutcome = iota
	WriteConnectionClosed
	WriteError
)

// Connection pairs a Reader and Writer for one accepted client.
type Connection struct {
	Reader Reader
	Writer Writer
}

// Manager accepts new connections until the transport is shut down.
type Manager interface {
	// Accept blocks until a new Connection is available, or returns
	// ok=false when no further connections will ever arrive.
	Accept() (conn Connection, ok bool)
}
