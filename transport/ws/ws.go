// Package ws is a WebSocket transport.Manager built on
// github.com/gorilla/websocket, grounded in the teacher's
// HandleWebSocket/Start pattern: an http.Server with a single upgrade
// handler that hands each accepted socket off to the Manager's Accept
// loop over a buffered channel.
package ws

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"sheetsrv/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Manager serves ws:// connections on one HTTP listener and funnels each
// upgraded socket through a channel to Accept.
type Manager struct {
	server *http.Server
	conns  chan transport.Connection
	closed chan struct{}
}

// Listen starts an HTTP server on addr whose only route, path, upgrades
// to a WebSocket connection.
func Listen(addr, path string) (*Manager, error) {
	m := &Manager{
		conns:  make(chan transport.Connection),
		closed: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(path, m.handleUpgrade)
	m.server = &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		errc <- m.server.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return nil, err
	default:
	}
	return m, nil
}

func (m *Manager) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	select {
	case m.conns <- transport.Connection{Reader: &sockRW{conn: conn}, Writer: &sockRW{conn: conn}}:
	case <-m.closed:
		conn.Close()
	}
}

// Close shuts down the HTTP server and stops Accept from ever returning
// another connection.
func (m *Manager) Close() error {
	close(m.closed)
	return m.server.Shutdown(context.Background())
}

// Accept blocks until a client completes the WebSocket handshake.
func (m *Manager) Accept() (transport.Connection, bool) {
	select {
	case c := <-m.conns:
		return c, true
	case <-m.closed:
		return transport.Connection{}, false
	}
}

// sockRW adapts one *websocket.Conn to both transport.Reader and
// transport.Writer using text frames, one client command/reply per frame.
type sockRW struct {
	conn *websocket.Conn
}

func (s *sockRW) ReadMessage() (string, transport.ReadOutcome) {
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return "", transport.ReadConnectionClosed
		}
		return "", transport.ReadError
	}
	return string(data), transport.ReadOK
}

func (s *sockRW) WriteMessage(msg string) transport.WriteOutcome {
	if err := s.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return transport.WriteError
	}
	return transport.WriteOK
}
