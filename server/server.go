// Package server wires the cell store, the recomputation engine, and a
// transport.Manager together: it accepts connections, spawns one
// goroutine per connection running the command loop, and joins
// everything through an errgroup. Cancelling the context stops the
// engine; the accept loop sees the cancellation only after Accept
// returns, and a connection goroutine returns only when its connection
// closes or errors. Grounded in the Rust original's start_server/
// handle_connection shape, with its per-connection threads as goroutines.
package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"sheetsrv/cellstore"
	"sheetsrv/command"
	"sheetsrv/engine"
	"sheetsrv/logging"
	"sheetsrv/transport"
)

// Server owns the shared store, the background engine, and the
// transport it's accepting connections from.
type Server struct {
	store   *cellstore.Store
	engine  *engine.Engine
	manager transport.Manager
	log     logging.Logger
}

// New constructs a Server. log may be nil, in which case a default
// stderr text logger is used.
func New(store *cellstore.Store, eng *engine.Engine, manager transport.Manager, log logging.Logger) *Server {
	if log == nil {
		log = logging.New(logging.DefaultConfig())
	}
	return &Server{store: store, engine: eng, manager: manager, log: log}
}

// Run starts the recomputation engine and the accept loop, and blocks
// until ctx is cancelled. When the transport stops producing connections
// the accept loop ends but the engine keeps running. Every spawned
// goroutine is joined through an errgroup before Run returns.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.engine.Run(ctx)
	})

	g.Go(func() error {
		return s.acceptLoop(ctx, g)
	})

	return g.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, g *errgroup.Group) error {
	for {
		conn, ok := s.manager.Accept()
		if !ok {
			return nil
		}
		g.Go(func() error {
			s.handleConnection(ctx, conn)
			return nil
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// handleConnection reads one command per message until the connection
// closes or errors, executing each against the shared store.
func (s *Server) handleConnection(ctx context.Context, conn transport.Connection) {
	for {
		line, outcome := conn.Reader.ReadMessage()
		switch outcome {
		case transport.ReadConnectionClosed:
			return
		case transport.ReadError:
			s.log.Warn(ctx, "error reading client message")
			return
		}

		cmd, err := command.Parse(line)
		var reply command.Reply
		sendReply := true
		if err != nil {
			reply = command.ErrorReply(err.Error())
		} else {
			reply, sendReply = command.Handle(s.store, cmd)
		}
		if !sendReply {
			continue
		}

		outcomeW := conn.Writer.WriteMessage(formatReply(reply))
		switch outcomeW {
		case transport.WriteConnectionClosed:
			return
		case transport.WriteError:
			s.log.Warn(ctx, "error writing reply")
			return
		}
	}
}

func formatReply(r command.Reply) string {
	if r.IsError() {
		return "error: " + r.Message
	}
	return r.Name + " = " + r.Value.String()
}
