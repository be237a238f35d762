// Command sheetsrv runs and connects to the concurrent spreadsheet
// server: "sheetsrv serve" binds a transport and starts accepting
// clients, "sheetsrv connect" dials in as a raw terminal client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sheetsrv/cellstore"
	"sheetsrv/engine"
	"sheetsrv/logging"
	"sheetsrv/metrics"
	"sheetsrv/server"
	"sheetsrv/transport"
	"sheetsrv/transport/tcpline"
	"sheetsrv/transport/ws"
	"sheetsrv/transport/zmqrep"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sheetsrv",
		Short: "Concurrent in-memory spreadsheet server",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.AddCommand(newServeCmd(), newConnectCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		addr        string
		backend     string
		wsPath      string
		metricsAddr string
		interval    time.Duration
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the spreadsheet server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(logging.Config{Level: logLevel, Format: "text"})
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			manager, err := dialManager(backend, addr, wsPath)
			if err != nil {
				return fmt.Errorf("sheetsrv: %w", err)
			}

			store := cellstore.New()
			registry := prometheus.NewRegistry()
			recorder := metrics.NewEngine(registry)
			metrics.StoreSize(registry, store)

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, registry, log)
			}

			eng := engine.New(store, interval, recorder)
			srv := server.New(store, eng, manager, log)

			log.Infof(ctx, "listening on %s via %s", addr, backend)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&backend, "backend", "tcp", "transport backend: tcp, zmq, ws")
	cmd.Flags().StringVar(&wsPath, "ws-path", "/ws", "HTTP path for the ws backend")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	cmd.Flags().DurationVar(&interval, "sweep-interval", engine.DefaultInterval, "recomputation engine sweep interval")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func dialManager(backend, addr, wsPath string) (transport.Manager, error) {
	switch backend {
	case "tcp", "":
		return tcpline.Listen(addr)
	case "zmq":
		return zmqrep.Listen(addr)
	case "ws":
		return ws.Listen(addr, wsPath)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf(context.Background(), "metrics server stopped: %v", err)
	}
}

func newConnectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect <addr>",
		Short: "Connect to a running server as a raw terminal client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return connect(args[0])
		},
	}
	return cmd
}

// connect dials addr over TCP, puts the local terminal into raw mode if
// it is one, and pumps bytes in both directions until either side closes
// the connection.
func connect(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("sheetsrv: connect to %s: %w", addr, err)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s. Type commands (e.g. \"get A1\", \"set A1 5\") and press Enter.\n", addr)

	restore, raw := enableRawMode(os.Stdin)
	if raw {
		defer restore()
	}

	done := make(chan error, 2)
	go func() {
		_, copyErr := io.Copy(os.Stdout, conn)
		done <- copyErr
	}()
	go func() {
		_, copyErr := io.Copy(conn, os.Stdin)
		done <- copyErr
	}()

	if copyErr := <-done; copyErr != nil && !errors.Is(copyErr, io.EOF) && !errors.Is(copyErr, net.ErrClosed) {
		return fmt.Errorf("sheetsrv: connection stream failed: %w", copyErr)
	}
	return nil
}

func enableRawMode(stdin *os.File) (func() error, bool) {
	fd := int(stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, false
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, false
	}
	return func() error { return term.Restore(fd, state) }, true
}
