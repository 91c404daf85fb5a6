package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/logging"
)

// Transport selects the mechanism used to expose the MCP server.
type Transport string

const (
	// TransportHTTP serves MCP via the streamable HTTP transport.
	TransportHTTP Transport = "http"
	// TransportStdio serves MCP over stdio.
	TransportStdio Transport = "stdio"
)

const (
	// DefaultHTTPAddr is used when no listen address is configured.
	DefaultHTTPAddr = "127.0.0.1:8080"
	shutdownGrace   = 5 * time.Second
)

// Runner coordinates MCP server startup.
type Runner struct {
	Dispatcher *app.Dispatcher
	Name       string
	Version    string

	Transport        Transport
	HTTPListenAddr   string
	HTTPEndpointPath string
	OnHTTPListening  func(net.Addr)
	HTTPServerCert   string
	HTTPServerKey    string
}

// NewServer builds an MCP server with one tool per dispatcher action and
// read-only agenda and streak resources.
func NewServer(d *app.Dispatcher, name, version string) *server.MCPServer {
	if name == "" {
		name = "daybook"
	}
	if version == "" {
		version = "dev"
	}
	srv := server.NewMCPServer(
		fmt.Sprintf("%s MCP", name),
		version,
		server.WithResourceCapabilities(false, false),
		server.WithToolCapabilities(false),
		server.WithInstructions("Read the daybook agenda and streaks, toggle tasks, and check in habits."),
		server.WithResourceRecovery(),
		server.WithRecovery(),
	)
	registerResources(srv, d)
	registerTools(srv, d)
	return srv
}

// Do executes the runner.
func (r Runner) Do(ctx context.Context) error {
	if r.Dispatcher == nil {
		return errors.New("mcp runner requires a dispatcher")
	}
	srv := NewServer(r.Dispatcher, r.Name, r.Version)

	switch t := r.Transport; t {
	case "", TransportHTTP:
		return r.serveHTTP(ctx, srv)
	case TransportStdio:
		stdio := server.NewStdioServer(srv)
		stdio.SetErrorLogger(log.New(os.Stderr, "mcp: ", log.LstdFlags))
		err := stdio.Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown MCP transport %q", t)
	}
}

// endpointPath is HTTPEndpointPath with a leading slash, "/mcp" when unset.
func (r Runner) endpointPath() string {
	path := strings.TrimSpace(r.HTTPEndpointPath)
	switch {
	case path == "":
		return "/mcp"
	case !strings.HasPrefix(path, "/"):
		return "/" + path
	}
	return path
}

func (r Runner) useTLS() (bool, error) {
	switch {
	case r.HTTPServerCert == "" && r.HTTPServerKey == "":
		return false, nil
	case r.HTTPServerCert == "" || r.HTTPServerKey == "":
		return false, errors.New("mcp: both http tls cert and key must be provided")
	}
	return true, nil
}

func (r Runner) serveHTTP(ctx context.Context, srv *server.MCPServer) error {
	tls, err := r.useTLS()
	if err != nil {
		return err
	}
	addr := r.HTTPListenAddr
	if addr == "" {
		addr = DefaultHTTPAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("mcp: listen %s: %w", addr, err)
	}
	if r.OnHTTPListening != nil {
		r.OnHTTPListening(ln.Addr())
	}

	mux := http.NewServeMux()
	mux.Handle(r.endpointPath(), server.NewStreamableHTTPServer(srv))
	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-stopped:
			return
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logging.Warnf("mcp: shutdown: %v", err)
		}
	}()

	if tls {
		err = httpSrv.ServeTLS(ln, r.HTTPServerCert, r.HTTPServerKey)
	} else {
		err = httpSrv.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
