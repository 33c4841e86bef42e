package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/config"
	"combell-mcp/pkg/logging"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultIdleTimeout is the default idle timeout for keepalive connections.
	DefaultIdleTimeout = 120 * time.Second

	sseKeepAliveInterval = 30 * time.Second
)

// Options wires the HTTP server to the rest of the application.
type Options struct {
	Config  config.Config
	MCP     *mcpserver.MCPServer
	Version string

	// Rejections counts auth gate rejections. Optional.
	Rejections RejectionRecorder
	// Gatherer backs the metrics endpoint. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// HTTPServer serves the MCP endpoints together with health, metrics and
// optionally the OAuth endpoints.
type HTTPServer struct {
	transport  string
	addr       string
	handler    http.Handler
	httpServer *http.Server
	sse        *mcpserver.SSEServer
	streamable *mcpserver.StreamableHTTPServer
	oauth      *OAuthGuard
}

// NewHTTPServer builds the mux for the streamable-http or sse transport.
func NewHTTPServer(opts Options) (*HTTPServer, error) {
	if opts.MCP == nil {
		return nil, fmt.Errorf("MCP server is required")
	}
	cfg := opts.Config
	s := &HTTPServer{
		transport: cfg.Server.Transport,
		addr:      net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Metrics.Enabled {
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.OAuth.Enabled {
		guard, err := NewOAuthGuard(cfg.OAuth, opts.Version)
		if err != nil {
			return nil, err
		}
		guard.RegisterRoutes(mux)
		s.oauth = guard
	}

	protect := func(h http.Handler) http.Handler {
		if cfg.Auth.Enabled {
			h = NewAuthGate(cfg.Auth, opts.Rejections).Wrap(h)
		}
		if s.oauth != nil {
			h = s.oauth.Protect(h)
		}
		return h
	}

	switch cfg.Server.Transport {
	case config.MCPTransportSSE:
		baseURL := cfg.Server.BaseURL
		if baseURL == "" {
			baseURL = "http://" + s.addr
		}
		s.sse = mcpserver.NewSSEServer(
			opts.MCP,
			mcpserver.WithBaseURL(baseURL),
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
			mcpserver.WithKeepAlive(true),
			mcpserver.WithKeepAliveInterval(sseKeepAliveInterval),
			mcpserver.WithSSEContextFunc(credentialContext),
		)
		mux.Handle("/sse", protect(s.sse))
		mux.Handle("/message", protect(s.sse))

	case config.MCPTransportStreamableHTTP, "":
		s.streamable = mcpserver.NewStreamableHTTPServer(
			opts.MCP,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithHTTPContextFunc(credentialContext),
		)
		mux.Handle("/mcp", protect(s.streamable))

	default:
		return nil, fmt.Errorf("unsupported HTTP transport: %s", cfg.Server.Transport)
	}

	s.handler = mux
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}
	return s, nil
}

// credentialContext carries the credentials accepted by the auth gate into
// the context the MCP server hands to tool handlers.
func credentialContext(ctx context.Context, r *http.Request) context.Context {
	if creds, ok := combell.CredentialsFromContext(r.Context()); ok {
		return combell.WithCredentials(ctx, creds)
	}
	return ctx
}

// Handler returns the root handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Addr is the configured listen address.
func (s *HTTPServer) Addr() string {
	return s.addr
}

// Serve accepts connections on ln until Shutdown is called.
func (s *HTTPServer) Serve(ln net.Listener) error {
	logging.Info("Server", "Serving MCP over %s on %s", s.transport, ln.Addr())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown closes MCP sessions and drains in-flight requests. Connections
// still open when ctx expires are closed forcibly.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	var errs []error

	if s.sse != nil {
		if err := s.sse.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sse: %w", err))
		}
	}
	if s.streamable != nil {
		if err := s.streamable.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("streamable http: %w", err))
		}
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Server", "Graceful shutdown incomplete: %v", err)
		_ = s.httpServer.Close()
	}

	if s.oauth != nil {
		if err := s.oauth.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ServeStdio serves the MCP server over in and out until ctx is done.
// No auth gate applies; tools use the configured Combell credentials.
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer, in io.Reader, out io.Writer) error {
	logging.Info("Server", "Serving MCP over stdio")
	stdio := mcpserver.NewStdioServer(s)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	return nil
}
