package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"combell-mcp/internal/config"
	"combell-mcp/internal/server"
	"combell-mcp/pkg/logging"
)

// Run serves the configured transport until ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.settings.Server.Transport == config.MCPTransportStdio {
		notifySystemd(daemon.SdNotifyReady)
		defer notifySystemd(daemon.SdNotifyStopping)
		return server.ServeStdio(ctx, a.mcp, os.Stdin, os.Stdout)
	}

	srv, err := a.newHTTPServer()
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr(), err)
	}
	return a.serve(ctx, srv, ln)
}

func (a *Application) newHTTPServer() (*server.HTTPServer, error) {
	return server.NewHTTPServer(server.Options{
		Config:     a.settings,
		MCP:        a.mcp,
		Version:    a.config.Version,
		Rejections: a.metrics,
		Gatherer:   a.registry,
	})
}

// serve runs srv on ln next to a watcher that shuts it down once ctx is done.
func (a *Application) serve(ctx context.Context, srv *server.HTTPServer, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(ln)
	})

	g.Go(func() error {
		<-gctx.Done()
		notifySystemd(daemon.SdNotifyStopping)
		logging.Info("Server", "Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.settings.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	notifySystemd(daemon.SdNotifyReady)
	logging.Info("Server", "combell-mcp %s listening on %s", a.config.Version, ln.Addr())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// notifySystemd is a no-op outside systemd.
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Server", "systemd notification %q failed: %v", state, err)
		return
	}
	if sent {
		logging.Debug("Server", "Sent %q to systemd", state)
	}
}
