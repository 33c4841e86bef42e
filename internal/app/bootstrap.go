package app

import (
	"fmt"
	"io"
	"net/http"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/config"
	"combell-mcp/internal/metrics"
	"combell-mcp/internal/pagination"
	"combell-mcp/internal/tools"
	"combell-mcp/pkg/logging"
)

// Application holds everything a running combell-mcp needs.
//
// Bootstrap happens in NewApplication, serving in Run:
//
//	application, err := app.NewApplication(app.NewConfig(path, ".env", false, version))
//	if err != nil {
//		return err
//	}
//	return application.Run(ctx)
type Application struct {
	config   *Config
	settings config.Config
	registry *prometheus.Registry
	metrics  *metrics.Collector
	provider *tools.Provider
	mcp      *mcpserver.MCPServer
}

// NewApplication loads the configuration, initialises logging and metrics
// and builds the MCP server with every tool registered.
func NewApplication(cfg *Config) (*Application, error) {
	settings, err := LoadSettings(cfg)
	if err != nil {
		return nil, err
	}
	return newApplication(cfg, settings, os.Stderr)
}

func newApplication(cfg *Config, settings config.Config, logOutput io.Writer) (*Application, error) {
	level, ok := logging.ParseLevel(settings.Logging.Level)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", settings.Logging.Level)
	}
	logging.Init(level, logging.Format(settings.Logging.Format), logOutput)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	httpClient := &http.Client{Timeout: settings.Combell.Timeout}
	fallback := combell.Credentials{
		APIKey:    settings.Combell.APIKey,
		APISecret: settings.Combell.APISecret,
	}
	clients := tools.NewClientFactory(settings.Combell.BaseURL, fallback, httpClient, collector)

	paginator := &pagination.Paginator{
		PageSize: settings.Pagination.PageSize,
		Strict:   settings.Pagination.Strict,
		MaxPages: settings.Pagination.MaxPages,
	}
	provider := tools.NewProvider(clients,
		tools.WithPaginator(paginator),
		tools.WithMetrics(collector),
	)

	logging.Info("Bootstrap", "Combell API %s, fallback key %s, page size %d, strict=%t",
		settings.Combell.BaseURL, orNone(logging.Redact(fallback.APIKey)), paginator.PageSize, paginator.Strict)

	return &Application{
		config:   cfg,
		settings: settings,
		registry: registry,
		metrics:  collector,
		provider: provider,
		mcp:      tools.NewMCPServer(provider, cfg.Version),
	}, nil
}

// Settings returns the effective configuration.
func (a *Application) Settings() config.Config {
	return a.settings
}

// MCPServer returns the MCP server with every tool registered.
func (a *Application) MCPServer() *mcpserver.MCPServer {
	return a.mcp
}

// Provider returns the tool provider.
func (a *Application) Provider() *tools.Provider {
	return a.provider
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
