package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/metrics"
	"combell-mcp/internal/pagination"
	"combell-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is announced to MCP clients during initialization.
const ServerName = "Combell Server"

// Instructions tells the model which tool answers which question.
const Instructions = `This server exposes the Combell hosting API.

Use domain_health for an overview of domain expiry and DNS problems and
hosting_overview for disk, bandwidth and SSL status of hosting accounts.
Both replace many individual calls.

Use accounts, domains, linux_hostings, mysql_databases, ssl_certificates and
dns_records to list resources, and account, domain, linux_hosting and
database to fetch a single one. Listings are complete: pagination is handled
by the server.`

// Upstream is the subset of the Combell API the tools call. *combell.Client
// implements it.
type Upstream interface {
	ListAccounts(ctx context.Context, req combell.PageRequest) (combell.Page, error)
	GetAccount(ctx context.Context, id int) (combell.Record, error)
	ListDomains(ctx context.Context, req combell.PageRequest) (combell.Page, error)
	GetDomain(ctx context.Context, name string) (combell.Record, error)
	ListDNSRecords(ctx context.Context, domain string, req combell.PageRequest) (combell.Page, error)
	ListLinuxHostings(ctx context.Context, req combell.PageRequest) (combell.Page, error)
	GetLinuxHosting(ctx context.Context, domain string) (combell.Record, error)
	ListMySQLDatabases(ctx context.Context, req combell.PageRequest) (combell.Page, error)
	GetMySQLDatabase(ctx context.Context, name string) (combell.Record, error)
	ListSSLCertificates(ctx context.Context, req combell.PageRequest) (combell.Page, error)
}

// ClientFactory returns the upstream client for one tool call.
type ClientFactory func(ctx context.Context) (Upstream, error)

// ErrNoCredentials is returned when neither the request nor the
// configuration provides Combell credentials.
var ErrNoCredentials = errors.New("no Combell API credentials available")

// NewClientFactory builds a client per call from the credentials the auth
// gate attached to ctx, falling back to the configured pair.
func NewClientFactory(baseURL string, fallback combell.Credentials, httpClient *http.Client, observer combell.Observer) ClientFactory {
	return func(ctx context.Context) (Upstream, error) {
		creds, ok := combell.CredentialsFromContext(ctx)
		if !ok {
			if !fallback.Valid() {
				return nil, ErrNoCredentials
			}
			creds = fallback
		}

		opts := []combell.Option{combell.WithHTTPClient(httpClient)}
		if observer != nil {
			opts = append(opts, combell.WithObserver(observer))
		}
		return combell.NewClient(baseURL, creds, opts...)
	}
}

// Provider owns the tool definitions and their handlers.
type Provider struct {
	clients   ClientFactory
	paginator *pagination.Paginator
	metrics   *metrics.Collector
	now       func() time.Time
	tools     []server.ServerTool
}

// Option configures a Provider.
type Option func(*Provider)

// WithPaginator sets page size and failure policy for listings.
func WithPaginator(p *pagination.Paginator) Option {
	return func(pr *Provider) {
		if p != nil {
			pr.paginator = p
		}
	}
}

// WithMetrics records tool calls.
func WithMetrics(m *metrics.Collector) Option {
	return func(pr *Provider) { pr.metrics = m }
}

// WithClock replaces time.Now for the health reports.
func WithClock(now func() time.Time) Option {
	return func(pr *Provider) {
		if now != nil {
			pr.now = now
		}
	}
}

// NewProvider defines every tool.
func NewProvider(clients ClientFactory, opts ...Option) *Provider {
	p := &Provider{
		clients:   clients,
		paginator: pagination.New(pagination.DefaultPageSize),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.tools = append(p.tools, p.accountTools()...)
	p.tools = append(p.tools, p.domainTools()...)
	p.tools = append(p.tools, p.hostingTools()...)
	p.tools = append(p.tools, p.databaseTools()...)
	p.tools = append(p.tools, p.certificateTools()...)
	p.tools = append(p.tools, p.insightTools()...)
	return p
}

// Tools returns the tool definitions in registration order.
func (p *Provider) Tools() []server.ServerTool {
	return p.tools
}

// Tool looks up one tool by name.
func (p *Provider) Tool(name string) (server.ServerTool, bool) {
	for _, t := range p.tools {
		if t.Tool.Name == name {
			return t, true
		}
	}
	return server.ServerTool{}, false
}

// Register adds all tools to s.
func (p *Provider) Register(s *server.MCPServer) {
	for _, t := range p.tools {
		s.AddTool(t.Tool, t.Handler)
	}
	logging.Debug("Tools", "Registered %d tools", len(p.tools))
}

// NewMCPServer returns an MCP server with every tool registered.
func NewMCPServer(p *Provider, version string) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
		server.WithInstructions(Instructions),
		server.WithRecovery(),
	)
	p.Register(s)
	return s
}

// handlerFunc does the work of one tool. A returned error is shown to the
// caller verbatim.
type handlerFunc func(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error)

func (p *Provider) define(tool mcp.Tool, h handlerFunc) server.ServerTool {
	return server.ServerTool{Tool: tool, Handler: p.wrap(tool.Name, h)}
}

func (p *Provider) wrap(name string, h handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result := p.run(ctx, name, h, request)

		outcome := metrics.OutcomeSuccess
		if result.IsError {
			outcome = metrics.OutcomeError
		}
		p.metrics.ObserveTool(name, outcome, time.Since(start))
		logging.Debug("Tools", "%s finished with %s in %s", name, outcome, time.Since(start).Round(time.Millisecond))
		return result, nil
	}
}

func (p *Provider) run(ctx context.Context, name string, h handlerFunc, request mcp.CallToolRequest) *mcp.CallToolResult {
	api, err := p.clients(ctx)
	if err != nil {
		logging.Warn("Tools", "No upstream client for %s: %v", name, err)
		return errorResult(err.Error())
	}

	payload, err := h(ctx, api, request)
	if err != nil {
		var ve *validationError
		if !errors.As(err, &ve) {
			logging.Error("Tools", err, "Tool %s failed", name)
		}
		return errorResult(err.Error())
	}
	return jsonResult(payload)
}

func jsonResult(payload any) *mcp.CallToolResult {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

func errorResult(message string) *mcp.CallToolResult {
	data, _ := json.Marshal(map[string]string{"error": message})
	return mcp.NewToolResultError(string(data))
}
