package tools

import (
	"context"

	"combell-mcp/internal/insights"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (p *Provider) certificateTools() []server.ServerTool {
	return []server.ServerTool{
		p.define(mcp.NewTool("ssl_certificates",
			mcp.WithDescription("List SSL certificates with common name, subject alternative names and expiration date."),
			pageSizeOption,
		), p.handleSSLCertificates),
	}
}

func (p *Provider) insightTools() []server.ServerTool {
	return []server.ServerTool{
		p.define(mcp.NewTool("domain_health",
			mcp.WithDescription(`Health overview of every domain: expiration status and basic DNS records.

Returns domains (one report per domain with issues, days_until_expiry,
expiring_soon and dns_health) and summary (total_domains, healthy_domains,
domains_with_issues, domains_expiring_soon). Domains expiring within 30 days
are reported as issues, within 90 days as expiring soon.`),
		), p.handleDomainHealth),

		p.define(mcp.NewTool("hosting_overview",
			mcp.WithDescription(`Overview of every Linux hosting account: SSL coverage, disk and bandwidth usage.

Returns hosting_accounts (one report per hosting with ssl_status, usage and
issues) and summary (total_accounts, total_databases, accounts_with_issues,
healthy_accounts). Usage above 90% is reported as an issue. Databases are
not linked to hostings by the API, so the databases list is always empty.`),
		), p.handleHostingOverview),
	}
}

func (p *Provider) handleSSLCertificates(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	size, err := pageSize(request, p.paginator.PageSize)
	if err != nil {
		return nil, err
	}
	records, err := p.collect(ctx, size, "SSL certificates", pageFetch(api.ListSSLCertificates, nil))
	if err != nil {
		return nil, err
	}
	return listing("certificates", records), nil
}

func (p *Provider) handleDomainHealth(ctx context.Context, api Upstream, _ mcp.CallToolRequest) (any, error) {
	domains, err := p.collect(ctx, p.paginator.PageSize, "domains", pageFetch(api.ListDomains, nil))
	if err != nil {
		return nil, err
	}

	analyzer := &insights.DomainAnalyzer{DNS: api, Paginator: p.paginator, Now: p.now}
	return analyzer.Analyze(ctx, domains), nil
}

func (p *Provider) handleHostingOverview(ctx context.Context, api Upstream, _ mcp.CallToolRequest) (any, error) {
	hostings, err := p.collect(ctx, p.paginator.PageSize, "Linux hostings", pageFetch(api.ListLinuxHostings, nil))
	if err != nil {
		return nil, err
	}

	analyzer := &insights.HostingAnalyzer{Certificates: api, Paginator: p.paginator, Now: p.now}
	return analyzer.Analyze(ctx, hostings), nil
}
