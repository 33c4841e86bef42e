package tools

import (
	"context"

	"combell-mcp/internal/combell"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (p *Provider) domainTools() []server.ServerTool {
	return []server.ServerTool{
		p.define(mcp.NewTool("domains",
			mcp.WithDescription("List all registered domains with their expiration date and renewal setting."),
			pageSizeOption,
		), p.handleDomains),

		p.define(mcp.NewTool("domain",
			mcp.WithDescription("Get the registration details of one domain, including name servers."),
			mcp.WithString("domain",
				mcp.Required(),
				mcp.Description("Domain name, for example example.com"),
			),
		), p.handleDomain),

		p.define(mcp.NewTool("dns_records",
			mcp.WithDescription("List the DNS records of a domain, optionally filtered by type, record name or service."),
			mcp.WithString("domain",
				mcp.Required(),
				mcp.Description("Domain whose zone to read"),
			),
			mcp.WithString("type",
				mcp.Description("Record type filter such as A, AAAA, CNAME, MX, TXT, NS, SRV"),
			),
			mcp.WithString("record_name",
				mcp.Description("Record name filter, for example www"),
			),
			mcp.WithString("service",
				mcp.Description("Service filter for SRV records, for example _sip"),
			),
			pageSizeOption,
		), p.handleDNSRecords),
	}
}

func (p *Provider) handleDomains(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	size, err := pageSize(request, p.paginator.PageSize)
	if err != nil {
		return nil, err
	}
	records, err := p.collect(ctx, size, "domains", pageFetch(api.ListDomains, nil))
	if err != nil {
		return nil, err
	}
	return listing("domains", records), nil
}

func (p *Provider) handleDomain(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	domain, err := requireText(request, "domain")
	if err != nil {
		return nil, err
	}
	rec, err := api.GetDomain(ctx, domain)
	if err != nil {
		return nil, lookupFailure(err, "domain", "Domain not found: "+domain)
	}
	return rec, nil
}

func (p *Provider) handleDNSRecords(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	domain, err := requireText(request, "domain")
	if err != nil {
		return nil, err
	}
	size, err := pageSize(request, p.paginator.PageSize)
	if err != nil {
		return nil, err
	}

	filters := map[string]string{
		"type":        optionalText(request, "type"),
		"record_name": optionalText(request, "record_name"),
		"service":     optionalText(request, "service"),
	}
	list := func(ctx context.Context, req combell.PageRequest) (combell.Page, error) {
		return api.ListDNSRecords(ctx, domain, req)
	}
	records, err := p.collect(ctx, size, "DNS records", pageFetch(list, filters))
	if err != nil {
		return nil, err
	}
	return listing("records", records), nil
}
