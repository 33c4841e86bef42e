package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (p *Provider) hostingTools() []server.ServerTool {
	return []server.ServerTool{
		p.define(mcp.NewTool("linux_hostings",
			mcp.WithDescription("List all Linux hosting accounts."),
			pageSizeOption,
		), p.handleLinuxHostings),

		p.define(mcp.NewTool("linux_hosting",
			mcp.WithDescription("Get the details of one Linux hosting: PHP version, FTP and SSH settings, sites and usage."),
			mcp.WithString("domain",
				mcp.Required(),
				mcp.Description("Domain name of the hosting account"),
			),
		), p.handleLinuxHosting),
	}
}

func (p *Provider) handleLinuxHostings(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	size, err := pageSize(request, p.paginator.PageSize)
	if err != nil {
		return nil, err
	}
	records, err := p.collect(ctx, size, "Linux hostings", pageFetch(api.ListLinuxHostings, nil))
	if err != nil {
		return nil, err
	}
	return listing("linux_hostings", records), nil
}

func (p *Provider) handleLinuxHosting(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	domain, err := requireText(request, "domain")
	if err != nil {
		return nil, err
	}
	rec, err := api.GetLinuxHosting(ctx, domain)
	if err != nil {
		return nil, lookupFailure(err, "Linux hosting", "Linux hosting not found for domain: "+domain)
	}
	return rec, nil
}
