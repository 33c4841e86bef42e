package tools

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (p *Provider) accountTools() []server.ServerTool {
	return []server.ServerTool{
		p.define(mcp.NewTool("accounts",
			mcp.WithDescription("List all accounts of the Combell customer. An account is one product subscription (hosting, domain, mailbox) identified by its domain name."),
			pageSizeOption,
			mcp.WithString("asset_type",
				mcp.Description("Only return accounts of this asset type, for example linux_hosting or domain"),
			),
			mcp.WithString("identifier",
				mcp.Description("Only return accounts with this identifier, usually the domain name"),
			),
		), p.handleAccounts),

		p.define(mcp.NewTool("account",
			mcp.WithDescription("Get one account, either by its domain name or by its numeric id."),
			mcp.WithString("domain",
				mcp.Description("Domain name the account is registered under"),
			),
			mcp.WithNumber("account_id",
				mcp.Description("Numeric account id, used when domain is not given"),
			),
		), p.handleAccount),
	}
}

func (p *Provider) handleAccounts(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	size, err := pageSize(request, p.paginator.PageSize)
	if err != nil {
		return nil, err
	}

	filters := map[string]string{
		"asset_type": optionalText(request, "asset_type"),
		"identifier": optionalText(request, "identifier"),
	}
	records, err := p.collect(ctx, size, "accounts", pageFetch(api.ListAccounts, filters))
	if err != nil {
		return nil, err
	}
	return listing("accounts", records), nil
}

func (p *Provider) handleAccount(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	if domain := optionalText(request, "domain"); domain != "" {
		return p.accountByDomain(ctx, api, domain)
	}

	id := request.GetInt("account_id", 0)
	if id <= 0 {
		return nil, invalid("domain or account_id argument is required")
	}
	rec, err := api.GetAccount(ctx, id)
	if err != nil {
		return nil, lookupFailure(err, "account", "Account not found for id: "+strconv.Itoa(id))
	}
	return rec, nil
}

// accountByDomain scans every account and returns the first whose
// identifier equals domain.
func (p *Provider) accountByDomain(ctx context.Context, api Upstream, domain string) (any, error) {
	records, err := p.collect(ctx, p.paginator.PageSize, "accounts", pageFetch(api.ListAccounts, nil))
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if id, ok := rec.Text("identifier"); ok && id == domain {
			return rec, nil
		}
	}
	return nil, failure("Account not found for domain: %s", domain)
}
