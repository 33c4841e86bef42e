package tools

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (p *Provider) databaseTools() []server.ServerTool {
	return []server.ServerTool{
		p.define(mcp.NewTool("mysql_databases",
			mcp.WithDescription("List MySQL databases, optionally only those of one account."),
			mcp.WithNumber("account_id",
				mcp.Description("Only return databases of this account id"),
			),
			pageSizeOption,
		), p.handleMySQLDatabases),

		p.define(mcp.NewTool("database",
			mcp.WithDescription("Get the details of one MySQL database: hostname, size, user count and owning account."),
			mcp.WithString("database_name",
				mcp.Required(),
				mcp.Description("Name of the database"),
			),
		), p.handleDatabase),
	}
}

func (p *Provider) handleMySQLDatabases(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	size, err := pageSize(request, p.paginator.PageSize)
	if err != nil {
		return nil, err
	}

	filters := map[string]string{}
	if id := request.GetInt("account_id", 0); id > 0 {
		filters["account_id"] = strconv.Itoa(id)
	}
	records, err := p.collect(ctx, size, "MySQL databases", pageFetch(api.ListMySQLDatabases, filters))
	if err != nil {
		return nil, err
	}
	return listing("databases", records), nil
}

func (p *Provider) handleDatabase(ctx context.Context, api Upstream, request mcp.CallToolRequest) (any, error) {
	name, err := requireText(request, "database_name")
	if err != nil {
		return nil, err
	}
	rec, err := api.GetMySQLDatabase(ctx, name)
	if err != nil {
		return nil, lookupFailure(err, "database", "Database not found for name: "+name)
	}
	return rec, nil
}
