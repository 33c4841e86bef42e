package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/pagination"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// fakeUpstream serves canned records with real skip/take slicing.
type fakeUpstream struct {
	accounts  []combell.Record
	domains   []combell.Record
	dns       map[string][]combell.Record
	hostings  []combell.Record
	databases []combell.Record
	certs     []combell.Record

	listErr   map[string]error
	requests  []combell.PageRequest
	dnsDomain string
}

func slice(all []combell.Record, req combell.PageRequest) combell.Page {
	if req.Skip >= len(all) {
		return combell.Page{}
	}
	end := req.Skip + req.Take
	if end > len(all) {
		end = len(all)
	}
	return combell.Page{Items: all[req.Skip:end], Total: len(all)}
}

func (f *fakeUpstream) list(resource string, all []combell.Record, req combell.PageRequest) (combell.Page, error) {
	f.requests = append(f.requests, req)
	if err := f.listErr[resource]; err != nil && req.Skip > 0 {
		return combell.Page{}, err
	}
	if err := f.listErr[resource+"@0"]; err != nil {
		return combell.Page{}, err
	}
	return slice(all, req), nil
}

func find(all []combell.Record, key, value, resource string) (combell.Record, error) {
	for _, r := range all {
		if r.TextOr(key, "") == value {
			return r, nil
		}
	}
	return nil, &combell.NotFoundError{Resource: resource, Key: value}
}

func (f *fakeUpstream) ListAccounts(_ context.Context, req combell.PageRequest) (combell.Page, error) {
	return f.list("accounts", f.accounts, req)
}

func (f *fakeUpstream) GetAccount(_ context.Context, id int) (combell.Record, error) {
	for _, r := range f.accounts {
		if n, ok := r.Int("id"); ok && n == id {
			return r, nil
		}
	}
	return nil, &combell.NotFoundError{Resource: "accounts"}
}

func (f *fakeUpstream) ListDomains(_ context.Context, req combell.PageRequest) (combell.Page, error) {
	return f.list("domains", f.domains, req)
}

func (f *fakeUpstream) GetDomain(_ context.Context, name string) (combell.Record, error) {
	return find(f.domains, "domain_name", name, "domains")
}

func (f *fakeUpstream) ListDNSRecords(_ context.Context, domain string, req combell.PageRequest) (combell.Page, error) {
	f.dnsDomain = domain
	return f.list("dns:"+domain, f.dns[domain], req)
}

func (f *fakeUpstream) ListLinuxHostings(_ context.Context, req combell.PageRequest) (combell.Page, error) {
	return f.list("linuxhostings", f.hostings, req)
}

func (f *fakeUpstream) GetLinuxHosting(_ context.Context, domain string) (combell.Record, error) {
	return find(f.hostings, "domain_name", domain, "linuxhostings")
}

func (f *fakeUpstream) ListMySQLDatabases(_ context.Context, req combell.PageRequest) (combell.Page, error) {
	return f.list("mysqldatabases", f.databases, req)
}

func (f *fakeUpstream) GetMySQLDatabase(_ context.Context, name string) (combell.Record, error) {
	if err := f.listErr["get:mysqldatabases"]; err != nil {
		return nil, err
	}
	return find(f.databases, "name", name, "mysqldatabases")
}

func (f *fakeUpstream) ListSSLCertificates(_ context.Context, req combell.PageRequest) (combell.Page, error) {
	return f.list("sslcertificates", f.certs, req)
}

func newTestProvider(up *fakeUpstream, opts ...Option) *Provider {
	factory := func(context.Context) (Upstream, error) { return up, nil }
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewProvider(factory, opts...)
}

func callTool(t *testing.T, p *Provider, name string, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	tool, ok := p.Tool(name)
	require.True(t, ok, "tool %s not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return result, text.Text
}

func decode(t *testing.T, text string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func expectError(t *testing.T, p *Provider, name string, args map[string]any, message string) {
	t.Helper()
	result, text := callTool(t, p, name, args)
	assert.True(t, result.IsError)
	assert.Equal(t, map[string]any{"error": message}, decode(t, text))
}

func records(n int, prefix string) []combell.Record {
	out := make([]combell.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, combell.Record{"id": i + 1, "identifier": prefix + strconv.Itoa(i+1) + ".be"})
	}
	return out
}

func TestProvider_ToolNames(t *testing.T) {
	p := newTestProvider(&fakeUpstream{})

	var names []string
	for _, tool := range p.Tools() {
		names = append(names, tool.Tool.Name)
	}
	assert.Equal(t, []string{
		"accounts", "account",
		"domains", "domain", "dns_records",
		"linux_hostings", "linux_hosting",
		"mysql_databases", "database",
		"ssl_certificates",
		"domain_health", "hosting_overview",
	}, names)
}

func TestAccounts_PaginatesAndFilters(t *testing.T) {
	up := &fakeUpstream{accounts: records(5, "site")}
	p := newTestProvider(up)

	result, text := callTool(t, p, "accounts", map[string]any{
		"page_size":  float64(2),
		"asset_type": "linux_hosting",
		"identifier": nil,
	})
	require.False(t, result.IsError)

	out := decode(t, text)
	assert.Equal(t, float64(5), out["total_count"])
	assert.Len(t, out["accounts"], 5)

	require.Len(t, up.requests, 3)
	assert.Equal(t, 0, up.requests[0].Skip)
	assert.Equal(t, 2, up.requests[1].Skip)
	assert.Equal(t, 4, up.requests[2].Skip)
	assert.Equal(t, "linux_hosting", up.requests[0].Filters["asset_type"])
	assert.Equal(t, "", up.requests[0].Filters["identifier"])
}

func TestAccounts_DefaultPageSize(t *testing.T) {
	up := &fakeUpstream{}
	p := newTestProvider(up)

	_, text := callTool(t, p, "accounts", nil)
	out := decode(t, text)
	assert.Equal(t, []any{}, out["accounts"])
	assert.Equal(t, float64(0), out["total_count"])
	require.Len(t, up.requests, 1)
	assert.Equal(t, pagination.DefaultPageSize, up.requests[0].Take)
}

func TestAccounts_InvalidPageSize(t *testing.T) {
	p := newTestProvider(&fakeUpstream{})
	expectError(t, p, "accounts", map[string]any{"page_size": float64(0)}, "page_size must be a positive integer")
}

func TestAccounts_PartialResultByDefault(t *testing.T) {
	up := &fakeUpstream{
		accounts: records(5, "site"),
		listErr:  map[string]error{"accounts": errors.New("502 bad gateway")},
	}
	p := newTestProvider(up)

	result, text := callTool(t, p, "accounts", map[string]any{"page_size": float64(2)})
	require.False(t, result.IsError)
	out := decode(t, text)
	assert.Equal(t, float64(2), out["total_count"])
}

func TestAccounts_StrictPagination(t *testing.T) {
	up := &fakeUpstream{
		accounts: records(5, "site"),
		listErr:  map[string]error{"accounts": errors.New("502 bad gateway")},
	}
	p := newTestProvider(up, WithPaginator(&pagination.Paginator{PageSize: 2, Strict: true}))

	result, text := callTool(t, p, "accounts", nil)
	assert.True(t, result.IsError)
	assert.Contains(t, decode(t, text)["error"], "Failed to list accounts")
	assert.Contains(t, decode(t, text)["error"], "502 bad gateway")
}

func TestAccount_ByDomain(t *testing.T) {
	accounts := records(3, "site")
	accounts = append(accounts, combell.Record{"id": 99, "identifier": "site2.be", "note": "duplicate"})
	up := &fakeUpstream{accounts: accounts}
	p := newTestProvider(up, WithPaginator(pagination.New(2)))

	result, text := callTool(t, p, "account", map[string]any{"domain": "site2.be"})
	require.False(t, result.IsError)
	out := decode(t, text)
	assert.Equal(t, float64(2), out["id"], "first match wins")
}

func TestAccount_NotFound(t *testing.T) {
	p := newTestProvider(&fakeUpstream{accounts: records(3, "site")})
	expectError(t, p, "account", map[string]any{"domain": "missing.be"}, "Account not found for domain: missing.be")
}

func TestAccount_ByID(t *testing.T) {
	p := newTestProvider(&fakeUpstream{accounts: records(3, "site")})

	_, text := callTool(t, p, "account", map[string]any{"account_id": float64(3)})
	assert.Equal(t, "site3.be", decode(t, text)["identifier"])

	expectError(t, p, "account", map[string]any{"account_id": float64(42)}, "Account not found for id: 42")
}

func TestAccount_Validation(t *testing.T) {
	p := newTestProvider(&fakeUpstream{})
	expectError(t, p, "account", map[string]any{}, "domain or account_id argument is required")
	expectError(t, p, "account", map[string]any{"domain": "  "}, "domain or account_id argument is required")
}

func TestLinuxHosting(t *testing.T) {
	up := &fakeUpstream{hostings: []combell.Record{
		{"domain_name": "a.be", "php_version": "8.3"},
		{"domain_name": "b.be"},
	}}
	p := newTestProvider(up)

	_, text := callTool(t, p, "linux_hosting", map[string]any{"domain": "a.be"})
	assert.Equal(t, "8.3", decode(t, text)["php_version"])

	expectError(t, p, "linux_hosting", map[string]any{"domain": "c.be"}, "Linux hosting not found for domain: c.be")
	expectError(t, p, "linux_hosting", nil, "domain argument is required")

	_, text = callTool(t, p, "linux_hostings", nil)
	out := decode(t, text)
	assert.Equal(t, float64(2), out["total_count"])
	assert.Len(t, out["linux_hostings"], 2)
}

func TestDatabase(t *testing.T) {
	up := &fakeUpstream{databases: []combell.Record{{"name": "shop_db", "account_id": 7}}}
	p := newTestProvider(up)

	_, text := callTool(t, p, "database", map[string]any{"database_name": "shop_db"})
	assert.Equal(t, float64(7), decode(t, text)["account_id"])

	expectError(t, p, "database", map[string]any{"database_name": "nope"}, "Database not found for name: nope")
	expectError(t, p, "database", map[string]any{"database_name": ""}, "database_name argument must not be empty")

	up.listErr = map[string]error{"get:mysqldatabases": errors.New("connection reset")}
	result, text := callTool(t, p, "database", map[string]any{"database_name": "shop_db"})
	assert.True(t, result.IsError)
	assert.Equal(t, "Failed to fetch database: connection reset", decode(t, text)["error"])
}

func TestMySQLDatabases_AccountFilter(t *testing.T) {
	up := &fakeUpstream{databases: []combell.Record{{"name": "a"}, {"name": "b"}}}
	p := newTestProvider(up)

	_, text := callTool(t, p, "mysql_databases", map[string]any{"account_id": float64(7)})
	out := decode(t, text)
	assert.Equal(t, float64(2), out["total_count"])
	assert.Equal(t, "7", up.requests[0].Filters["account_id"])
}

func TestDNSRecords(t *testing.T) {
	up := &fakeUpstream{dns: map[string][]combell.Record{
		"a.be": {{"type": "A"}, {"type": "MX"}},
	}}
	p := newTestProvider(up)

	_, text := callTool(t, p, "dns_records", map[string]any{
		"domain":      "a.be",
		"type":        "MX",
		"record_name": nil,
	})
	out := decode(t, text)
	assert.Equal(t, float64(2), out["total_count"])
	assert.Len(t, out["records"], 2)
	assert.Equal(t, "a.be", up.dnsDomain)
	assert.Equal(t, "MX", up.requests[0].Filters["type"])
	assert.Equal(t, "", up.requests[0].Filters["record_name"])

	expectError(t, p, "dns_records", nil, "domain argument is required")
}

func TestDomainAndCertificateListings(t *testing.T) {
	up := &fakeUpstream{
		domains: []combell.Record{{"domain_name": "a.be"}},
		certs:   []combell.Record{{"common_name": "a.be"}, {"common_name": "b.be"}},
	}
	p := newTestProvider(up)

	_, text := callTool(t, p, "domains", nil)
	assert.Equal(t, float64(1), decode(t, text)["total_count"])

	_, text = callTool(t, p, "domain", map[string]any{"domain": "a.be"})
	assert.Equal(t, "a.be", decode(t, text)["domain_name"])
	expectError(t, p, "domain", map[string]any{"domain": "z.be"}, "Domain not found: z.be")

	_, text = callTool(t, p, "ssl_certificates", nil)
	out := decode(t, text)
	assert.Equal(t, float64(2), out["total_count"])
	assert.Len(t, out["certificates"], 2)
}

func TestDomainHealth_EndToEnd(t *testing.T) {
	fullDNS := []combell.Record{{"type": "A"}, {"type": "MX"}, {"type": "NS"}}
	up := &fakeUpstream{
		domains: []combell.Record{
			{"domain_name": "healthy.be", "expiration_date": fixedNow.AddDate(1, 0, 0).Format(time.RFC3339)},
			{"domain_name": "soon.be", "expiration_date": fixedNow.AddDate(0, 0, 10).Format(time.RFC3339)},
		},
		dns: map[string][]combell.Record{"healthy.be": fullDNS, "soon.be": fullDNS},
	}
	p := newTestProvider(up)

	result, text := callTool(t, p, "domain_health", nil)
	require.False(t, result.IsError)

	out := decode(t, text)
	assert.Equal(t, map[string]any{
		"total_domains":         float64(2),
		"healthy_domains":       float64(1),
		"domains_with_issues":   float64(1),
		"domains_expiring_soon": float64(1),
	}, out["summary"])

	domains := out["domains"].([]any)
	require.Len(t, domains, 2)
	soon := domains[1].(map[string]any)
	assert.Equal(t, "soon.be", soon["domain_name"])
	assert.Equal(t, []any{"Domain expires in 10 days"}, soon["issues"])
	assert.Equal(t, float64(10), soon["days_until_expiry"])
}

func TestDomainHealth_DNSFailure(t *testing.T) {
	up := &fakeUpstream{
		domains: []combell.Record{{"domain_name": "broken.be"}},
		listErr: map[string]error{"dns:broken.be@0": errors.New("500 internal error")},
	}
	p := newTestProvider(up)

	result, text := callTool(t, p, "domain_health", nil)
	require.False(t, result.IsError)
	domain := decode(t, text)["domains"].([]any)[0].(map[string]any)
	issues := domain["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "Unable to check DNS records: ")
	assert.Contains(t, issues[0], "500 internal error")
}

func TestHostingOverview_EndToEnd(t *testing.T) {
	const gb = 1024 * 1024 * 1024
	up := &fakeUpstream{
		hostings: []combell.Record{
			{"domain_name": "a.be", "disk_usage": 95 * gb, "disk_limit": 100 * gb},
			{"domain_name": "b.be", "disk_usage": 10 * gb, "disk_limit": 100 * gb},
		},
		certs: []combell.Record{{"common_name": "b.be", "expiration_date": "2030-01-01"}},
	}
	p := newTestProvider(up)

	result, text := callTool(t, p, "hosting_overview", nil)
	require.False(t, result.IsError)

	out := decode(t, text)
	assert.Equal(t, map[string]any{
		"total_accounts":       float64(2),
		"total_databases":      float64(0),
		"accounts_with_issues": float64(2),
		"healthy_accounts":     float64(0),
	}, out["summary"])

	accounts := out["hosting_accounts"].([]any)
	first := accounts[0].(map[string]any)
	assert.Equal(t, []any{"Disk usage over 90%", "No databases configured", "No SSL certificate configured"}, first["issues"])
	second := accounts[1].(map[string]any)
	assert.Equal(t, true, second["ssl_status"].(map[string]any)["has_ssl"])
	assert.Equal(t, "unknown", second["php_version"])
	assert.Nil(t, second["servicepack_id"])
}

func TestClientFactoryFailure(t *testing.T) {
	factory := func(context.Context) (Upstream, error) { return nil, ErrNoCredentials }
	p := NewProvider(factory)

	result, text := callTool(t, p, "domains", nil)
	assert.True(t, result.IsError)
	assert.Equal(t, ErrNoCredentials.Error(), decode(t, text)["error"])
}

func TestNewClientFactory(t *testing.T) {
	fallback := combell.Credentials{APIKey: "cfg-key", APISecret: "cfg-secret"}
	factory := NewClientFactory("https://api.example.test/v2", fallback, nil, nil)

	api, err := factory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, api)

	ctx := combell.WithCredentials(context.Background(), combell.Credentials{APIKey: "req-key", APISecret: "req-secret"})
	api, err = factory(ctx)
	require.NoError(t, err)
	assert.NotNil(t, api)

	_, err = NewClientFactory("", combell.Credentials{}, nil, nil)(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer(newTestProvider(&fakeUpstream{}), "1.2.3")
	assert.NotNil(t, s)
}
