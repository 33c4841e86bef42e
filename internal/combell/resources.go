package combell

import (
	"context"
	"strconv"
)

// Resource names, used as metric labels and in not-found errors.
const (
	ResourceAccounts        = "accounts"
	ResourceDomains         = "domains"
	ResourceDNSRecords      = "dnsrecords"
	ResourceLinuxHostings   = "linuxhostings"
	ResourceMySQLDatabases  = "mysqldatabases"
	ResourceSSLCertificates = "sslcertificates"
)

// ListAccounts lists accounts. Supported filters: asset_type, identifier.
func (c *Client) ListAccounts(ctx context.Context, req PageRequest) (Page, error) {
	return c.list(ctx, ResourceAccounts, req, "accounts")
}

// GetAccount fetches one account by numeric id.
func (c *Client) GetAccount(ctx context.Context, id int) (Record, error) {
	key := strconv.Itoa(id)
	return c.get(ctx, ResourceAccounts, key, "accounts", key)
}

// ListDomains lists registered domains.
func (c *Client) ListDomains(ctx context.Context, req PageRequest) (Page, error) {
	return c.list(ctx, ResourceDomains, req, "domains")
}

// GetDomain fetches one domain by name.
func (c *Client) GetDomain(ctx context.Context, name string) (Record, error) {
	return c.get(ctx, ResourceDomains, name, "domains", name)
}

// ListDNSRecords lists the DNS records of domain. Supported filters: type,
// record_name, service.
func (c *Client) ListDNSRecords(ctx context.Context, domain string, req PageRequest) (Page, error) {
	return c.list(ctx, ResourceDNSRecords, req, "dns", domain, "records")
}

// ListLinuxHostings lists Linux hosting accounts.
func (c *Client) ListLinuxHostings(ctx context.Context, req PageRequest) (Page, error) {
	return c.list(ctx, ResourceLinuxHostings, req, "linuxhostings")
}

// GetLinuxHosting fetches the hosting for domain.
func (c *Client) GetLinuxHosting(ctx context.Context, domain string) (Record, error) {
	return c.get(ctx, ResourceLinuxHostings, domain, "linuxhostings", domain)
}

// ListMySQLDatabases lists MySQL databases. Supported filters: account_id.
func (c *Client) ListMySQLDatabases(ctx context.Context, req PageRequest) (Page, error) {
	return c.list(ctx, ResourceMySQLDatabases, req, "mysqldatabases")
}

// GetMySQLDatabase fetches one database by name.
func (c *Client) GetMySQLDatabase(ctx context.Context, name string) (Record, error) {
	return c.get(ctx, ResourceMySQLDatabases, name, "mysqldatabases", name)
}

// ListSSLCertificates lists SSL certificates.
func (c *Client) ListSSLCertificates(ctx context.Context, req PageRequest) (Page, error) {
	return c.list(ctx, ResourceSSLCertificates, req, "sslcertificates")
}
