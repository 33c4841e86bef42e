package insights

import (
	"context"
	"math"
	"time"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/pagination"
	"combell-mcp/pkg/logging"
)

// UsageThresholdPercent is the usage above which a hosting is flagged.
const UsageThresholdPercent = 90.0

const bytesPerGB = 1024 * 1024 * 1024

// CertificateSource lists SSL certificates.
type CertificateSource interface {
	ListSSLCertificates(ctx context.Context, req combell.PageRequest) (combell.Page, error)
}

// Certificate is a certificate covering a hosting domain.
type Certificate struct {
	CommonName     string  `json:"common_name"`
	ExpirationDate *string `json:"expiration_date"`
	IsExpired      bool    `json:"is_expired"`
}

// SSLStatus is the certificate coverage of one hosting.
type SSLStatus struct {
	HasSSL       bool          `json:"has_ssl"`
	Certificates []Certificate `json:"certificates"`
	Error        string        `json:"error,omitempty"`
}

// Usage is disk and bandwidth consumption in GB and percent of the limit.
type Usage struct {
	DiskUsedGB            float64 `json:"disk_used_gb"`
	DiskLimitGB           float64 `json:"disk_limit_gb"`
	DiskUsagePercent      float64 `json:"disk_usage_percent"`
	BandwidthUsedGB       float64 `json:"bandwidth_used_gb"`
	BandwidthLimitGB      float64 `json:"bandwidth_limit_gb"`
	BandwidthUsagePercent float64 `json:"bandwidth_usage_percent"`
}

// HostingReport is the overview of one hosting account.
type HostingReport struct {
	DomainName    string           `json:"domain_name"`
	ServicepackID any              `json:"servicepack_id"`
	PHPVersion    string           `json:"php_version"`
	FTPEnabled    bool             `json:"ftp_enabled"`
	SSHEnabled    bool             `json:"ssh_enabled"`
	Databases     []combell.Record `json:"databases"`
	SSLStatus     SSLStatus        `json:"ssl_status"`
	Usage         Usage            `json:"usage"`
	Issues        []string         `json:"issues"`
	IsHealthy     bool             `json:"is_healthy"`
}

// HostingSummary counts the reports of one pass.
type HostingSummary struct {
	TotalAccounts      int `json:"total_accounts"`
	TotalDatabases     int `json:"total_databases"`
	AccountsWithIssues int `json:"accounts_with_issues"`
	HealthyAccounts    int `json:"healthy_accounts"`
}

// HostingOverviewResult is the hosting_overview tool payload.
type HostingOverviewResult struct {
	HostingAccounts []HostingReport `json:"hosting_accounts"`
	Summary         HostingSummary  `json:"summary"`
}

// HostingAnalyzer derives hosting overview reports.
type HostingAnalyzer struct {
	Certificates CertificateSource
	Paginator    *pagination.Paginator
	Now          func() time.Time
}

// Analyze reports on every hosting in input order. The certificate list is
// read once per pass; a failure to read it is recorded on every hosting.
func (a *HostingAnalyzer) Analyze(ctx context.Context, hostings []combell.Record) HostingOverviewResult {
	now := clock(a.Now)
	result := HostingOverviewResult{HostingAccounts: make([]HostingReport, 0, len(hostings))}

	var (
		certs   []combell.Record
		certErr error
		fetched bool
	)

	for _, hosting := range hostings {
		if !fetched {
			certs, certErr = a.fetchCertificates(ctx)
			fetched = true
		}

		report := a.analyzeHosting(hosting, certs, certErr, now)
		result.HostingAccounts = append(result.HostingAccounts, report)

		result.Summary.TotalDatabases += len(report.Databases)
		if !report.IsHealthy {
			result.Summary.AccountsWithIssues++
		}
	}

	result.Summary.TotalAccounts = len(hostings)
	result.Summary.HealthyAccounts = result.Summary.TotalAccounts - result.Summary.AccountsWithIssues
	return result
}

func (a *HostingAnalyzer) fetchCertificates(ctx context.Context) ([]combell.Record, error) {
	p := pagination.New(pagination.DefaultPageSize).StrictCopy()
	if a.Paginator != nil {
		p = a.Paginator.StrictCopy()
	}
	certs, err := p.Collect(ctx, func(ctx context.Context, skip, take int) (combell.Page, error) {
		return a.Certificates.ListSSLCertificates(ctx, combell.PageRequest{Skip: skip, Take: take})
	})
	if err != nil {
		logging.Warn("Insights", "Certificate listing failed: %v", err)
	}
	return certs, err
}

func (a *HostingAnalyzer) analyzeHosting(hosting combell.Record, certs []combell.Record, certErr error, now time.Time) HostingReport {
	domain := firstText(hosting, "", "domain_name", "domainName")

	report := HostingReport{
		DomainName: domain,
		PHPVersion: firstText(hosting, "unknown", "php_version", "phpVersion"),
		FTPEnabled: hosting.BoolOr("ftp_enabled", false),
		SSHEnabled: hosting.BoolOr("ssh_enabled", false),
		// The API exposes no link from a hosting to its databases.
		Databases: []combell.Record{},
		Usage:     AnalyzeUsage(hosting),
		Issues:    []string{},
	}
	if v, ok := hosting["servicepack_id"]; ok {
		report.ServicepackID = v
	}

	if certErr != nil {
		report.SSLStatus = SSLStatus{HasSSL: false, Certificates: []Certificate{}, Error: pagination.Cause(certErr).Error()}
	} else {
		report.SSLStatus = MatchCertificates(domain, certs, now)
	}

	if report.Usage.DiskUsagePercent > UsageThresholdPercent {
		report.Issues = append(report.Issues, "Disk usage over 90%")
	}
	if report.Usage.BandwidthUsagePercent > UsageThresholdPercent {
		report.Issues = append(report.Issues, "Bandwidth usage over 90%")
	}
	if len(report.Databases) == 0 {
		report.Issues = append(report.Issues, "No databases configured")
	}
	if !report.SSLStatus.HasSSL {
		report.Issues = append(report.Issues, "No SSL certificate configured")
	}

	report.IsHealthy = len(report.Issues) == 0
	return report
}

// MatchCertificates selects the certificates whose common name or one of
// whose subject alternative names equals domain.
func MatchCertificates(domain string, certs []combell.Record, now time.Time) SSLStatus {
	status := SSLStatus{Certificates: []Certificate{}}

	for _, cert := range certs {
		if !certificateCovers(cert, domain) {
			continue
		}

		info := Certificate{CommonName: cert.TextOr("common_name", "")}
		if raw, ok := firstPresent(cert, "expiration_date", "expirationDate"); ok {
			info.ExpirationDate = &raw
			if exp, ok := combell.ParseTime(raw); ok {
				info.IsExpired = now.After(exp)
			}
		}
		status.Certificates = append(status.Certificates, info)
	}

	status.HasSSL = len(status.Certificates) > 0
	return status
}

func certificateCovers(cert combell.Record, domain string) bool {
	if cn, ok := cert.Text("common_name"); ok && cn != "" && cn == domain {
		return true
	}
	for _, san := range cert.List("subject_alternative_names") {
		if san == domain {
			return true
		}
	}
	return false
}

// AnalyzeUsage converts byte counters to GB and percent of limit. A zero or
// absent limit gives 0%.
func AnalyzeUsage(hosting combell.Record) Usage {
	diskUsed, _ := hosting.Float("disk_usage")
	diskLimit, _ := hosting.Float("disk_limit")
	bwUsed, _ := hosting.Float("bandwidth_usage")
	bwLimit, _ := hosting.Float("bandwidth_limit")

	return Usage{
		DiskUsedGB:            round(diskUsed/bytesPerGB, 2),
		DiskLimitGB:           round(diskLimit/bytesPerGB, 2),
		DiskUsagePercent:      percent(diskUsed, diskLimit),
		BandwidthUsedGB:       round(bwUsed/bytesPerGB, 2),
		BandwidthLimitGB:      round(bwLimit/bytesPerGB, 2),
		BandwidthUsagePercent: percent(bwUsed, bwLimit),
	}
}

func percent(used, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return round(used/limit*100, 1)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
