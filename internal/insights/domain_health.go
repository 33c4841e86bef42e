package insights

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/pagination"
	"combell-mcp/pkg/logging"
)

// Expiry thresholds in whole days.
const (
	ExpiryWarningDays = 30
	ExpiryNoticeDays  = 90
)

const defaultDomainStatus = "active"

// DNSSource lists the DNS records of one domain.
type DNSSource interface {
	ListDNSRecords(ctx context.Context, domain string, req combell.PageRequest) (combell.Page, error)
}

// DNSHealth is the basic-record check of one domain.
type DNSHealth struct {
	RecordCount     int      `json:"record_count"`
	HasBasicRecords bool     `json:"has_basic_records"`
	Issues          []string `json:"issues"`
}

// DomainReport is the health of one domain.
type DomainReport struct {
	DomainName      string    `json:"domain_name"`
	Status          string    `json:"status"`
	ExpirationDate  *string   `json:"expiration_date"`
	DaysUntilExpiry *int      `json:"days_until_expiry"`
	ExpiringSoon    bool      `json:"expiring_soon"`
	DNSHealth       DNSHealth `json:"dns_health"`
	Issues          []string  `json:"issues"`
	IsHealthy       bool      `json:"is_healthy"`
}

// DomainSummary counts the reports of one pass.
type DomainSummary struct {
	TotalDomains        int `json:"total_domains"`
	HealthyDomains      int `json:"healthy_domains"`
	DomainsWithIssues   int `json:"domains_with_issues"`
	DomainsExpiringSoon int `json:"domains_expiring_soon"`
}

// DomainHealthResult is the domain_health tool payload.
type DomainHealthResult struct {
	Domains []DomainReport `json:"domains"`
	Summary DomainSummary  `json:"summary"`
}

// DomainAnalyzer derives domain health reports.
type DomainAnalyzer struct {
	DNS       DNSSource
	Paginator *pagination.Paginator
	Now       func() time.Time
}

// Analyze reports on every domain in input order. DNS failures are recorded
// on the affected domain and never abort the pass.
func (a *DomainAnalyzer) Analyze(ctx context.Context, domains []combell.Record) DomainHealthResult {
	now := clock(a.Now)
	result := DomainHealthResult{Domains: make([]DomainReport, 0, len(domains))}

	for _, domain := range domains {
		report := a.analyzeDomain(ctx, domain, now)
		result.Domains = append(result.Domains, report)

		if !report.IsHealthy {
			result.Summary.DomainsWithIssues++
		}
		if report.ExpiringSoon {
			result.Summary.DomainsExpiringSoon++
		}
	}

	result.Summary.TotalDomains = len(domains)
	result.Summary.HealthyDomains = result.Summary.TotalDomains - result.Summary.DomainsWithIssues
	return result
}

func (a *DomainAnalyzer) analyzeDomain(ctx context.Context, domain combell.Record, now time.Time) DomainReport {
	name := firstText(domain, "", "domain_name", "domainName")
	report := DomainReport{
		DomainName: name,
		Status:     firstText(domain, defaultDomainStatus, "status"),
		Issues:     []string{},
	}

	if raw, ok := firstPresent(domain, "expiration_date", "expirationDate"); ok {
		report.ExpirationDate = &raw
		if exp, ok := combell.ParseTime(raw); ok {
			days := DaysUntil(now, exp)
			report.DaysUntilExpiry = &days
			issue, soon := ClassifyExpiry(days)
			if issue != "" {
				report.Issues = append(report.Issues, issue)
			}
			report.ExpiringSoon = soon
		} else {
			logging.Debug("Insights", "Unparseable expiration date %q for %s", raw, name)
		}
	}

	report.DNSHealth = a.checkDNS(ctx, name)
	report.Issues = append(report.Issues, report.DNSHealth.Issues...)
	report.IsHealthy = len(report.Issues) == 0
	return report
}

// DaysUntil is the signed number of whole days from now to t, floored.
func DaysUntil(now, t time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

// ClassifyExpiry maps days until expiry to an optional issue and the
// expiring-soon flag.
func ClassifyExpiry(days int) (issue string, expiringSoon bool) {
	switch {
	case days <= 0:
		return "Domain is expired", false
	case days <= ExpiryWarningDays:
		return fmt.Sprintf("Domain expires in %d days", days), true
	case days <= ExpiryNoticeDays:
		return "", true
	default:
		return "", false
	}
}

func (a *DomainAnalyzer) checkDNS(ctx context.Context, domain string) DNSHealth {
	records, err := a.paginator().Collect(ctx, func(ctx context.Context, skip, take int) (combell.Page, error) {
		return a.DNS.ListDNSRecords(ctx, domain, combell.PageRequest{Skip: skip, Take: take})
	})
	if err != nil {
		logging.Warn("Insights", "DNS check for %s failed: %v", domain, err)
		return DNSHealth{
			RecordCount:     0,
			HasBasicRecords: false,
			Issues:          []string{"Unable to check DNS records: " + pagination.Cause(err).Error()},
		}
	}
	return EvaluateDNS(records)
}

// EvaluateDNS checks for at least one A, MX and NS record. Types compare
// case-insensitively.
func EvaluateDNS(records []combell.Record) DNSHealth {
	var hasA, hasMX, hasNS bool
	for _, rec := range records {
		switch strings.ToLower(rec.TextOr("type", "")) {
		case "a":
			hasA = true
		case "mx":
			hasMX = true
		case "ns":
			hasNS = true
		}
	}

	issues := []string{}
	if !hasA {
		issues = append(issues, "Missing A records - domain may not resolve")
	}
	if !hasMX {
		issues = append(issues, "Missing MX records - email delivery may be affected")
	}
	if !hasNS {
		issues = append(issues, "Missing NS records - DNS delegation may be incorrect")
	}

	return DNSHealth{
		RecordCount:     len(records),
		HasBasicRecords: hasA && hasMX && hasNS,
		Issues:          issues,
	}
}

func (a *DomainAnalyzer) paginator() *pagination.Paginator {
	if a.Paginator == nil {
		return pagination.New(pagination.DefaultPageSize).StrictCopy()
	}
	return a.Paginator.StrictCopy()
}
