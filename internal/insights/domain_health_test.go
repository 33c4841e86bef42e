package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeDNS struct {
	records map[string][]combell.Record
	errs    map[string]error
	calls   []string
}

func (f *fakeDNS) ListDNSRecords(_ context.Context, domain string, req combell.PageRequest) (combell.Page, error) {
	f.calls = append(f.calls, domain)
	if err := f.errs[domain]; err != nil {
		return combell.Page{}, err
	}
	all := f.records[domain]
	if req.Skip >= len(all) {
		return combell.Page{}, nil
	}
	end := req.Skip + req.Take
	if end > len(all) {
		end = len(all)
	}
	return combell.Page{Items: all[req.Skip:end]}, nil
}

func fullDNS() []combell.Record {
	return []combell.Record{
		{"type": "A", "record_name": "@"},
		{"type": "mx", "record_name": "@"},
		{"type": "NS", "record_name": "@"},
		{"type": "TXT", "record_name": "@"},
	}
}

func expiringIn(days int) string {
	return fixedNow.Add(time.Duration(days) * 24 * time.Hour).Format(time.RFC3339)
}

func newDomainAnalyzer(dns *fakeDNS) *DomainAnalyzer {
	return &DomainAnalyzer{DNS: dns, Now: func() time.Time { return fixedNow }}
}

func TestClassifyExpiry(t *testing.T) {
	tests := []struct {
		days  int
		issue string
		soon  bool
	}{
		{-10, "Domain is expired", false},
		{0, "Domain is expired", false},
		{1, "Domain expires in 1 days", true},
		{15, "Domain expires in 15 days", true},
		{30, "Domain expires in 30 days", true},
		{31, "", true},
		{90, "", true},
		{91, "", false},
		{365, "", false},
	}

	for _, tt := range tests {
		issue, soon := ClassifyExpiry(tt.days)
		assert.Equal(t, tt.issue, issue, "days=%d", tt.days)
		assert.Equal(t, tt.soon, soon, "days=%d", tt.days)
	}
}

func TestDaysUntil(t *testing.T) {
	assert.Equal(t, 15, DaysUntil(fixedNow, fixedNow.Add(15*24*time.Hour)))
	assert.Equal(t, 14, DaysUntil(fixedNow, fixedNow.Add(15*24*time.Hour-time.Minute)))
	assert.Equal(t, 0, DaysUntil(fixedNow, fixedNow))
	assert.Equal(t, -1, DaysUntil(fixedNow, fixedNow.Add(-time.Hour)))
	assert.Equal(t, -5, DaysUntil(fixedNow, fixedNow.Add(-5*24*time.Hour)))
}

func TestAnalyze_ExpiredDomain(t *testing.T) {
	dns := &fakeDNS{records: map[string][]combell.Record{"old.be": fullDNS()}}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "old.be", "expiration_date": expiringIn(0)},
	})

	require.Len(t, result.Domains, 1)
	report := result.Domains[0]
	assert.Equal(t, []string{"Domain is expired"}, report.Issues)
	assert.False(t, report.ExpiringSoon)
	assert.False(t, report.IsHealthy)
	require.NotNil(t, report.DaysUntilExpiry)
	assert.Equal(t, 0, *report.DaysUntilExpiry)
}

func TestAnalyze_ExpiringSoon(t *testing.T) {
	dns := &fakeDNS{records: map[string][]combell.Record{"soon.be": fullDNS()}}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "soon.be", "expiration_date": expiringIn(15)},
	})

	report := result.Domains[0]
	assert.Contains(t, report.Issues, "Domain expires in 15 days")
	assert.True(t, report.ExpiringSoon)
	assert.Equal(t, 1, result.Summary.DomainsExpiringSoon)
}

func TestAnalyze_HealthyDomain(t *testing.T) {
	dns := &fakeDNS{records: map[string][]combell.Record{"fine.be": fullDNS()}}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "fine.be", "expiration_date": expiringIn(365), "will_renew": true},
	})

	report := result.Domains[0]
	assert.Empty(t, report.Issues)
	assert.NotNil(t, report.Issues)
	assert.True(t, report.IsHealthy)
	assert.False(t, report.ExpiringSoon)
	assert.Equal(t, "active", report.Status)
	assert.Equal(t, DNSHealth{RecordCount: 4, HasBasicRecords: true, Issues: []string{}}, report.DNSHealth)
}

func TestAnalyze_NoDNSRecords(t *testing.T) {
	dns := &fakeDNS{}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "empty.be", "expiration_date": expiringIn(365)},
	})

	report := result.Domains[0]
	assert.Equal(t, []string{
		"Missing A records - domain may not resolve",
		"Missing MX records - email delivery may be affected",
		"Missing NS records - DNS delegation may be incorrect",
	}, report.Issues)
	assert.Equal(t, 0, report.DNSHealth.RecordCount)
	assert.False(t, report.DNSHealth.HasBasicRecords)
}

func TestAnalyze_DNSFailureIsolated(t *testing.T) {
	dns := &fakeDNS{
		records: map[string][]combell.Record{"b.be": fullDNS()},
		errs:    map[string]error{"a.be": errors.New("503 service unavailable")},
	}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "a.be", "expiration_date": expiringIn(200)},
		{"domain_name": "b.be", "expiration_date": expiringIn(200)},
	})

	require.Len(t, result.Domains, 2)
	failed := result.Domains[0]
	require.Len(t, failed.Issues, 1)
	assert.Equal(t, "Unable to check DNS records: 503 service unavailable", failed.Issues[0])
	assert.Equal(t, 0, failed.DNSHealth.RecordCount)
	assert.False(t, failed.DNSHealth.HasBasicRecords)

	assert.True(t, result.Domains[1].IsHealthy)
	assert.Equal(t, []string{"a.be", "b.be"}, dns.calls)
}

func TestAnalyze_MissingExpiration(t *testing.T) {
	dns := &fakeDNS{records: map[string][]combell.Record{"x.be": fullDNS()}}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "x.be"},
		{"domain_name": "y.be", "expiration_date": "someday"},
	})

	first := result.Domains[0]
	assert.Nil(t, first.ExpirationDate)
	assert.Nil(t, first.DaysUntilExpiry)
	assert.True(t, first.IsHealthy)

	second := result.Domains[1]
	require.NotNil(t, second.ExpirationDate)
	assert.Equal(t, "someday", *second.ExpirationDate)
	assert.Nil(t, second.DaysUntilExpiry)
}

func TestAnalyze_Summary(t *testing.T) {
	dns := &fakeDNS{records: map[string][]combell.Record{"ok.be": fullDNS(), "soon.be": fullDNS()}}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "ok.be", "expiration_date": expiringIn(365)},
		{"domain_name": "soon.be", "expiration_date": expiringIn(10)},
	})

	assert.Equal(t, DomainSummary{
		TotalDomains:        2,
		HealthyDomains:      1,
		DomainsWithIssues:   1,
		DomainsExpiringSoon: 1,
	}, result.Summary)
	assert.Equal(t, "ok.be", result.Domains[0].DomainName)
	assert.Equal(t, "soon.be", result.Domains[1].DomainName)
}

// An expiring-soon domain is not healthy: "Domain expires in N days" is an
// issue, so both domains count as having issues.
func TestAnalyze_ExpiringAndExpired(t *testing.T) {
	dns := &fakeDNS{records: map[string][]combell.Record{
		"example.com": fullDNS(),
		"expired.com": fullDNS(),
	}}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domain_name": "example.com", "expiration_date": expiringIn(15)},
		{"domain_name": "expired.com", "expiration_date": expiringIn(-5)},
	})

	assert.Equal(t, DomainSummary{
		TotalDomains:        2,
		HealthyDomains:      0,
		DomainsWithIssues:   2,
		DomainsExpiringSoon: 1,
	}, result.Summary)

	soon := result.Domains[0]
	assert.Equal(t, []string{"Domain expires in 15 days"}, soon.Issues)
	assert.True(t, soon.ExpiringSoon)
	assert.False(t, soon.IsHealthy)

	expired := result.Domains[1]
	assert.Equal(t, []string{"Domain is expired"}, expired.Issues)
	assert.False(t, expired.ExpiringSoon)
	assert.False(t, expired.IsHealthy)
	require.NotNil(t, expired.DaysUntilExpiry)
	assert.Equal(t, -5, *expired.DaysUntilExpiry)
}

func TestAnalyze_Empty(t *testing.T) {
	result := newDomainAnalyzer(&fakeDNS{}).Analyze(context.Background(), nil)
	assert.NotNil(t, result.Domains)
	assert.Empty(t, result.Domains)
	assert.Equal(t, DomainSummary{}, result.Summary)
}

func TestAnalyze_PaginatesDNS(t *testing.T) {
	var records []combell.Record
	for i := 0; i < 5; i++ {
		records = append(records, combell.Record{"type": "TXT"})
	}
	records = append(records, fullDNS()...)

	dns := &fakeDNS{records: map[string][]combell.Record{"big.be": records}}
	analyzer := newDomainAnalyzer(dns)
	analyzer.Paginator = pagination.New(3)

	result := analyzer.Analyze(context.Background(), []combell.Record{{"domain_name": "big.be"}})
	assert.Equal(t, 9, result.Domains[0].DNSHealth.RecordCount)
	assert.True(t, result.Domains[0].DNSHealth.HasBasicRecords)
	assert.Len(t, dns.calls, 4)
}

func TestAnalyze_CamelCaseFields(t *testing.T) {
	dns := &fakeDNS{records: map[string][]combell.Record{"camel.be": fullDNS()}}
	result := newDomainAnalyzer(dns).Analyze(context.Background(), []combell.Record{
		{"domainName": "camel.be", "expirationDate": expiringIn(20), "status": "pending"},
	})

	report := result.Domains[0]
	assert.Equal(t, "camel.be", report.DomainName)
	assert.Equal(t, "pending", report.Status)
	assert.Equal(t, []string{"Domain expires in 20 days"}, report.Issues)
}
