// Package insights derives health reports from raw Combell records.
//
// DomainAnalyzer flags domains that are expired or close to expiry and
// domains missing A, MX or NS records. HostingAnalyzer flags hostings near
// their disk or bandwidth limits and hostings without a certificate.
//
// Both process their input strictly in order within one call. Upstream
// failures for one item become an issue on that item.
package insights
