package combell

import (
	"net/url"
	"sort"
	"strconv"
)

// PageRequest selects one page of a listing endpoint.
type PageRequest struct {
	Skip int
	Take int
	// Filters are extra query parameters. Empty values are left out.
	Filters map[string]string
}

// Query encodes the request as URL query parameters.
func (p PageRequest) Query() url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Skip))
	q.Set("take", strconv.Itoa(p.Take))

	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := p.Filters[k]; v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// Page is one upstream page.
type Page struct {
	Items []Record
	// Total is the X-Paging-TotalResults header, -1 when absent. It is
	// informational and never drives pagination.
	Total int
}

// Count is the number of items on the page.
func (p Page) Count() int {
	return len(p.Items)
}
