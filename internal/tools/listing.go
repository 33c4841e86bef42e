package tools

import (
	"context"

	"combell-mcp/internal/combell"
	"combell-mcp/internal/pagination"
)

// collect drains a listing endpoint with the configured failure policy.
func (p *Provider) collect(ctx context.Context, size int, what string, fetch pagination.FetchFunc) ([]combell.Record, error) {
	records, err := p.paginator.WithPageSize(size).Collect(ctx, fetch)
	if err != nil {
		return nil, failure("Failed to list %s: %v", what, err)
	}
	return records, nil
}

// listing is the envelope of every list tool.
func listing(key string, records []combell.Record) map[string]any {
	if records == nil {
		records = []combell.Record{}
	}
	return map[string]any{
		key:           records,
		"total_count": len(records),
	}
}

// lookupFailure maps a single-object fetch error to a caller message.
func lookupFailure(err error, resource, notFound string) error {
	if combell.IsNotFound(err) {
		return failure("%s", notFound)
	}
	return failure("Failed to fetch %s: %v", resource, err)
}

func pageFetch(list func(context.Context, combell.PageRequest) (combell.Page, error), filters map[string]string) pagination.FetchFunc {
	return func(ctx context.Context, skip, take int) (combell.Page, error) {
		return list(ctx, combell.PageRequest{Skip: skip, Take: take, Filters: filters})
	}
}
