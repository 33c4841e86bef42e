// Package pagination drains skip/take listing endpoints into a single result set.
package pagination

import (
	"context"
	"errors"
	"fmt"

	"combell-mcp/internal/combell"
	"combell-mcp/pkg/logging"
)

// DefaultPageSize is used when no positive page size is configured.
const DefaultPageSize = 100

// ErrPageLimit is reported in strict mode when MaxPages was reached before
// the listing ended.
var ErrPageLimit = errors.New("page limit reached before the listing ended")

// FetchError is a failed page request. Err is the upstream cause.
type FetchError struct {
	Skip int
	Take int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching records %d-%d: %v", e.Skip, e.Skip+e.Take-1, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Cause returns the upstream error behind a FetchError, or err itself.
func Cause(err error) error {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Err
	}
	return err
}

// FetchFunc fetches the page starting at skip holding at most take items.
type FetchFunc func(ctx context.Context, skip, take int) (combell.Page, error)

// Paginator collects every page of a listing.
//
// Collection stops at the first page that is empty or shorter than the page
// size. A listing whose size is an exact multiple of the page size therefore
// costs one extra request that returns nothing.
type Paginator struct {
	// PageSize is the take value for every request.
	PageSize int
	// Strict reports fetch failures to the caller. Otherwise the failure is
	// logged and the records collected so far are returned as the result.
	Strict bool
	// MaxPages stops collection after that many requests. 0 is unbounded.
	MaxPages int
}

// New returns a lenient paginator with the given page size.
func New(pageSize int) *Paginator {
	return &Paginator{PageSize: pageSize}
}

// WithPageSize returns a copy using pageSize.
func (p Paginator) WithPageSize(pageSize int) *Paginator {
	p.PageSize = pageSize
	return &p
}

// StrictCopy returns a copy that reports fetch failures.
func (p Paginator) StrictCopy() *Paginator {
	p.Strict = true
	return &p
}

func (p *Paginator) pageSize() int {
	if p == nil || p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// Collect runs fetch from skip 0 until the listing ends. The returned slice
// is never nil. In strict mode a failure returns the records so far together
// with the error.
func (p *Paginator) Collect(ctx context.Context, fetch FetchFunc) ([]combell.Record, error) {
	take := p.pageSize()
	all := []combell.Record{}

	for skip, pages := 0, 0; ; skip, pages = skip+take, pages+1 {
		if p != nil && p.MaxPages > 0 && pages >= p.MaxPages {
			return all, p.fail(fmt.Errorf("%w (%d pages of %d)", ErrPageLimit, pages, take), len(all))
		}
		if err := ctx.Err(); err != nil {
			return all, p.fail(err, len(all))
		}

		page, err := fetch(ctx, skip, take)
		if err != nil {
			return all, p.fail(&FetchError{Skip: skip, Take: take, Err: err}, len(all))
		}

		all = append(all, page.Items...)
		if page.Count() < take {
			return all, nil
		}
	}
}

func (p *Paginator) fail(err error, collected int) error {
	if p != nil && p.Strict {
		return err
	}
	logging.Warn("Pagination", "Returning %d records collected before failure: %v", collected, err)
	return nil
}
