// Package harvest walks the paginated order listing of a storefront account
// and merges every row into a store.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"orderharvest/internal/components/assert"
	"orderharvest/internal/components/telemetry"
	"orderharvest/internal/orders"
	"orderharvest/internal/store"
	"strconv"
)

const (
	report_engine_run    = "engine.run"
	report_engine_detail = "engine.fetch-detail"
	report_engine_rows   = "engine.rows"
)

type PageSource interface {
	FetchListing(ctx context.Context, ref *url.URL) (orders.ListingPage, error)
}

type DetailSource interface {
	FetchDetail(ctx context.Context, ref *url.URL) (orders.Detail, error)
}

// LoopError is returned when a listing page links back to a page that was
// already visited during the same run.
type LoopError struct {
	Ref string
}

func (e *LoopError) Error() string {
	return fmt.Sprintf("listing page %s was already visited", e.Ref)
}

// ErrMaxPages is returned when the walk reaches Options.MaxPages before the
// last page.
var ErrMaxPages = errors.New("reached the maximum number of listing pages")

type PageProgress struct {
	// Page is the page number taken from the `page` query parameter, 1 when
	// the reference has none.
	Page    int
	Visited int
	Rows    int
	Ref     *url.URL
}

type Options struct {
	// MaxPages of 0 means the walk is unbounded.
	MaxPages int
	// OnPage is called after each listing page has been processed.
	OnPage func(PageProgress)
}

type Result struct {
	Pages          int
	Rows           int
	Inserted       int
	Updated        int
	DetailsFetched int
	DetailFailures int
}

// Engine runs one traversal at a time over the store it was given, two
// engines with different stores can run independently.
type Engine struct {
	store   *store.Store
	pages   PageSource
	details DetailSource
	opts    Options
	tel     telemetry.API
}

func NewEngine(
	s *store.Store,
	pages PageSource,
	details DetailSource,
	opts Options,
	tel telemetry.API,
) *Engine {
	assert.NotNil(s)
	assert.NotNil(pages)
	assert.NotNil(details)
	assert.NotNil(tel)

	return &Engine{
		store:   s,
		pages:   pages,
		details: details,
		opts:    opts,
		tel:     telemetry.NewScopedAPI("harvest", tel),
	}
}

// PageNumber returns the `page` query parameter of ref, or 1.
func PageNumber(ref *url.URL) int {
	if ref == nil {
		return 1
	}
	n, err := strconv.Atoi(ref.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Run walks the listing starting at initial until there is no next page.
//
// Every row is merged into a working copy of the store. Orders that are not
// in the store yet, or that are but still lack a detail, get their detail
// fetched. A failed detail fetch leaves the detail absent so that the next run
// tries again. When the walk completes the working copy is sorted, persisted
// and then adopted by the store. A listing failure stops the walk and leaves
// the store and its snapshot untouched, as do a cancelled context, a loop and
// reaching MaxPages.
func (e *Engine) Run(ctx context.Context, initial *url.URL) (Result, error) {
	assert.NotNil(initial)

	var result Result
	work := e.store.Clone()
	visited := map[string]struct{}{}
	// keys already merged during this run, rows shift between pages when
	// orders are placed mid-run
	processed := map[string]struct{}{}

	current := initial
	for current != nil {
		if err := ctx.Err(); err != nil {
			return result, e.abort(err, current)
		}
		if e.opts.MaxPages > 0 && result.Pages >= e.opts.MaxPages {
			return result, e.abort(ErrMaxPages, current)
		}

		ref := current.String()
		if _, seen := visited[ref]; seen {
			return result, e.abort(&LoopError{Ref: ref}, current)
		}
		visited[ref] = struct{}{}

		page, err := e.pages.FetchListing(ctx, current)
		if err != nil {
			return result, e.abort(fmt.Errorf("fetch listing: %w", err), current)
		}

		for _, row := range page.Rows {
			if err := ctx.Err(); err != nil {
				return result, e.abort(err, current)
			}
			if _, seen := processed[row.Key]; seen {
				work.Upsert(row.Order())
				continue
			}
			processed[row.Key] = struct{}{}
			e.processRow(ctx, work, row, &result)
		}

		result.Pages++
		result.Rows += len(page.Rows)
		if e.opts.OnPage != nil {
			e.opts.OnPage(PageProgress{
				Page:    PageNumber(current),
				Visited: result.Pages,
				Rows:    result.Rows,
				Ref:     current,
			})
		}

		current = page.Next
	}

	work.Sort()
	err := work.Persist(ctx)
	if err != nil {
		e.tel.ReportBroken(report_engine_run, fmt.Errorf("persist: %w", err))
		return result, err
	}
	e.store.Replace(work)

	e.tel.ReportCount(report_engine_rows, int64(result.Rows))
	return result, nil
}

func (e *Engine) abort(err error, current *url.URL) error {
	e.tel.ReportBroken(report_engine_run, err, current.String())
	return err
}

func (e *Engine) processRow(ctx context.Context, work *store.Store, row orders.Row, result *Result) {
	existing, found := work.FindByKey(row.Key)
	if found {
		work.Upsert(row.Order())
		result.Updated++
		if existing.Detail != nil {
			return
		}
		detail, ok := e.fetchDetail(ctx, row, result)
		if ok {
			work.SetDetail(row.Key, detail)
		}
		return
	}

	order := row.Order()
	if detail, ok := e.fetchDetail(ctx, row, result); ok {
		order.Detail = &detail
	}
	work.Upsert(order)
	result.Inserted++
}

func (e *Engine) fetchDetail(ctx context.Context, row orders.Row, result *Result) (orders.Detail, bool) {
	if row.DetailRef == nil {
		e.tel.ReportWarning(report_engine_detail, fmt.Errorf("row has no detail link"), row.Key)
		result.DetailFailures++
		return orders.Detail{}, false
	}

	detail, err := e.details.FetchDetail(ctx, row.DetailRef)
	if err != nil {
		e.tel.ReportWarning(report_engine_detail, err, row.Key)
		result.DetailFailures++
		return orders.Detail{}, false
	}
	result.DetailsFetched++
	return detail, true
}
