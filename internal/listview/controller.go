package listview

import (
	"context"
	"errors"
	"net/url"
	"sync"
)

// ErrStaleLoad is returned when a load finished after a newer one had
// already been started. The response is discarded and the displayed state
// belongs to the newest request; callers treat this as benign.
var ErrStaleLoad = errors.New("listview: stale load discarded")

// Result is one page of fetched records plus pagination metadata.
type Result[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	Stats      Stats
}

// Fetcher loads one page of records for the given request.
type Fetcher[T any] interface {
	Fetch(ctx context.Context, req PageRequest) (Result[T], error)
}

// Sinks receive the pieces of a successfully loaded page. Each sink is
// invoked independently: a failure in one never prevents the others from
// updating.
type Sinks[T any] struct {
	Table func(items []T) error
	Pager func(pager Pager, show bool) error
	Stats func(stats Stats) error
}

// Config wires a Controller. Deep-link state comes in through
// InitialQuery; everything else is explicit dependencies resolved once at
// construction instead of ambient globals.
type Config[T any] struct {
	TenantID     int64
	Codec        Codec
	Fetcher      Fetcher[T]
	Sinks        Sinks[T]
	Radius       int
	InitialQuery string
}

// Controller keeps a filtered, paginated list view consistent across its
// three faces: the address state, the filter inputs and the fetched page.
// The address state is rewritten canonically before every fetch resolves,
// and overlapping loads are settled last-request-wins via a monotonic
// sequence number.
type Controller[T any] struct {
	cfg Config[T]

	mu          sync.Mutex
	seq         uint64
	urlFilters  FilterSet
	formFilters FilterSet
	page        int
	limit       int
	location    string
	current     Result[T]
	loaded      bool
}

// NewController decodes the initial address state and eagerly establishes
// the canonical location, so the page size default becomes part of the
// shareable address even before the first load.
func NewController[T any](cfg Config[T]) *Controller[T] {
	if cfg.Radius < 1 {
		cfg.Radius = DefaultRadius
	}
	c := &Controller[T]{cfg: cfg}
	c.urlFilters = cfg.Codec.Decode(cfg.InitialQuery)
	c.formFilters = FilterSet{}
	c.page, c.limit = cfg.Codec.DecodePage(cfg.InitialQuery)
	c.location = cfg.Codec.Encode(cfg.TenantID, NewPageRequest(c.urlFilters, c.page, c.limit))
	return c
}

// Page returns the page number the controller currently points at.
func (c *Controller[T]) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Location returns the canonical query string describing the current
// view. It is updated synchronously when a load starts, not when it
// resolves, so an interrupted load still leaves a consistent address.
func (c *Controller[T]) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// SetFormValues replaces the interactive filter state from submitted form
// values. Unlike the address side there is no allow-list: the form is the
// authoritative shape of what filters exist.
func (c *Controller[T]) SetFormValues(values url.Values) {
	filters := FiltersFromValues(values, nil)
	delete(filters, TenantKey)
	delete(filters, PageKey)
	delete(filters, LimitKey)
	c.mu.Lock()
	c.formFilters = filters
	c.mu.Unlock()
}

// Reset drops every active filter, both deep-linked and interactive.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	c.urlFilters = FilterSet{}
	c.formFilters = FilterSet{}
	c.mu.Unlock()
}

// Load fetches the given page for the current filter state. The request
// merges sources later-wins: address filters, then form filters, then the
// explicit page. On fetch failure the previously rendered state is kept;
// a response arriving after a newer load started is discarded.
func (c *Controller[T]) Load(ctx context.Context, page int) error {
	c.mu.Lock()
	req := NewPageRequest(c.urlFilters.Merge(c.formFilters), page, c.limit)
	c.page = req.Page
	c.location = c.cfg.Codec.Encode(c.cfg.TenantID, req)
	c.seq++
	seq := c.seq
	fetcher := c.cfg.Fetcher
	c.mu.Unlock()

	result, err := fetcher.Fetch(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		return ErrStaleLoad
	}
	if err != nil {
		return err
	}
	if result.TotalPages < 1 {
		result.TotalPages = 1
	}
	c.current = result
	c.loaded = true
	return c.renderLocked()
}

// ApplyDelete updates the displayed counters after a row was removed
// in place. Deletion never triggers a refetch; only the stats sink is
// re-rendered.
func (c *Controller[T]) ApplyDelete(verified bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Stats.ApplyDelete(verified)
	if c.cfg.Sinks.Stats == nil {
		return nil
	}
	return c.cfg.Sinks.Stats(c.current.Stats)
}

// Current returns the last successfully loaded result.
func (c *Controller[T]) Current() (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.loaded
}

func (c *Controller[T]) renderLocked() error {
	var errs []error
	if c.cfg.Sinks.Table != nil {
		if err := c.cfg.Sinks.Table(c.current.Items); err != nil {
			errs = append(errs, err)
		}
	}
	if c.cfg.Sinks.Pager != nil {
		pager, show := BuildPager(c.current.Page, c.current.TotalPages, c.cfg.Radius)
		if err := c.cfg.Sinks.Pager(pager, show); err != nil {
			errs = append(errs, err)
		}
	}
	if c.cfg.Sinks.Stats != nil {
		if err := c.cfg.Sinks.Stats(c.current.Stats); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
