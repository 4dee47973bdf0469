package listview

// Page size defaults mirror the API contract: the server rejects page
// sizes outside the whitelist, so invalid values normalise to the default
// before a request is ever built.
const (
	DefaultLimit = 30
	DefaultPage  = 1
)

var allowedLimits = map[int]struct{}{30: {}, 50: {}, 100: {}}

// PageRequest combines the active filters with pagination.
type PageRequest struct {
	Page    int
	Limit   int
	Filters FilterSet
}

// NewPageRequest builds a normalised PageRequest. Page falls back to 1
// and limit to DefaultLimit whenever absent or invalid.
func NewPageRequest(filters FilterSet, page, limit int) PageRequest {
	if page < 1 {
		page = DefaultPage
	}
	if _, ok := allowedLimits[limit]; !ok {
		limit = DefaultLimit
	}
	if filters == nil {
		filters = FilterSet{}
	}
	return PageRequest{Page: page, Limit: limit, Filters: filters}
}
