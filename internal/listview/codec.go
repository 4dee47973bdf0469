package listview

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query parameter names shared by every list endpoint.
const (
	TenantKey = "company_id"
	PageKey   = "page"
	LimitKey  = "limit"
)

// Codec converts between PageRequests and canonical query strings. All
// writers of the address state must go through the same codec so that
// repeated writes are idempotent and never regress to a stale shape.
type Codec struct {
	// Allowed is the fixed set of filter keys recognised when decoding.
	// Unknown query parameters are silently ignored.
	Allowed []string
}

// Encode serialises a PageRequest into a canonical query string. The
// tenant id always comes first, remaining keys are sorted, and entries
// with empty values are omitted. A zero tenant id is omitted entirely
// rather than encoded as an empty value.
func (c Codec) Encode(tenantID int64, req PageRequest) string {
	var b strings.Builder
	if tenantID > 0 {
		b.WriteString(TenantKey)
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(tenantID, 10))
	}

	keys := make([]string, 0, len(req.Filters)+2)
	for key := range req.Filters {
		if key == TenantKey || key == PageKey || key == LimitKey {
			continue
		}
		keys = append(keys, key)
	}
	keys = append(keys, PageKey, LimitKey)
	sort.Strings(keys)

	for _, key := range keys {
		var value string
		switch key {
		case PageKey:
			value = strconv.Itoa(req.Page)
		case LimitKey:
			value = strconv.Itoa(req.Limit)
		default:
			value = req.Filters[key]
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}
	return b.String()
}

// Decode extracts the recognised filters from a raw query string. Values
// stay string-typed; interpreting them is the caller's concern.
func (c Codec) Decode(rawQuery string) FilterSet {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return FilterSet{}
	}
	return FiltersFromValues(values, c.Allowed)
}

// DecodePage reads page and limit from a raw query string, normalising
// absent or invalid values to the defaults.
func (c Codec) DecodePage(rawQuery string) (page, limit int) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return DefaultPage, DefaultLimit
	}
	page, _ = strconv.Atoi(values.Get(PageKey))
	limit, _ = strconv.Atoi(values.Get(LimitKey))
	req := NewPageRequest(nil, page, limit)
	return req.Page, req.Limit
}
