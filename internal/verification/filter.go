package verification

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/veritrack/veritrack/internal/listview"
)

// FilterKeys is the fixed allow-list of filter parameters recognised on
// the verification list URL. Anything else on the query string is
// ignored.
var FilterKeys = []string{
	"date_from", "date_to", "client_address", "factory_number",
	"series_id", "client_phone", "city_id", "employee_id",
	"water_type", "act_number",
}

const dateLayout = "2006-01-02"

// ValidationError reports a filter value the user must correct before a
// request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("filter %s: %s", e.Field, e.Message)
}

// Filter is the typed form of the verification list filters.
type Filter struct {
	DateFrom      time.Time
	DateTo        time.Time
	ClientAddress string
	FactoryNumber string
	ClientPhone   string
	SeriesID      int64
	CityID        int64
	EmployeeID    int64
	WaterType     WaterType
	ActNumber     int64

	Page  int
	Limit int
}

// ParseFilter reads the recognised filter keys from query or form
// values. Validation failures are caught here, before any repository or
// network work happens.
func ParseFilter(values url.Values) (Filter, error) {
	fs := listview.FiltersFromValues(values, FilterKeys)
	page, _ := strconv.Atoi(values.Get(listview.PageKey))
	limit, _ := strconv.Atoi(values.Get(listview.LimitKey))
	req := listview.NewPageRequest(fs, page, limit)

	f := Filter{
		ClientAddress: fs.Get("client_address"),
		FactoryNumber: fs.Get("factory_number"),
		ClientPhone:   fs.Get("client_phone"),
		Page:          req.Page,
		Limit:         req.Limit,
	}

	var err error
	if f.DateFrom, err = parseDate(fs.Get("date_from")); err != nil {
		return Filter{}, &ValidationError{Field: "date_from", Message: "expected YYYY-MM-DD"}
	}
	if f.DateTo, err = parseDate(fs.Get("date_to")); err != nil {
		return Filter{}, &ValidationError{Field: "date_to", Message: "expected YYYY-MM-DD"}
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateFrom.After(f.DateTo) {
		return Filter{}, &ValidationError{Field: "date_range", Message: "date_from must not be after date_to"}
	}

	if f.SeriesID, err = parseID(fs.Get("series_id")); err != nil {
		return Filter{}, &ValidationError{Field: "series_id", Message: "expected a positive integer"}
	}
	if f.CityID, err = parseID(fs.Get("city_id")); err != nil {
		return Filter{}, &ValidationError{Field: "city_id", Message: "expected a positive integer"}
	}
	if f.EmployeeID, err = parseID(fs.Get("employee_id")); err != nil {
		return Filter{}, &ValidationError{Field: "employee_id", Message: "expected a positive integer"}
	}
	if f.ActNumber, err = parseID(fs.Get("act_number")); err != nil {
		return Filter{}, &ValidationError{Field: "act_number", Message: "expected a positive integer"}
	}

	if raw := fs.Get("water_type"); raw != "" {
		wt := WaterType(raw)
		if !wt.Valid() {
			return Filter{}, &ValidationError{Field: "water_type", Message: "expected hot or cold"}
		}
		f.WaterType = wt
	}
	return f, nil
}

// FilterSet converts the typed filter back to its string form for
// canonical URL building. Zero values are absent keys.
func (f Filter) FilterSet() listview.FilterSet {
	fs := listview.FilterSet{}
	add := func(key, value string) { fs = fs.With(key, value) }
	if !f.DateFrom.IsZero() {
		add("date_from", f.DateFrom.Format(dateLayout))
	}
	if !f.DateTo.IsZero() {
		add("date_to", f.DateTo.Format(dateLayout))
	}
	add("client_address", f.ClientAddress)
	add("factory_number", f.FactoryNumber)
	add("client_phone", f.ClientPhone)
	if f.SeriesID > 0 {
		add("series_id", strconv.FormatInt(f.SeriesID, 10))
	}
	if f.CityID > 0 {
		add("city_id", strconv.FormatInt(f.CityID, 10))
	}
	if f.EmployeeID > 0 {
		add("employee_id", strconv.FormatInt(f.EmployeeID, 10))
	}
	if f.ActNumber > 0 {
		add("act_number", strconv.FormatInt(f.ActNumber, 10))
	}
	if f.WaterType != "" {
		add("water_type", string(f.WaterType))
	}
	return fs
}

// CacheKey returns a stable digest of the filter values, used to key the
// list cache per filter combination.
func (f Filter) CacheKey() string {
	fs := f.FilterSet()
	keys := make([]string, 0, len(fs))
	for key := range fs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(fs[key])
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, raw)
}

func parseID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
