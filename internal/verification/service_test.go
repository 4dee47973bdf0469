package verification

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubRepo struct {
	entries   []Entry
	total     int
	verified  int
	listCalls int
	deleted   DeletedEntry
	deleteErr error
}

func (s *stubRepo) List(ctx context.Context, companyID int64, f Filter) ([]Entry, int, int, error) {
	s.listCalls++
	return s.entries, s.total, s.verified, nil
}

func (s *stubRepo) Delete(ctx context.Context, companyID, entryID int64) (DeletedEntry, error) {
	if s.deleteErr != nil {
		return DeletedEntry{}, s.deleteErr
	}
	return s.deleted, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestServiceListCounters(t *testing.T) {
	repo := &stubRepo{entries: []Entry{{ID: 1}, {ID: 2}}, total: 61, verified: 40}
	svc := NewService(repo, newTestCache(t))

	result, err := svc.List(context.Background(), 7, Filter{Page: 2, Limit: 30})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.TotalPages != 3 {
		t.Fatalf("expected 3 pages for 61 rows, got %d", result.TotalPages)
	}
	if result.NotVerifiedEntry != 21 {
		t.Fatalf("expected 21 not verified, got %d", result.NotVerifiedEntry)
	}
	if result.CompanyID != 7 {
		t.Fatalf("envelope must carry the tenant id, got %d", result.CompanyID)
	}
}

func TestServiceListEmptyIsSinglePage(t *testing.T) {
	svc := NewService(&stubRepo{}, newTestCache(t))
	result, err := svc.List(context.Background(), 1, Filter{Page: 1, Limit: 30})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.TotalPages != 1 {
		t.Fatalf("empty list must report one page, got %d", result.TotalPages)
	}
}

func TestServiceListUsesCache(t *testing.T) {
	repo := &stubRepo{total: 1, verified: 1, entries: []Entry{{ID: 9}}}
	svc := NewService(repo, newTestCache(t))
	filter := Filter{Page: 1, Limit: 30, CityID: 3}

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background(), 5, filter); err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected one repository hit, got %d", repo.listCalls)
	}
}

func TestServiceDeleteInvalidatesCache(t *testing.T) {
	repo := &stubRepo{total: 1, entries: []Entry{{ID: 9}}, deleted: DeletedEntry{ID: 9, Verified: true}}
	svc := NewService(repo, newTestCache(t))
	filter := Filter{Page: 1, Limit: 30}

	if _, err := svc.List(context.Background(), 5, filter); err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	deleted, err := svc.Delete(context.Background(), 5, 9)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.Verified {
		t.Fatalf("expected verified flag from delete")
	}
	if _, err := svc.List(context.Background(), 5, filter); err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("delete must invalidate cached pages, got %d repo hits", repo.listCalls)
	}
}

func TestParseFilterDateRange(t *testing.T) {
	_, err := ParseFilter(url.Values{"date_from": {"2024-02-01"}, "date_to": {"2024-01-01"}})
	var verr *ValidationError
	if err == nil {
		t.Fatalf("expected a validation error for inverted range")
	}
	if !errors.As(err, &verr) || verr.Field != "date_range" {
		t.Fatalf("expected date_range validation error, got %v", err)
	}
}

func TestParseFilterDefaults(t *testing.T) {
	f, err := ParseFilter(url.Values{"limit": {"17"}, "page": {"0"}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Page != 1 || f.Limit != 30 {
		t.Fatalf("expected normalised paging, got page=%d limit=%d", f.Page, f.Limit)
	}
}

func TestFilterSetRoundTrip(t *testing.T) {
	f, err := ParseFilter(url.Values{
		"date_from":  {"2024-01-01"},
		"city_id":    {"4"},
		"water_type": {"hot"},
		"utm_source": {"newsletter"},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fs := f.FilterSet()
	if fs.Get("date_from") != "2024-01-01" || fs.Get("city_id") != "4" || fs.Get("water_type") != "hot" {
		t.Fatalf("filter set lost values: %v", fs)
	}
	if _, ok := fs["utm_source"]; ok {
		t.Fatalf("unrecognised key must not round-trip: %v", fs)
	}
}

func TestCacheKeyStable(t *testing.T) {
	a, _ := ParseFilter(url.Values{"city_id": {"4"}, "date_from": {"2024-01-01"}})
	b, _ := ParseFilter(url.Values{"date_from": {"2024-01-01"}, "city_id": {"4"}})
	if a.CacheKey() != b.CacheKey() {
		t.Fatalf("cache key must not depend on parameter order")
	}
	c, _ := ParseFilter(url.Values{"city_id": {"5"}})
	if a.CacheKey() == c.CacheKey() {
		t.Fatalf("different filters must produce different keys")
	}
}
