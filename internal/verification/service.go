package verification

import (
	"context"
	"fmt"

	"github.com/veritrack/veritrack/internal/listview"
	"github.com/veritrack/veritrack/internal/shared"
)

// ListResult is the paginated envelope returned by the list API.
type ListResult struct {
	CompanyID        int64   `json:"company_id"`
	Items            []Entry `json:"items"`
	Page             int     `json:"page"`
	Limit            int     `json:"limit"`
	TotalPages       int     `json:"total_pages"`
	TotalEntries     int     `json:"total_entries"`
	VerifiedEntry    int     `json:"verified_entry"`
	NotVerifiedEntry int     `json:"not_verified_entry"`
}

// Stats extracts the aggregate counters from the envelope.
func (r ListResult) Stats() listview.Stats {
	return listview.Stats{
		Total:       r.TotalEntries,
		Verified:    r.VerifiedEntry,
		NotVerified: r.NotVerifiedEntry,
	}
}

// Repo is the persistence contract the service depends on.
type Repo interface {
	List(ctx context.Context, companyID int64, f Filter) ([]Entry, int, int, error)
	Delete(ctx context.Context, companyID, entryID int64) (DeletedEntry, error)
}

// Service coordinates verification entry reads and mutations.
type Service struct {
	repo  Repo
	cache *Cache
}

// NewService constructs the verification service.
func NewService(repo Repo, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// List returns one page of entries for the company, served from the
// short-lived Redis cache when possible.
func (s *Service) List(ctx context.Context, companyID int64, f Filter) (ListResult, error) {
	if s.repo == nil {
		return ListResult{}, fmt.Errorf("verification: repository not configured")
	}

	key, err := s.cache.Key(ctx, companyID, f.CacheKey(), f.Page, f.Limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("cache key: %w", err)
	}

	var result ListResult
	err = s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (any, error) {
		entries, total, verified, err := s.repo.List(ctx, companyID, f)
		if err != nil {
			return nil, err
		}
		paging := shared.NewPagination(f.Page, f.Limit, total)
		return ListResult{
			CompanyID:        companyID,
			Items:            entries,
			Page:             paging.Page,
			Limit:            paging.PerPage,
			TotalPages:       paging.TotalPages,
			TotalEntries:     total,
			VerifiedEntry:    verified,
			NotVerifiedEntry: total - verified,
		}, nil
	})
	if err != nil {
		return ListResult{}, err
	}
	return result, nil
}

// Delete removes one entry and reports whether it was a verified one, so
// the caller can adjust the right counter without reloading the page.
func (s *Service) Delete(ctx context.Context, companyID, entryID int64) (DeletedEntry, error) {
	if s.repo == nil {
		return DeletedEntry{}, fmt.Errorf("verification: repository not configured")
	}
	deleted, err := s.repo.Delete(ctx, companyID, entryID)
	if err != nil {
		return DeletedEntry{}, err
	}
	// The delete is already committed; cached pages fall back to TTL
	// expiry when the version bump fails.
	_ = s.cache.Invalidate(ctx, companyID)
	return deleted, nil
}
