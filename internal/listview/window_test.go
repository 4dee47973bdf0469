package listview

import "testing"

func pageNumbers(links []PageLink) ([]int, int) {
	var numbers []int
	gaps := 0
	for _, link := range links {
		if link.Ellipsis {
			gaps++
			continue
		}
		numbers = append(numbers, link.Number)
	}
	return numbers, gaps
}

func TestBuildPagerWindow(t *testing.T) {
	pager, show := BuildPager(5, 10, 2)
	if !show {
		t.Fatalf("expected a pager for 10 pages")
	}
	numbers, gaps := pageNumbers(pager.Links)
	want := []int{1, 3, 4, 5, 6, 7, 10}
	if len(numbers) != len(want) {
		t.Fatalf("expected pages %v, got %v", want, numbers)
	}
	for i, n := range want {
		if numbers[i] != n {
			t.Fatalf("expected pages %v, got %v", want, numbers)
		}
	}
	if gaps != 2 {
		t.Fatalf("expected 2 ellipsis markers, got %d", gaps)
	}
}

func TestBuildPagerSinglePage(t *testing.T) {
	if _, show := BuildPager(1, 1, 2); show {
		t.Fatalf("single page must render no pager")
	}
	if _, show := BuildPager(1, 0, 2); show {
		t.Fatalf("zero pages must render no pager")
	}
}

func TestBuildPagerBoundariesDisabledNotOmitted(t *testing.T) {
	pager, _ := BuildPager(1, 4, 2)
	if !pager.First.Disabled || !pager.Prev.Disabled {
		t.Fatalf("first/prev must be disabled on page 1")
	}
	if pager.Prev.Page != 1 {
		t.Fatalf("prev must clamp to page 1, got %d", pager.Prev.Page)
	}

	pager, _ = BuildPager(4, 4, 2)
	if !pager.Next.Disabled || !pager.Last.Disabled {
		t.Fatalf("next/last must be disabled on the last page")
	}
	if pager.Next.Page != 4 {
		t.Fatalf("next must clamp to totalPages, got %d", pager.Next.Page)
	}
}

func TestBuildPagerNoGapWhenWindowTouchesEdges(t *testing.T) {
	pager, _ := BuildPager(2, 4, 2)
	numbers, gaps := pageNumbers(pager.Links)
	if gaps != 0 {
		t.Fatalf("expected contiguous window, got %d gaps", gaps)
	}
	if len(numbers) != 4 {
		t.Fatalf("expected all 4 pages, got %v", numbers)
	}
}

func TestStatsApplyDeleteClampsAtZero(t *testing.T) {
	stats := Stats{Total: 2, Verified: 1, NotVerified: 1}
	stats.ApplyDelete(true)
	if stats.Total != 1 || stats.Verified != 0 || stats.NotVerified != 1 {
		t.Fatalf("unexpected counters after verified delete: %+v", stats)
	}
	stats.ApplyDelete(true)
	if stats.Verified != 0 {
		t.Fatalf("verified counter went below zero: %+v", stats)
	}
	stats.ApplyDelete(false)
	if stats.Total != 0 || stats.NotVerified != 0 {
		t.Fatalf("counters must clamp at zero: %+v", stats)
	}
}
