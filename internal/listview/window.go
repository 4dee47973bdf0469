package listview

// DefaultRadius is how many page numbers are shown on each side of the
// current page.
const DefaultRadius = 2

// PageLink is one element of the windowed page-number sequence: either a
// numbered link or an ellipsis placeholder for a gap.
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// NavLink is a first/prev/next/last control. Boundary links are rendered
// disabled instead of omitted so the pager keeps a stable shape.
type NavLink struct {
	Page     int
	Disabled bool
}

// Pager is the fully computed pagination control for one page of results.
type Pager struct {
	First NavLink
	Prev  NavLink
	Next  NavLink
	Last  NavLink
	Links []PageLink
}

// BuildPager computes the pagination control for currentPage of
// totalPages with the given window radius. It reports false when a pager
// should not be shown at all (one page or less).
func BuildPager(currentPage, totalPages, radius int) (Pager, bool) {
	if totalPages <= 1 {
		return Pager{}, false
	}
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}
	if radius < 1 {
		radius = DefaultRadius
	}

	pager := Pager{
		First: NavLink{Page: 1, Disabled: currentPage == 1},
		Prev:  NavLink{Page: max(1, currentPage-1), Disabled: currentPage == 1},
		Next:  NavLink{Page: min(totalPages, currentPage+1), Disabled: currentPage == totalPages},
		Last:  NavLink{Page: totalPages, Disabled: currentPage == totalPages},
	}

	prev := 0
	for page := 1; page <= totalPages; page++ {
		if page != 1 && page != totalPages && (page < currentPage-radius || page > currentPage+radius) {
			continue
		}
		if prev > 0 && page-prev > 1 {
			pager.Links = append(pager.Links, PageLink{Ellipsis: true})
		}
		pager.Links = append(pager.Links, PageLink{Number: page, Current: page == currentPage})
		prev = page
	}
	return pager, true
}
