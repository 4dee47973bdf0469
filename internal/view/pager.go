package view

import "github.com/veritrack/veritrack/internal/listview"

// NavLink is a rendered first/prev/next/last control. Disabled links
// keep their place so the control's shape is stable across pages.
type NavLink struct {
	Href     string
	Disabled bool
}

// PageLink is one rendered page number or ellipsis placeholder.
type PageLink struct {
	Href     string
	Number   int
	Current  bool
	Ellipsis bool
}

// Pager is the pagination control shared by every list page.
type Pager struct {
	First NavLink
	Prev  NavLink
	Next  NavLink
	Last  NavLink
	Links []PageLink
}

// NewPager attaches hrefs to a computed page window. It returns nil when
// the pager should not be shown, which the templates treat as "render
// nothing".
func NewPager(pager listview.Pager, show bool, hrefFor func(page int) string) *Pager {
	if !show {
		return nil
	}
	nav := func(link listview.NavLink) NavLink {
		return NavLink{Href: hrefFor(link.Page), Disabled: link.Disabled}
	}
	out := &Pager{
		First: nav(pager.First),
		Prev:  nav(pager.Prev),
		Next:  nav(pager.Next),
		Last:  nav(pager.Last),
	}
	for _, link := range pager.Links {
		if link.Ellipsis {
			out.Links = append(out.Links, PageLink{Ellipsis: true})
			continue
		}
		out.Links = append(out.Links, PageLink{
			Href:    hrefFor(link.Number),
			Number:  link.Number,
			Current: link.Current,
		})
	}
	return out
}
