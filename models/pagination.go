package models

// maxFullWindow, bu sayıya kadar sayfa varsa tüm numaralar gösterilir.
const maxFullWindow = 7

// PageItem, sayfalama çubuğundaki tek öğe: bir numara ya da "…".
type PageItem struct {
	Page     int  `json:"page,omitempty"`
	Current  bool `json:"current,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PageLink, önceki/sonraki aksiyonu: hedef sayfa ve tıklanabilirlik.
type PageLink struct {
	Page    int  `json:"page"`
	Enabled bool `json:"enabled"`
}

// Pagination, bir Page'den türetilen sayfalama görünümü.
type Pagination struct {
	Visible bool       `json:"visible"`
	Index   int        `json:"index"`
	Pages   int        `json:"pages"`
	Items   []PageItem `json:"items"`
	Prev    PageLink   `json:"prev"`
	Next    PageLink   `json:"next"`
}

// NewPagination, sayfa bilgisinden görünümü kurar.
//
// pages <= 1 → gizli. pages <= 7 → tüm numaralar.
// Aksi halde: 1, (index > 3 ise …), index-1..index+1 ([2, pages-1] aralığına kırpılmış),
// (index < pages-2 ise …), pages.
func NewPagination(index, pages int, hasPrevious, hasNext bool) Pagination {
	p := Pagination{
		Visible: pages > 1,
		Index:   index,
		Pages:   pages,
		Prev:    PageLink{Page: index - 1, Enabled: hasPrevious},
		Next:    PageLink{Page: index + 1, Enabled: hasNext},
	}
	if !p.Visible {
		return p
	}

	num := func(n int) PageItem { return PageItem{Page: n, Current: n == index} }

	if pages <= maxFullWindow {
		for i := 1; i <= pages; i++ {
			p.Items = append(p.Items, num(i))
		}
		return p
	}

	p.Items = append(p.Items, num(1))
	if index > 3 {
		p.Items = append(p.Items, PageItem{Ellipsis: true})
	}
	start := max(2, index-1)
	end := min(pages-1, index+1)
	for i := start; i <= end; i++ {
		p.Items = append(p.Items, num(i))
	}
	if index < pages-2 {
		p.Items = append(p.Items, PageItem{Ellipsis: true})
	}
	p.Items = append(p.Items, num(pages))
	return p
}

// PaginationOf, Page yanıtından görünümü kurar.
func PaginationOf[T any](page *Page[T]) Pagination {
	return NewPagination(page.Index, page.Pages, page.HasPrevious, page.HasNext)
}

// Allows, bir sayfaya gidilebilir mi: 1 <= page <= pages.
func (p Pagination) Allows(page int) bool {
	return page >= 1 && page <= p.Pages
}
