// Package collection derives searchable, sortable, paginated pages from a
// bulk-fetched list and coordinates refreshes and deletes against the backend.
package collection

import (
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder reads a sort direction; anything but "desc" is ascending.
func ParseOrder(s string) Order {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// State is the per-view search, sort and page selection.
type State struct {
	Search    string
	SortField string
	SortOrder Order
	Page      int
}

// ToggleSort flips the direction when field is already the sort field and
// otherwise sorts ascending by field.
func (s State) ToggleSort(field string) State {
	if field == s.SortField {
		if s.SortOrder == Desc {
			s.SortOrder = Asc
		} else {
			s.SortOrder = Desc
		}
		return s
	}
	s.SortField = field
	s.SortOrder = Asc
	return s
}

// Filters are server-side query parameters such as isActive or status.
type Filters map[string]string

func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	return maps.Clone(f)
}

// Schema tells the pipeline how to read a T: its id, the designated search
// field, and the sort-key extractors by field name.
type Schema[T any] struct {
	ID     func(T) int
	Search func(T) string
	Fields map[string]func(T) any
}

func (s Schema[T]) Sortable(field string) bool {
	_, ok := s.Fields[field]
	return ok
}

// Page is one slice of the filtered and sorted collection.
type Page[T any] struct {
	Items      []T
	Current    int
	TotalPages int
	Total      int
	PageSize   int
}

func (p Page[T]) HasPrev() bool { return p.Current > 1 }

func (p Page[T]) HasNext() bool { return p.TotalPages > 0 && p.Current < p.TotalPages }

// Prev is the page "Previous" leads to; it stays put on the first page.
func (p Page[T]) Prev() int {
	if p.HasPrev() {
		return p.Current - 1
	}
	return p.Current
}

// Next is the page "Next" leads to; it stays put on the last page or when empty.
func (p Page[T]) Next() int {
	if p.HasNext() {
		return p.Current + 1
	}
	return p.Current
}

func (p Page[T]) Empty() bool { return len(p.Items) == 0 }

// Apply filters, sorts and paginates items. It is pure: items is never
// modified and identical inputs give identical pages.
func Apply[T any](items []T, schema Schema[T], st State, pageSize int) Page[T] {
	filtered := Filter(items, schema.Search, st.Search)
	if key, ok := schema.Fields[st.SortField]; ok {
		SortBy(filtered, key, st.SortOrder)
	}
	return Paginate(filtered, st.Page, pageSize)
}

// Filter returns a new slice with the items whose field contains term,
// ignoring case. An empty term keeps everything.
func Filter[T any](items []T, field func(T) string, term string) []T {
	term = strings.ToLower(term)
	out := make([]T, 0, len(items))
	for _, it := range items {
		if term == "" || field == nil || strings.Contains(strings.ToLower(field(it)), term) {
			out = append(out, it)
		}
	}
	return out
}

// SortBy stable-sorts items in place by the key extracted with key.
func SortBy[T any](items []T, key func(T) any, order Order) {
	col := collate.New(language.Und)
	slices.SortStableFunc(items, func(a, b T) int {
		c := compareValues(col, key(a), key(b))
		if order == Desc {
			return -c
		}
		return c
	})
}

// Paginate slices items into the page selected by page after clamping it.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	page = Clamp(page, totalPages)

	p := Page[T]{Current: page, TotalPages: totalPages, Total: total, PageSize: pageSize}
	start := (page - 1) * pageSize
	if start < total {
		p.Items = items[start:min(start+pageSize, total)]
	}
	return p
}

// Clamp keeps page within [1, totalPages]; with no pages it is 1.
func Clamp(page, totalPages int) int {
	switch {
	case page < 1, totalPages == 0:
		return 1
	case page > totalPages:
		return totalPages
	}
	return page
}

// Count is one bucket of CountBy.
type Count struct {
	Key string
	N   int
}

// CountBy tallies items by key, ordered by key.
func CountBy[T any](items []T, key func(T) string) []Count {
	counts := make(map[string]int)
	for _, it := range items {
		counts[key(it)]++
	}
	out := make([]Count, 0, len(counts))
	for _, k := range slices.Sorted(maps.Keys(counts)) {
		out = append(out, Count{Key: k, N: counts[k]})
	}
	return out
}
