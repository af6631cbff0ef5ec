package collection

import (
	"context"
	"strings"
)

// All is the wildcard accepted by category and status filters
const All = "All"

// FeaturedFilter is the tri-state featured predicate
type FeaturedFilter string

// Featured filter values
const (
	FeaturedAll  FeaturedFilter = "all"
	FeaturedOnly FeaturedFilter = "featured"
	FeaturedNot  FeaturedFilter = "not-featured"
)

// ParseFeatured maps query values onto a FeaturedFilter. Anything it does
// not recognise matches everything.
func ParseFeatured(s string) FeaturedFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "featured", "true", "yes", "1":
		return FeaturedOnly
	case "not-featured", "not featured", "false", "no", "0":
		return FeaturedNot
	default:
		return FeaturedAll
	}
}

// Fields exposes the attributes of E that the view filters on. A nil
// accessor means E has no such attribute and the matching predicate is
// ignored.
type Fields[E any] struct {
	Category func(e *E) string
	Status   func(e *E) string
	Featured func(e *E) bool
	Text     func(e *E) []string
}

// Query is a set of independent predicates; the zero value matches all
type Query struct {
	Category string
	Status   string
	Featured FeaturedFilter
	Text     string
}

// Match reports whether e satisfies every active predicate of q
func (f Fields[E]) Match(e *E, q Query) bool {
	if active(q.Category) && f.Category != nil && f.Category(e) != q.Category {
		return false
	}
	if active(q.Status) && f.Status != nil && f.Status(e) != q.Status {
		return false
	}
	if f.Featured != nil {
		switch q.Featured {
		case FeaturedOnly:
			if !f.Featured(e) {
				return false
			}
		case FeaturedNot:
			if f.Featured(e) {
				return false
			}
		}
	}
	if needle := strings.ToLower(strings.TrimSpace(q.Text)); needle != "" && f.Text != nil {
		for _, s := range f.Text(e) {
			if strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false
	}
	return true
}

func active(v string) bool {
	return v != "" && v != All
}

// Apply returns the items matching q, preserving their order
func Apply[E any](items []E, q Query, f Fields[E]) []E {
	out := make([]E, 0, len(items))
	for i := range items {
		if f.Match(&items[i], q) {
			out = append(out, items[i])
		}
	}
	return out
}

// Page is one page of a filtered view
type Page[E any] struct {
	Items      []E `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// TotalPages is max(1, ceil(total/pageSize))
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Paginate slices out the 1-based page of items, clamping page into
// [1, TotalPages].
func Paginate[E any](items []E, page, pageSize int) Page[E] {
	if pageSize <= 0 {
		pageSize = len(items)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	pages := TotalPages(len(items), pageSize)
	page = min(max(page, 1), pages)

	start := min((page-1)*pageSize, len(items))
	end := min(start+pageSize, len(items))
	return Page[E]{
		Items:      items[start:end],
		Total:      len(items),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}

// Search filters the collection with q and returns the requested page
// at the schema's page size.
func (s *Store[E, P]) Search(ctx context.Context, q Query, page int) (Page[E], error) {
	items, err := s.List(ctx)
	if err != nil {
		return Page[E]{}, err
	}
	return Paginate(Apply(items, q, s.schema.Fields), page, s.schema.PageSize), nil
}
