package query

import (
	"fmt"

	"github.com/simp-lee/bglist/internal/domain"
)

// Filter restricts rows by comparing Column against Value. An empty Value matches all rows.
type Filter struct {
	Column Column
	Match  MatchMode
	Value  string
}

// Active reports whether the filter restricts anything.
func (f Filter) Active() bool {
	return f.Value != ""
}

// Order sorts rows by a single column. Ties are left in store-defined order;
// no secondary key is added.
type Order struct {
	Column Column
	Desc   bool
}

// CountQuery counts the rows matching Filter, ignoring order and paging.
type CountQuery struct {
	Filter Filter
}

// PageQuery selects one page: filter, then order, then skip Skip rows and take Take.
type PageQuery struct {
	Filter Filter
	Order  Order
	Skip   int
	Take   int
}

// Build turns a validated request into its count and page queries.
// Column names are resolved through the registry again, so a request that did
// not come from the validator cannot smuggle a column into the store.
func Build(registry *Registry, entity domain.EntityType, req domain.ListRequest) (CountQuery, PageQuery, error) {
	s, ok := registry.Schema(entity)
	if !ok {
		return CountQuery{}, PageQuery{}, fmt.Errorf("build query: unknown entity %q", entity)
	}
	col, ok := s.SortColumn(req.SortColumn)
	if !ok {
		return CountQuery{}, PageQuery{}, fmt.Errorf("build query: column %q is not sortable for %s", req.SortColumn, entity)
	}
	if req.SortOrder != domain.SortAsc && req.SortOrder != domain.SortDesc {
		return CountQuery{}, PageQuery{}, fmt.Errorf("build query: invalid sort order %q", req.SortOrder)
	}
	if req.PageIndex < 0 || req.PageSize < 1 {
		return CountQuery{}, PageQuery{}, fmt.Errorf("build query: invalid paging %d/%d", req.PageIndex, req.PageSize)
	}

	filter := Filter{Column: s.Filter, Match: s.Match, Value: req.FilterQuery}
	return CountQuery{Filter: filter}, PageQuery{
		Filter: filter,
		Order:  Order{Column: col, Desc: req.SortOrder == domain.SortDesc},
		Skip:   req.PageIndex * req.PageSize,
		Take:   req.PageSize,
	}, nil
}
