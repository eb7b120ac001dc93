// Package catalog serves board games, domains, and mechanics: paged,
// sorted, and filtered lists, single-item lookups, and the update and
// delete mutations.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/simp-lee/bglist/internal/cache"
	"github.com/simp-lee/bglist/internal/domain"
	"github.com/simp-lee/bglist/internal/pkg"
	"github.com/simp-lee/bglist/internal/query"
)

// Options holds the caching policy of a Service. A nil layer disables caching
// for that responder.
type Options struct {
	ListCache *cache.Layer
	ItemCache *cache.Layer
	ListTTL   time.Duration
	ItemTTL   time.Duration
}

// Service orchestrates validation, caching, and store access for one entity type.
type Service[T any] struct {
	entity    domain.EntityType
	store     Store[T]
	registry  *query.Registry
	validator *query.Validator
	opts      Options
}

// NewService creates a Service for entity.
// Panics if store, registry, or validator is nil.
func NewService[T any](entity domain.EntityType, store Store[T], registry *query.Registry, validator *query.Validator, opts Options) *Service[T] {
	if store == nil || registry == nil || validator == nil {
		panic("catalog.NewService: store, registry, and validator must not be nil")
	}
	return &Service[T]{
		entity:    entity,
		store:     store,
		registry:  registry,
		validator: validator,
		opts:      opts,
	}
}

// listResult is the cached value of one list request.
type listResult[T any] struct {
	Rows        []T `json:"rows"`
	RecordCount int `json:"recordCount"`
}

// List validates p, then serves the page from cache or from the store.
// self is the absolute URL of the collection.
func (s *Service[T]) List(ctx context.Context, self string, p query.Params) (domain.Page[[]T], error) {
	req, err := s.validator.Validate(s.entity, p)
	if err != nil {
		return domain.Page[[]T]{}, err
	}

	key := query.ListKey(s.entity, req)
	res, err := cache.GetOrCompute(ctx, s.opts.ListCache, key, s.opts.ListTTL, func(ctx context.Context) (listResult[T], error) {
		return s.compute(ctx, req)
	})
	if err != nil {
		return domain.Page[[]T]{}, fmt.Errorf("list %s: %w", s.entity, err)
	}

	return domain.Page[[]T]{
		Data:        res.Rows,
		PageIndex:   req.PageIndex,
		PageSize:    req.PageSize,
		RecordCount: res.RecordCount,
		Links:       []domain.Link{listLink(self, req)},
	}, nil
}

func (s *Service[T]) compute(ctx context.Context, req domain.ListRequest) (listResult[T], error) {
	countQuery, pageQuery, err := query.Build(s.registry, s.entity, req)
	if err != nil {
		return listResult[T]{}, err
	}
	total, err := s.store.Count(ctx, countQuery)
	if err != nil {
		return listResult[T]{}, err
	}
	rows, err := s.store.Find(ctx, pageQuery)
	if err != nil {
		return listResult[T]{}, err
	}
	if rows == nil {
		rows = []T{}
	}
	return listResult[T]{Rows: rows, RecordCount: total}, nil
}

// Get serves a single item from cache or from the store. A missing id yields
// an empty page, not an error. self is the absolute URL of the item.
func (s *Service[T]) Get(ctx context.Context, self string, id int) (domain.Page[*T], error) {
	key := query.ItemKey(s.entity, id)
	item, err := cache.GetOrCompute(ctx, s.opts.ItemCache, key, s.opts.ItemTTL, func(ctx context.Context) (*T, error) {
		v, err := s.store.GetByID(ctx, id)
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return v, err
	})
	if err != nil {
		return domain.Page[*T]{}, fmt.Errorf("get %s %d: %w", s.entity, id, err)
	}
	return itemPage(item, domain.Link{Href: self, Rel: "self", Method: http.MethodGet}), nil
}

// Update applies patch to the item it identifies. The cache is left alone;
// cached reads converge once their TTL elapses.
func (s *Service[T]) Update(ctx context.Context, self string, patch Patch[T]) (domain.Page[*T], error) {
	link := domain.Link{Href: self, Rel: "self", Method: http.MethodPost}
	item, err := s.store.Update(ctx, patch.Key(), patch.Apply)
	if domain.IsNotFound(err) {
		return itemPage[T](nil, link), nil
	}
	if err != nil {
		return domain.Page[*T]{}, fmt.Errorf("update %s %d: %w", s.entity, patch.Key(), err)
	}
	return itemPage(item, link), nil
}

// Delete removes the given ids and returns the removed items. Data is nil
// when nothing matched.
func (s *Service[T]) Delete(ctx context.Context, self string, ids []int) (domain.Page[[]T], error) {
	rows, err := s.store.Delete(ctx, ids)
	if err != nil {
		return domain.Page[[]T]{}, fmt.Errorf("delete %s: %w", s.entity, err)
	}
	if len(rows) == 0 {
		rows = nil
	}
	return domain.Page[[]T]{
		Data:        rows,
		PageIndex:   0,
		PageSize:    len(ids),
		RecordCount: len(rows),
		Links:       []domain.Link{{Href: self, Rel: "self", Method: http.MethodDelete}},
	}, nil
}

func itemPage[T any](item *T, link domain.Link) domain.Page[*T] {
	count := 0
	if item != nil {
		count = 1
	}
	return domain.Page[*T]{
		Data:        item,
		PageIndex:   0,
		PageSize:    1,
		RecordCount: count,
		Links:       []domain.Link{link},
	}
}

// listLink echoes the validated request back as the self link.
func listLink(self string, req domain.ListRequest) domain.Link {
	v := url.Values{}
	v.Set(pkg.ParamPageIndex, strconv.Itoa(req.PageIndex))
	v.Set(pkg.ParamPageSize, strconv.Itoa(req.PageSize))
	v.Set(pkg.ParamSortColumn, req.SortColumn)
	v.Set(pkg.ParamSortOrder, string(req.SortOrder))
	if req.FilterQuery != "" {
		v.Set(pkg.ParamFilterQuery, req.FilterQuery)
	}
	return domain.Link{Href: self + "?" + v.Encode(), Rel: "self", Method: http.MethodGet}
}
