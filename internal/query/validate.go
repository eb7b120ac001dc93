package query

import (
	"fmt"
	"math"
	"strconv"
	"unicode"

	"github.com/simp-lee/bglist/internal/domain"
)

// MaxPageIndex bounds pageIndex so that pageIndex*pageSize cannot overflow.
const MaxPageIndex = math.MaxInt32

// Params carries list parameters exactly as a transport received them.
// A nil field means the parameter was absent.
type Params struct {
	PageIndex   *string
	PageSize    *string
	SortColumn  *string
	SortOrder   *string
	FilterQuery *string
}

// Options configures validator defaults and bounds.
type Options struct {
	MaxPageSize       int
	DefaultPageSize   int
	DefaultSortColumn string
	DefaultSortOrder  domain.SortOrder
}

// DefaultOptions mirrors the catalog defaults.
func DefaultOptions() Options {
	return Options{
		MaxPageSize:       100,
		DefaultPageSize:   10,
		DefaultSortColumn: "Name",
		DefaultSortOrder:  domain.SortAsc,
	}
}

// rule checks one parameter, writes the accepted value into req and returns
// a violation when the parameter is rejected.
type rule func(opts Options, s *Schema, p Params, req *domain.ListRequest) *domain.Violation

var rules = []rule{
	validatePageIndex,
	validatePageSize,
	validateSortColumn,
	validateSortOrder,
	validateFilterQuery,
}

// Validator checks raw list parameters against a Registry.
type Validator struct {
	registry *Registry
	opts     Options
}

// NewValidator creates a Validator. The default sort column must be sortable
// on every registered entity.
func NewValidator(registry *Registry, opts Options) (*Validator, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if opts.MaxPageSize < 1 {
		return nil, fmt.Errorf("invalid max page size %d: must be positive", opts.MaxPageSize)
	}
	if opts.DefaultPageSize < 1 || opts.DefaultPageSize > opts.MaxPageSize {
		return nil, fmt.Errorf("invalid default page size %d: must be between 1 and %d", opts.DefaultPageSize, opts.MaxPageSize)
	}
	if opts.DefaultSortOrder != domain.SortAsc && opts.DefaultSortOrder != domain.SortDesc {
		return nil, fmt.Errorf("invalid default sort order %q", opts.DefaultSortOrder)
	}
	for _, e := range registry.Entities() {
		if !registry.IsSortable(e, opts.DefaultSortColumn) {
			return nil, fmt.Errorf("default sort column %q is not sortable for %s", opts.DefaultSortColumn, e)
		}
	}
	return &Validator{registry: registry, opts: opts}, nil
}

// Validate runs every rule and returns either a validated request or a
// *domain.ValidationError listing all violations.
func (v *Validator) Validate(entity domain.EntityType, p Params) (domain.ListRequest, error) {
	s, ok := v.registry.Schema(entity)
	if !ok {
		return domain.ListRequest{}, domain.NewAppError(domain.CodeNotImplemented, fmt.Sprintf("entity %q is not listable", entity), nil)
	}

	var req domain.ListRequest
	var violations []domain.Violation
	for _, check := range rules {
		if violation := check(v.opts, s, p, &req); violation != nil {
			violations = append(violations, *violation)
		}
	}
	if len(violations) > 0 {
		return domain.ListRequest{}, &domain.ValidationError{Violations: violations}
	}
	return req, nil
}

func validatePageIndex(_ Options, _ *Schema, p Params, req *domain.ListRequest) *domain.Violation {
	if p.PageIndex == nil {
		req.PageIndex = 0
		return nil
	}
	n, err := strconv.Atoi(*p.PageIndex)
	if err != nil || n < 0 || n > MaxPageIndex {
		return &domain.Violation{
			Field:   "pageIndex",
			Code:    domain.ViolationInvalidPaging,
			Message: fmt.Sprintf("must be an integer between 0 and %d", MaxPageIndex),
		}
	}
	req.PageIndex = n
	return nil
}

func validatePageSize(opts Options, _ *Schema, p Params, req *domain.ListRequest) *domain.Violation {
	if p.PageSize == nil {
		req.PageSize = opts.DefaultPageSize
		return nil
	}
	n, err := strconv.Atoi(*p.PageSize)
	if err != nil || n < 1 || n > opts.MaxPageSize {
		return &domain.Violation{
			Field:   "pageSize",
			Code:    domain.ViolationInvalidPaging,
			Message: fmt.Sprintf("must be an integer between 1 and %d", opts.MaxPageSize),
		}
	}
	req.PageSize = n
	return nil
}

func validateSortColumn(opts Options, s *Schema, p Params, req *domain.ListRequest) *domain.Violation {
	if p.SortColumn == nil {
		req.SortColumn = opts.DefaultSortColumn
		return nil
	}
	name := *p.SortColumn
	if !isLettersOnly(name) {
		return &domain.Violation{
			Field:   "sortColumn",
			Code:    domain.ViolationUnknownSortColumn,
			Message: "must be a non-empty name made of letters only",
		}
	}
	if _, ok := s.SortColumn(name); !ok {
		return &domain.Violation{
			Field:   "sortColumn",
			Code:    domain.ViolationUnknownSortColumn,
			Message: fmt.Sprintf("column %q is not sortable for %s", name, s.Entity),
		}
	}
	req.SortColumn = name
	return nil
}

func validateSortOrder(opts Options, _ *Schema, p Params, req *domain.ListRequest) *domain.Violation {
	if p.SortOrder == nil {
		req.SortOrder = opts.DefaultSortOrder
		return nil
	}
	switch order := domain.SortOrder(*p.SortOrder); order {
	case domain.SortAsc, domain.SortDesc:
		req.SortOrder = order
		return nil
	default:
		return &domain.Violation{
			Field:   "sortOrder",
			Code:    domain.ViolationInvalidSortOrder,
			Message: fmt.Sprintf("must be one of %s, %s", domain.SortAsc, domain.SortDesc),
		}
	}
}

func validateFilterQuery(_ Options, _ *Schema, p Params, req *domain.ListRequest) *domain.Violation {
	if p.FilterQuery != nil {
		req.FilterQuery = *p.FilterQuery
	}
	return nil
}

func isLettersOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
