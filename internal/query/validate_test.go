package query

import (
	"errors"
	"strconv"
	"testing"

	"github.com/simp-lee/bglist/internal/domain"
)

func strPtr(s string) *string { return &s }

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator(CatalogRegistry(), DefaultOptions())
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}

func violationsOf(t *testing.T, err error) []domain.Violation {
	t.Helper()
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}
	return vErr.Violations
}

func TestValidate_Defaults(t *testing.T) {
	v := newTestValidator(t)

	req, err := v.Validate(domain.EntityBoardGame, Params{})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := domain.ListRequest{PageIndex: 0, PageSize: 10, SortColumn: "Name", SortOrder: domain.SortAsc}
	if req != want {
		t.Errorf("Validate() = %+v; want %+v", req, want)
	}
}

func TestValidate_AcceptsExplicitValues(t *testing.T) {
	v := newTestValidator(t)

	req, err := v.Validate(domain.EntityBoardGame, Params{
		PageIndex:   strPtr("3"),
		PageSize:    strPtr("100"),
		SortColumn:  strPtr("Year"),
		SortOrder:   strPtr("DESC"),
		FilterQuery: strPtr("Catan"),
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := domain.ListRequest{PageIndex: 3, PageSize: 100, SortColumn: "Year", SortOrder: domain.SortDesc, FilterQuery: "Catan"}
	if req != want {
		t.Errorf("Validate() = %+v; want %+v", req, want)
	}
}

func TestValidate_RejectsSingleField(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		field  string
		code   domain.ViolationCode
	}{
		{"page size zero", Params{PageSize: strPtr("0")}, "pageSize", domain.ViolationInvalidPaging},
		{"page size above max", Params{PageSize: strPtr("101")}, "pageSize", domain.ViolationInvalidPaging},
		{"page size not a number", Params{PageSize: strPtr("ten")}, "pageSize", domain.ViolationInvalidPaging},
		{"page size empty", Params{PageSize: strPtr("")}, "pageSize", domain.ViolationInvalidPaging},
		{"negative page index", Params{PageIndex: strPtr("-1")}, "pageIndex", domain.ViolationInvalidPaging},
		{"page index overflow", Params{PageIndex: strPtr(strconv.Itoa(MaxPageIndex + 1))}, "pageIndex", domain.ViolationInvalidPaging},
		{"unknown column", Params{SortColumn: strPtr("Password")}, "sortColumn", domain.ViolationUnknownSortColumn},
		{"column wrong case", Params{SortColumn: strPtr("name")}, "sortColumn", domain.ViolationUnknownSortColumn},
		{"column injection", Params{SortColumn: strPtr("Name; DROP TABLE board_games")}, "sortColumn", domain.ViolationUnknownSortColumn},
		{"column with digits", Params{SortColumn: strPtr("Name1")}, "sortColumn", domain.ViolationUnknownSortColumn},
		{"empty column", Params{SortColumn: strPtr("")}, "sortColumn", domain.ViolationUnknownSortColumn},
		{"lowercase order", Params{SortOrder: strPtr("asc")}, "sortOrder", domain.ViolationInvalidSortOrder},
		{"mixed case order", Params{SortOrder: strPtr("Desc")}, "sortOrder", domain.ViolationInvalidSortOrder},
		{"empty order", Params{SortOrder: strPtr("")}, "sortOrder", domain.ViolationInvalidSortOrder},
	}
	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(domain.EntityBoardGame, tt.params)
			got := violationsOf(t, err)
			if len(got) != 1 {
				t.Fatalf("expected 1 violation, got %d: %+v", len(got), got)
			}
			if got[0].Field != tt.field || got[0].Code != tt.code {
				t.Errorf("violation = %+v; want field=%s code=%s", got[0], tt.field, tt.code)
			}
		})
	}
}

func TestValidate_AggregatesAllViolations(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.Validate(domain.EntityMechanic, Params{
		PageIndex:  strPtr("x"),
		PageSize:   strPtr("1000"),
		SortColumn: strPtr("Year"),
		SortOrder:  strPtr("up"),
	})
	got := violationsOf(t, err)

	wantFields := []string{"pageIndex", "pageSize", "sortColumn", "sortOrder"}
	if len(got) != len(wantFields) {
		t.Fatalf("expected %d violations, got %+v", len(wantFields), got)
	}
	for i, f := range wantFields {
		if got[i].Field != f {
			t.Errorf("violation[%d].Field = %q; want %q", i, got[i].Field, f)
		}
	}
	if domain.HTTPStatusCode(err) != 501 {
		t.Errorf("status = %d; want 501 when a sort column is unknown", domain.HTTPStatusCode(err))
	}
}

func TestValidate_ColumnAllowListIsPerEntity(t *testing.T) {
	v := newTestValidator(t)

	if _, err := v.Validate(domain.EntityBoardGame, Params{SortColumn: strPtr("BGGRank")}); err != nil {
		t.Errorf("BGGRank should be sortable for board games: %v", err)
	}
	_, err := v.Validate(domain.EntityDomain, Params{SortColumn: strPtr("BGGRank")})
	if got := violationsOf(t, err); got[0].Code != domain.ViolationUnknownSortColumn {
		t.Errorf("BGGRank on domains = %+v; want UnknownSortColumn", got)
	}
}

func TestValidate_FilterVerbatim(t *testing.T) {
	v := newTestValidator(t)

	req, err := v.Validate(domain.EntityDomain, Params{FilterQuery: strPtr("  War%_games ")})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if req.FilterQuery != "  War%_games " {
		t.Errorf("FilterQuery = %q; want it unchanged", req.FilterQuery)
	}
}

func TestValidate_UnknownEntity(t *testing.T) {
	v := newTestValidator(t)

	_, err := v.Validate("Account", Params{})
	if domain.HTTPStatusCode(err) != 501 {
		t.Errorf("status = %d; want 501", domain.HTTPStatusCode(err))
	}
}

func TestNewValidator_RejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Options)
	}{
		{"zero max", func(o *Options) { o.MaxPageSize = 0 }},
		{"default above max", func(o *Options) { o.DefaultPageSize = 200 }},
		{"default zero", func(o *Options) { o.DefaultPageSize = 0 }},
		{"bad order", func(o *Options) { o.DefaultSortOrder = "asc" }},
		{"column not shared", func(o *Options) { o.DefaultSortColumn = "Year" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mod(&opts)
			if _, err := NewValidator(CatalogRegistry(), opts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := NewValidator(nil, DefaultOptions()); err == nil {
		t.Fatal("expected error for nil registry")
	}
}
