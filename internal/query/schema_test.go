package query

import (
	"slices"
	"testing"

	"github.com/simp-lee/bglist/internal/domain"
)

func TestCatalogRegistry_AllowedSortColumns(t *testing.T) {
	r := CatalogRegistry()

	got := r.AllowedSortColumns(domain.EntityDomain)
	want := []string{"CreatedDate", "Id", "LastModifiedDate", "Name"}
	if !slices.Equal(got, want) {
		t.Errorf("AllowedSortColumns(Domain) = %v; want %v", got, want)
	}

	bg := r.AllowedSortColumns(domain.EntityBoardGame)
	for _, name := range []string{"Id", "Name", "Year", "BGGRank", "RatingAverage"} {
		if !slices.Contains(bg, name) {
			t.Errorf("AllowedSortColumns(BoardGame) missing %q", name)
		}
	}
	if slices.Contains(bg, "Password") {
		t.Error("AllowedSortColumns(BoardGame) should not contain Password")
	}

	if cols := r.AllowedSortColumns("Account"); cols != nil {
		t.Errorf("AllowedSortColumns(unknown) = %v; want nil", cols)
	}
}

func TestCatalogRegistry_FilterColumn(t *testing.T) {
	r := CatalogRegistry()
	for _, e := range []domain.EntityType{domain.EntityBoardGame, domain.EntityDomain, domain.EntityMechanic} {
		if got := r.FilterColumn(e); got != "Name" {
			t.Errorf("FilterColumn(%s) = %q; want Name", e, got)
		}
	}
	if got := r.FilterColumn("Account"); got != "" {
		t.Errorf("FilterColumn(unknown) = %q; want empty", got)
	}

	s, _ := r.Schema(domain.EntityBoardGame)
	if s.Match != MatchPrefix {
		t.Errorf("BoardGame match = %d; want MatchPrefix", s.Match)
	}
	s, _ = r.Schema(domain.EntityMechanic)
	if s.Match != MatchContains {
		t.Errorf("Mechanic match = %d; want MatchContains", s.Match)
	}
}

func TestNewRegistry_RejectsInvalidSchemas(t *testing.T) {
	valid := Schema{Entity: "Thing", Sortable: []Column{idColumn}, Filter: nameColumn, Match: MatchPrefix}

	tests := []struct {
		name    string
		schemas []Schema
	}{
		{"missing entity", []Schema{{Sortable: valid.Sortable, Filter: nameColumn, Match: MatchPrefix}}},
		{"duplicate entity", []Schema{valid, valid}},
		{"no sortable columns", []Schema{{Entity: "Thing", Filter: nameColumn, Match: MatchPrefix}}},
		{"non-letter column name", []Schema{{Entity: "Thing", Sortable: []Column{{Name: "name;drop", DBName: "name"}}, Filter: nameColumn, Match: MatchPrefix}}},
		{"missing db name", []Schema{{Entity: "Thing", Sortable: []Column{{Name: "Name"}}, Filter: nameColumn, Match: MatchPrefix}}},
		{"missing filter", []Schema{{Entity: "Thing", Sortable: valid.Sortable, Match: MatchPrefix}}},
		{"bad match mode", []Schema{{Entity: "Thing", Sortable: valid.Sortable, Filter: nameColumn}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.schemas...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewRegistry_CopiesColumns(t *testing.T) {
	cols := []Column{idColumn, nameColumn}
	r, err := NewRegistry(Schema{Entity: "Thing", Sortable: cols, Filter: nameColumn, Match: MatchContains})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	cols[0] = Column{Name: "Password", DBName: "password"}

	if r.IsSortable("Thing", "Password") {
		t.Error("registry must not observe caller mutations")
	}
	if !r.IsSortable("Thing", "Id") {
		t.Error("Id should remain sortable")
	}
}
