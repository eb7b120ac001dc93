// Package query turns untrusted list parameters into validated requests,
// store-level query plans, and cache keys.
package query

import (
	"fmt"
	"slices"

	"github.com/simp-lee/bglist/internal/domain"
)

// MatchMode selects how the filter value is compared against the filter column.
type MatchMode int

const (
	// MatchPrefix keeps rows whose column starts with the filter value.
	MatchPrefix MatchMode = iota + 1
	// MatchContains keeps rows whose column contains the filter value.
	MatchContains
)

// Column binds a client-facing column name to its storage column.
// Only DBName ever reaches the store.
type Column struct {
	Name   string
	DBName string
}

// Schema describes what a listable entity type exposes to clients.
type Schema struct {
	Entity   domain.EntityType
	Sortable []Column
	Filter   Column
	Match    MatchMode
}

// SortColumn resolves a client-facing sort column name.
func (s *Schema) SortColumn(name string) (Column, bool) {
	for _, c := range s.Sortable {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

var (
	idColumn               = Column{Name: "Id", DBName: "id"}
	nameColumn             = Column{Name: "Name", DBName: "name"}
	createdDateColumn      = Column{Name: "CreatedDate", DBName: "created_date"}
	lastModifiedDateColumn = Column{Name: "LastModifiedDate", DBName: "last_modified_date"}
)

// catalogSchemas is the audited allow-list for every listable entity.
var catalogSchemas = []Schema{
	{
		Entity: domain.EntityBoardGame,
		Sortable: []Column{
			idColumn,
			nameColumn,
			{Name: "Year", DBName: "year"},
			{Name: "MinPlayers", DBName: "min_players"},
			{Name: "MaxPlayers", DBName: "max_players"},
			{Name: "PlayTime", DBName: "play_time"},
			{Name: "MinAge", DBName: "min_age"},
			{Name: "UsersRated", DBName: "users_rated"},
			{Name: "RatingAverage", DBName: "rating_average"},
			{Name: "BGGRank", DBName: "bgg_rank"},
			{Name: "ComplexityAverage", DBName: "complexity_average"},
			{Name: "OwnedUsers", DBName: "owned_users"},
			createdDateColumn,
			lastModifiedDateColumn,
		},
		Filter: nameColumn,
		Match:  MatchPrefix,
	},
	{
		Entity:   domain.EntityDomain,
		Sortable: []Column{idColumn, nameColumn, createdDateColumn, lastModifiedDateColumn},
		Filter:   nameColumn,
		Match:    MatchContains,
	},
	{
		Entity:   domain.EntityMechanic,
		Sortable: []Column{idColumn, nameColumn, createdDateColumn, lastModifiedDateColumn},
		Filter:   nameColumn,
		Match:    MatchContains,
	},
}

// Registry maps entity types to their schemas. It is read-only once built.
type Registry struct {
	schemas map[domain.EntityType]*Schema
}

// NewRegistry builds a Registry from the given schemas.
func NewRegistry(schemas ...Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[domain.EntityType]*Schema, len(schemas))}
	for i := range schemas {
		s := schemas[i]
		if s.Entity == "" {
			return nil, fmt.Errorf("schema at index %d has no entity type", i)
		}
		if _, exists := r.schemas[s.Entity]; exists {
			return nil, fmt.Errorf("duplicate schema for entity %q", s.Entity)
		}
		if len(s.Sortable) == 0 {
			return nil, fmt.Errorf("schema %q has no sortable columns", s.Entity)
		}
		for _, c := range s.Sortable {
			if !isLettersOnly(c.Name) || c.DBName == "" {
				return nil, fmt.Errorf("schema %q has invalid sortable column %q", s.Entity, c.Name)
			}
		}
		if s.Filter.DBName == "" {
			return nil, fmt.Errorf("schema %q has no filter column", s.Entity)
		}
		if s.Match != MatchPrefix && s.Match != MatchContains {
			return nil, fmt.Errorf("schema %q has invalid match mode %d", s.Entity, s.Match)
		}
		s.Sortable = slices.Clone(s.Sortable)
		r.schemas[s.Entity] = &s
	}
	return r, nil
}

// CatalogRegistry returns the registry for board games, domains, and mechanics.
func CatalogRegistry() *Registry {
	r, err := NewRegistry(catalogSchemas...)
	if err != nil {
		panic("query.CatalogRegistry: " + err.Error())
	}
	return r
}

// Schema returns the schema registered for entity.
func (r *Registry) Schema(entity domain.EntityType) (*Schema, bool) {
	s, ok := r.schemas[entity]
	return s, ok
}

// AllowedSortColumns returns the client-facing sortable column names for entity, sorted.
func (r *Registry) AllowedSortColumns(entity domain.EntityType) []string {
	s, ok := r.schemas[entity]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(s.Sortable))
	for _, c := range s.Sortable {
		names = append(names, c.Name)
	}
	slices.Sort(names)
	return names
}

// IsSortable reports whether name is an allowed sort column for entity.
func (r *Registry) IsSortable(entity domain.EntityType, name string) bool {
	s, ok := r.schemas[entity]
	if !ok {
		return false
	}
	_, ok = s.SortColumn(name)
	return ok
}

// FilterColumn returns the client-facing filter column name for entity.
func (r *Registry) FilterColumn(entity domain.EntityType) string {
	s, ok := r.schemas[entity]
	if !ok {
		return ""
	}
	return s.Filter.Name
}

// Entities returns the registered entity types, sorted.
func (r *Registry) Entities() []domain.EntityType {
	out := make([]domain.EntityType, 0, len(r.schemas))
	for e := range r.schemas {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}
