package catalog

import "github.com/simp-lee/bglist/internal/domain"

// Patch is an update request for entity type T.
type Patch[T any] interface {
	// Key returns the id of the item to update.
	Key() int
	// Apply copies the provided fields onto v.
	Apply(v *T)
}

// UpdateBoardGameRequest represents the input for updating a board game.
// Zero or negative numbers and an empty name leave the stored value unchanged.
type UpdateBoardGameRequest struct {
	ID         int    `json:"id" binding:"required,gt=0"`
	Name       string `json:"name" binding:"omitempty,max=200"`
	Year       int    `json:"year"`
	MinPlayers int    `json:"minPlayers"`
	MaxPlayers int    `json:"maxPlayers"`
	PlayTime   int    `json:"playTime"`
	MinAge     int    `json:"minAge"`
}

func (r *UpdateBoardGameRequest) Key() int { return r.ID }

func (r *UpdateBoardGameRequest) Apply(g *domain.BoardGame) {
	if r.Name != "" {
		g.Name = r.Name
	}
	if r.Year > 0 {
		g.Year = r.Year
	}
	if r.MinPlayers > 0 {
		g.MinPlayers = r.MinPlayers
	}
	if r.MaxPlayers > 0 {
		g.MaxPlayers = r.MaxPlayers
	}
	if r.PlayTime > 0 {
		g.PlayTime = r.PlayTime
	}
	if r.MinAge > 0 {
		g.MinAge = r.MinAge
	}
}

// UpdateDomainRequest represents the input for renaming a domain.
type UpdateDomainRequest struct {
	ID   int    `json:"id" binding:"required,gt=0"`
	Name string `json:"name" binding:"required,max=200,letters"`
}

func (r *UpdateDomainRequest) Key() int { return r.ID }

func (r *UpdateDomainRequest) Apply(d *domain.Domain) {
	d.Name = r.Name
}

// UpdateMechanicRequest represents the input for renaming a mechanic.
type UpdateMechanicRequest struct {
	ID   int    `json:"id" binding:"required,gt=0"`
	Name string `json:"name" binding:"required,max=200,letters"`
}

func (r *UpdateMechanicRequest) Key() int { return r.ID }

func (r *UpdateMechanicRequest) Apply(m *domain.Mechanic) {
	m.Name = r.Name
}
