package catalog

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/bglist/internal/domain"
	"github.com/simp-lee/bglist/internal/middleware"
	"github.com/simp-lee/bglist/internal/query"
)

// Response cache profiles of the catalog routes.
var (
	sharedMinute    = middleware.PublicFor(60 * time.Second)
	clientTwoMinute = middleware.PrivateFor(120 * time.Second)
)

// Module implements the app.Module interface for one catalog resource.
type Module[T any] struct {
	path        string
	handler     *Handler[T]
	listProfile middleware.CacheProfile
}

// NewModule creates a Module serving h under path (e.g. "/boardgames").
// Panics if h is nil.
func NewModule[T any](path string, h *Handler[T]) *Module[T] {
	if h == nil {
		panic("catalog.NewModule: handler must not be nil")
	}
	return &Module[T]{path: path, handler: h, listProfile: sharedMinute}
}

// RegisterRoutes registers the resource routes. Reads carry a cacheable
// profile; mutations are never stored.
func (m *Module[T]) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group(m.path)
	g.GET("", middleware.CacheControl(m.listProfile), m.handler.List)
	g.GET("/:id", middleware.CacheControl(sharedMinute), m.handler.Get)
	g.POST("", middleware.CacheControl(middleware.NoStore), m.handler.Update)
	g.DELETE("", middleware.CacheControl(middleware.NoStore), m.handler.Delete)
}

// Deps holds what every catalog module shares.
type Deps struct {
	DB        *gorm.DB
	Registry  *query.Registry
	Validator *query.Validator
	Options   Options
}

// Modules is the set of catalog resource modules.
type Modules struct {
	BoardGames *Module[domain.BoardGame]
	Domains    *Module[domain.Domain]
	Mechanics  *Module[domain.Mechanic]
}

// NewModules wires store, service, and handler for board games, domains, and mechanics.
func NewModules(d Deps) Modules {
	return Modules{
		BoardGames: newModule(d, domain.EntityBoardGame, "/boardgames", clientTwoMinute, func() Patch[domain.BoardGame] {
			return &UpdateBoardGameRequest{}
		}),
		Domains: newModule(d, domain.EntityDomain, "/domains", sharedMinute, func() Patch[domain.Domain] {
			return &UpdateDomainRequest{}
		}),
		Mechanics: newModule(d, domain.EntityMechanic, "/mechanics", clientTwoMinute, func() Patch[domain.Mechanic] {
			return &UpdateMechanicRequest{}
		}),
	}
}

func newModule[T any](d Deps, entity domain.EntityType, path string, list middleware.CacheProfile, newPatch func() Patch[T]) *Module[T] {
	svc := NewService(entity, NewRepository[T](d.DB), d.Registry, d.Validator, d.Options)
	m := NewModule(path, NewHandler(svc, newPatch))
	m.listProfile = list
	return m
}
