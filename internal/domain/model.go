package domain

import "time"

// BaseModel is the common base struct for all catalog entities.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID               int       `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:200;not null;index" json:"name"`
	CreatedDate      time.Time `gorm:"autoCreateTime" json:"createdDate"`
	LastModifiedDate time.Time `gorm:"autoUpdateTime" json:"lastModifiedDate"`
}

// EntityType identifies a listable record kind.
type EntityType string

const (
	EntityBoardGame EntityType = "BoardGame"
	EntityDomain    EntityType = "Domain"
	EntityMechanic  EntityType = "Mechanic"
)

// SortOrder is the direction of a list ordering.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ListRequest holds validated paging, sorting, and filtering parameters.
// Values are only produced by the request validator and are not mutated afterwards.
type ListRequest struct {
	PageIndex   int
	PageSize    int
	SortColumn  string
	SortOrder   SortOrder
	FilterQuery string
}

// Link is a hypermedia reference attached to a response envelope.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Page is the response envelope shared by every catalog endpoint.
// For list endpoints D is a slice; for single-item endpoints it is a pointer
// that stays nil when nothing matched.
type Page[D any] struct {
	Data        D      `json:"data"`
	PageIndex   int    `json:"pageIndex"`
	PageSize    int    `json:"pageSize"`
	RecordCount int    `json:"recordCount"`
	Links       []Link `json:"links"`
}
