package pkg

import (
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/bglist/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// List query parameter names.
const (
	ParamPageIndex   = "pageIndex"
	ParamPageSize    = "pageSize"
	ParamSortColumn  = "sortColumn"
	ParamSortOrder   = "sortOrder"
	ParamFilterQuery = "filterQuery"
)

// ListParams extracts the raw list parameters from the query string.
// A parameter that is absent stays nil; one that is present but empty is kept
// as an empty string so the validator can reject it.
func ListParams(c *gin.Context) query.Params {
	return query.Params{
		PageIndex:   queryPtr(c, ParamPageIndex),
		PageSize:    queryPtr(c, ParamPageSize),
		SortColumn:  queryPtr(c, ParamSortColumn),
		SortOrder:   queryPtr(c, ParamSortOrder),
		FilterQuery: queryPtr(c, ParamFilterQuery),
	}
}

func queryPtr(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}

// Paginate returns a GORM scope that skips skip rows and takes take rows.
func Paginate(skip, take int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(skip).Limit(take)
	}
}

// Sort returns a GORM scope that orders by a single registry-resolved column.
// The column is emitted as a quoted identifier, never as raw SQL.
func Sort(o query.Order) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: o.Column.DBName},
			Desc:   o.Desc,
		})
	}
}

// Filter returns a GORM scope applying a case-sensitive prefix or substring
// match on both SQLite and PostgreSQL. The value is bound as a parameter and
// has no wildcard characters. An inactive filter leaves the query untouched.
func Filter(f query.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !f.Active() {
			return db
		}
		col := clause.Column{Name: f.Column.DBName}
		switch f.Match {
		case query.MatchPrefix:
			return db.Where(clause.Expr{
				SQL:  "substr(?, 1, ?) = ?",
				Vars: []any{col, utf8.RuneCountInString(f.Value), f.Value},
			})
		case query.MatchContains:
			if db.Dialector != nil && db.Dialector.Name() == "postgres" {
				return db.Where(clause.Expr{SQL: "strpos(?, ?) > 0", Vars: []any{col, f.Value}})
			}
			return db.Where(clause.Expr{SQL: "instr(?, ?) > 0", Vars: []any{col, f.Value}})
		default:
			_ = db.AddError(gorm.ErrInvalidValue)
			return db
		}
	}
}
