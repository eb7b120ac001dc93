package query

import (
	"strconv"
	"strings"

	"github.com/simp-lee/bglist/internal/domain"
)

// ListKey derives the cache key of a validated list request.
// Fields are written in a fixed order and the filter is quoted, so equal
// requests always share a key and any field change, including filter casing,
// yields a different one.
func ListKey(entity domain.EntityType, req domain.ListRequest) string {
	var b strings.Builder
	b.WriteString("list:")
	b.WriteString(string(entity))
	b.WriteString(":pageIndex=")
	b.WriteString(strconv.Itoa(req.PageIndex))
	b.WriteString(":pageSize=")
	b.WriteString(strconv.Itoa(req.PageSize))
	b.WriteString(":sortColumn=")
	b.WriteString(req.SortColumn)
	b.WriteString(":sortOrder=")
	b.WriteString(string(req.SortOrder))
	b.WriteString(":filterQuery=")
	b.WriteString(strconv.Quote(req.FilterQuery))
	return b.String()
}

// ItemKey derives the cache key of a single-item lookup.
func ItemKey(entity domain.EntityType, id int) string {
	return "item:" + string(entity) + ":" + strconv.Itoa(id)
}
