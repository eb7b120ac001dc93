package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bglist/internal/domain"
	"github.com/simp-lee/bglist/internal/pkg"
)

// maxDeleteIDs bounds the idList of a single delete request.
const maxDeleteIDs = 100

// Handler handles REST API requests for one catalog resource.
type Handler[T any] struct {
	svc      *Service[T]
	newPatch func() Patch[T]
}

// NewHandler creates a Handler. newPatch returns an empty update request to bind into.
func NewHandler[T any](svc *Service[T], newPatch func() Patch[T]) *Handler[T] {
	return &Handler[T]{svc: svc, newPatch: newPatch}
}

// List handles GET /api/v1/<resource>.
func (h *Handler[T]) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), selfURL(c), pkg.ListParams(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, page)
}

// Get handles GET /api/v1/<resource>/:id.
func (h *Handler[T]) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	page, err := h.svc.Get(c.Request.Context(), selfURL(c), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, page)
}

// Update handles POST /api/v1/<resource>.
func (h *Handler[T]) Update(c *gin.Context) {
	patch := h.newPatch()
	if !pkg.BindAndValidate(c, patch) {
		return
	}

	page, err := h.svc.Update(c.Request.Context(), selfURL(c), patch)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, page)
}

// Delete handles DELETE /api/v1/<resource>?idList=1,2,3.
func (h *Handler[T]) Delete(c *gin.Context) {
	ids, err := parseIDList(c.Query("idList"))
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	page, err := h.svc.Delete(c.Request.Context(), selfURL(c)+"?idList="+joinIDs(ids), ids)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Page(c, page)
}

// selfURL returns the absolute URL of the current request without its query.
func selfURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.Path
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}

// parseIDList parses a comma separated list of positive ids, dropping duplicates.
func parseIDList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("idList is required")
	}
	parts := strings.Split(s, ",")
	if len(parts) > maxDeleteIDs {
		return nil, fmt.Errorf("idList accepts at most %d ids", maxDeleteIDs)
	}
	ids := make([]int, 0, len(parts))
	seen := make(map[int]bool, len(parts))
	for _, p := range parts {
		id, err := parseID(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
