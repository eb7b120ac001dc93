package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/bglist/internal/pkg"
)

// renderError writes the JSON error envelope used for routing failures.
func renderError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, pkg.Response{Code: code, Message: message})
}

// noRouteHandler answers requests for paths no module serves.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "not found")
	}
}

// noMethodHandler answers requests whose path exists under another method.
func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusMethodNotAllowed, "method not allowed")
	}
}
