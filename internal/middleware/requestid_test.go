package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRequestIDRouter(cfg RequestIDConfig) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDWithConfig(cfg))
	r.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/ctx", func(c *gin.Context) {
		c.String(http.StatusOK, findAttrValue(logger.FromContext(c.Request.Context()), requestIDContextKey))
	})
	return r
}

func findAttrValue(attrs []slog.Attr, key string) string {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value.String()
		}
	}
	return ""
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesID(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{})

	w := get(r, "/id", nil)
	id := w.Body.String()
	if !requestIDPattern.MatchString(id) {
		t.Fatalf("generated id %q does not match %s", id, requestIDPattern)
	}
	if got := w.Header().Get(requestIDHeader); got != id {
		t.Errorf("header = %q, want %q", got, id)
	}

	if other := get(r, "/id", nil).Body.String(); other == id {
		t.Errorf("two requests share id %q", id)
	}
}

func TestRequestID_UpstreamHeader(t *testing.T) {
	tests := []struct {
		name     string
		trust    bool
		upstream string
		wantSame bool
	}{
		{"ignored by default", false, "proxy-123", false},
		{"reused when trusted", true, "proxy-123", true},
		{"malformed rejected", true, "bad id; drop table", false},
		{"too long rejected", true, strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRequestIDRouter(RequestIDConfig{TrustUpstream: tt.trust})
			got := get(r, "/id", map[string]string{requestIDHeader: tt.upstream}).Body.String()
			if (got == tt.upstream) != tt.wantSame {
				t.Errorf("id = %q, upstream = %q, wantSame = %v", got, tt.upstream, tt.wantSame)
			}
			if got == "" {
				t.Error("empty request id")
			}
		})
	}
}

func TestRequestID_InLoggerContext(t *testing.T) {
	r := setupRequestIDRouter(RequestIDConfig{TrustUpstream: true})

	w := get(r, "/ctx", map[string]string{requestIDHeader: "ctx-id-1"})
	if w.Body.String() != "ctx-id-1" {
		t.Errorf("context request_id = %q, want ctx-id-1", w.Body.String())
	}
}

func TestGetRequestID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := GetRequestID(c); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}
