package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestTimeout(t *testing.T) {
	tests := []struct {
		name         string
		d            time.Duration
		wantDeadline bool
	}{
		{"bounded", time.Second, true},
		{"disabled", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Timeout(tt.d))
			r.GET("/boardgames", func(c *gin.Context) {
				_, ok := c.Request.Context().Deadline()
				if ok != tt.wantDeadline {
					t.Errorf("deadline set = %v, want %v", ok, tt.wantDeadline)
				}
				c.Status(http.StatusOK)
			})
			get(r, "/boardgames", nil)
		})
	}
}

func TestTimeout_Expires(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(5 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		if !errors.Is(c.Request.Context().Err(), context.DeadlineExceeded) {
			t.Errorf("ctx err = %v, want deadline exceeded", c.Request.Context().Err())
		}
		c.Status(http.StatusRequestTimeout)
	})

	if w := get(r, "/slow", nil); w.Code != http.StatusRequestTimeout {
		t.Errorf("status = %d, want 408", w.Code)
	}
}
