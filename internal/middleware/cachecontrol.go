package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const cacheControlHeader = "Cache-Control"

// CacheScope says which caches may store a response.
type CacheScope int

const (
	// ScopeNone forbids storing the response anywhere.
	ScopeNone CacheScope = iota
	// ScopePublic lets shared caches and the client store the response.
	ScopePublic
	// ScopePrivate lets only the client store the response.
	ScopePrivate
)

// CacheProfile describes the Cache-Control policy of a route.
type CacheProfile struct {
	Scope  CacheScope
	MaxAge time.Duration
}

// NoStore is the profile for mutations and anything not explicitly cacheable.
var NoStore = CacheProfile{Scope: ScopeNone}

// PublicFor returns a profile cacheable by any cache for d.
func PublicFor(d time.Duration) CacheProfile {
	return CacheProfile{Scope: ScopePublic, MaxAge: d}
}

// PrivateFor returns a profile cacheable by the client only for d.
func PrivateFor(d time.Duration) CacheProfile {
	return CacheProfile{Scope: ScopePrivate, MaxAge: d}
}

// Value renders p as a Cache-Control header value. A cacheable scope with a
// non-positive max age degrades to no-store.
func (p CacheProfile) Value() string {
	secs := int64(p.MaxAge / time.Second)
	if p.Scope == ScopeNone || secs <= 0 {
		return "no-store"
	}
	scope := "public"
	if p.Scope == ScopePrivate {
		scope = "private"
	}
	return scope + ", max-age=" + strconv.FormatInt(secs, 10)
}

// NoCacheDefault marks every response uncacheable unless a later handler
// sets its own profile. Install it on the engine.
func NoCacheDefault() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(cacheControlHeader, "no-cache, no-store")
		c.Next()
	}
}

// CacheControl applies p to the routes it is attached to, replacing the
// engine default. Error responses still override it with no-store.
func CacheControl(p CacheProfile) gin.HandlerFunc {
	value := p.Value()
	return func(c *gin.Context) {
		c.Header(cacheControlHeader, value)
		c.Next()
	}
}
