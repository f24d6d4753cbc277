// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/insurance-catalog/internal/handler"
)

// Prefixes lists the mount points of the API.  The bare root serves current
// clients; /api keeps older clients working.
var Prefixes = []string{"", "/api"}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the token endpoint behind limit and the session
// routes behind bearer.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, bearer, limit echo.MiddlewareFunc) {
	for _, p := range Prefixes {
		e.POST(p+"/oauth/token", a.IssueToken, limit)

		e.POST(p+"/logout", a.Logout, bearer)
		e.GET(p+"/user", a.Me, bearer)
	}
}

// RegisterCatalog registers the product routes.  cache runs after bearer so
// a cached response is never served to an unauthenticated caller.
func RegisterCatalog(e *echo.Echo, h *handler.ProductHandler, bearer, cache echo.MiddlewareFunc) {
	for _, p := range Prefixes {
		e.GET(p+"/products", h.List, bearer, cache)
		e.GET(p+"/products/:id", h.Get, bearer, cache)
	}
}
