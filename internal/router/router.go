// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-manager/internal/handler"
	"github.com/iliyamo/movie-manager/internal/middleware"
)

// Guards are the middleware placed in front of API routes.  Only
// JWTSecret is required.
type Guards struct {
	JWTSecret string
	Active    middleware.ActiveFunc
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

func (g Guards) rateLimit() []echo.MiddlewareFunc {
	if g.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{g.RateLimit}
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers sign-up, sign-in and token endpoints under
// /v1/auth.  Logout is also reachable as POST /v1/logout.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, g Guards) {
	auth := e.Group("/v1/auth", g.rateLimit()...)
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/refresh", a.Refresh)
	auth.POST("/refresh-access", a.RefreshAccess)
	auth.POST("/logout", a.Logout)

	e.POST("/v1/logout", a.Logout, g.rateLimit()...)
}

// RegisterAPI registers the endpoints that need a valid access token:
// the account itself, the movie collection and its statistics.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, m *handler.MovieHandler, g Guards) {
	mw := []echo.MiddlewareFunc{middleware.JWTAuth(g.JWTSecret)}
	if g.Active != nil {
		mw = append(mw, middleware.RequireActive(g.Active))
	}
	mw = append(mw, g.rateLimit()...)
	if g.Cache != nil {
		mw = append(mw, g.Cache)
	}
	v1 := e.Group("/v1", mw...)

	v1.GET("/me", a.Me)

	v1.GET("/movies", m.List)
	v1.POST("/movies", m.Create)
	v1.GET("/movies/location/default", m.DefaultLocation)
	v1.POST("/movies/reload", m.Reload)
	v1.GET("/movies/:id", m.Get)
	v1.PUT("/movies/:id", m.Update)
	v1.DELETE("/movies/:id", m.Delete)
	v1.POST("/movies/:id/favorite", m.ToggleFavorite)
	v1.POST("/movies/:id/watchlist", m.ToggleWatchlist)
	v1.PUT("/movies/:id/location", m.SetLocation)

	v1.GET("/stats", m.Stats)
}
