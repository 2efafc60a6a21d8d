package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/handler"
	"github.com/iliyamo/video-rental/internal/middleware"
	"github.com/iliyamo/video-rental/internal/model"
)

// Catalog bundles the handlers for customers, genres and movies.
type Catalog struct {
	Customers *handler.CustomerHandler
	Genres    *handler.GenreHandler
	Movies    *handler.MovieHandler

	// Cache wraps genre reads; Invalidate wraps genre writes.  Either may
	// be nil.
	Cache      echo.MiddlewareFunc
	Invalidate echo.MiddlewareFunc
}

// RegisterCatalog registers the catalogue endpoints.  Reads are public,
// creating requires any signed-in user, and changing or deleting requires
// ADMIN.
func RegisterCatalog(e *echo.Echo, cat Catalog, jwtSecret string) {
	jwt := middleware.JWTAuth(jwtSecret)
	signedIn := []echo.MiddlewareFunc{jwt, middleware.RequireRole(model.RoleAdmin, model.RoleUser)}
	admin := []echo.MiddlewareFunc{jwt, middleware.RequireRole(model.RoleAdmin)}

	cache := passThrough(cat.Cache)
	invalidate := passThrough(cat.Invalidate)

	// ---- Customers ----
	c := e.Group("/v1/customers")
	c.GET("", cat.Customers.List)
	c.GET("/:id", cat.Customers.Get)
	c.POST("", cat.Customers.Create, signedIn...)
	c.PUT("/:id", cat.Customers.Update, admin...)
	c.DELETE("/:id", cat.Customers.Delete, admin...)

	// ---- Genres ----
	g := e.Group("/v1/genres")
	g.GET("", cat.Genres.List, cache)
	g.GET("/:id", cat.Genres.Get, cache)
	g.POST("", cat.Genres.Create, append(signedIn, invalidate)...)
	g.PUT("/:id", cat.Genres.Update, append(admin, invalidate)...)
	g.DELETE("/:id", cat.Genres.Delete, append(admin, invalidate)...)

	// ---- Movies ----
	m := e.Group("/v1/movies")
	m.GET("", cat.Movies.List)
	m.GET("/search", cat.Movies.Search)
	m.GET("/:id", cat.Movies.Get)
	m.POST("", cat.Movies.Create, signedIn...)
	m.PUT("/:id", cat.Movies.Update, admin...)
	m.PATCH("/:id", cat.Movies.Like, admin...)
	m.DELETE("/:id", cat.Movies.Delete, admin...)
}

func passThrough(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}
