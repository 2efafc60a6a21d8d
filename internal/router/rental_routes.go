package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/handler"
	"github.com/iliyamo/video-rental/internal/middleware"
	"github.com/iliyamo/video-rental/internal/model"
)

// RegisterRentals registers the rental ledger endpoints under
// /v1/rentals.  Every route needs a valid JWT.  Opening and reading
// rentals is open to any signed-in user; returning, amending and
// deleting are ADMIN operations.
func RegisterRentals(e *echo.Echo, h *handler.RentalHandler, jwtSecret string) {
	g := e.Group(
		"/v1/rentals",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleUser),
	)
	g.POST("", h.Open)
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	admin := middleware.RequireRole(model.RoleAdmin)
	g.PATCH("/:id", h.Close, admin)
	g.POST("/:id/return", h.Close, admin)
	g.PUT("/:id", h.AmendCustomer, admin)
	g.DELETE("/:id", h.Delete, admin)
}
