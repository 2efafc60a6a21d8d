package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

// GenreStore is the persistence the genre endpoints need.
type GenreStore interface {
	Create(ctx context.Context, g *model.Genre) error
	GetByID(ctx context.Context, id uint64) (*model.Genre, error)
	List(ctx context.Context) ([]model.Genre, error)
	Update(ctx context.Context, g *model.Genre) error
	Delete(ctx context.Context, id uint64) (*model.Genre, error)
}

// GenreHandler serves /v1/genres.
type GenreHandler struct {
	Genres GenreStore
	Log    *zap.Logger
}

func NewGenreHandler(s GenreStore, log *zap.Logger) *GenreHandler {
	return &GenreHandler{Genres: s, Log: log}
}

type genreReq struct {
	Name string `json:"name" validate:"required,min=3,max=50"`
}

func (h *GenreHandler) notFoundOr500(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrGenreNotFound) {
		return errorJSON(c, http.StatusNotFound, codeNotFound, "genre not found")
	}
	return internalError(c, h.Log, "genre query failed", err)
}

// List handles GET /v1/genres.
func (h *GenreHandler) List(c echo.Context) error {
	gs, err := h.Genres.List(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, "list genres failed", err)
	}
	return c.JSON(http.StatusOK, gs)
}

// Get handles GET /v1/genres/:id.
func (h *GenreHandler) Get(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	g, err := h.Genres.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// Create handles POST /v1/genres.
func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	g := &model.Genre{Name: strings.TrimSpace(req.Name)}
	if err := h.Genres.Create(c.Request().Context(), g); err != nil {
		return internalError(c, h.Log, "create genre failed", err)
	}
	return c.JSON(http.StatusOK, g)
}

// Update handles PUT /v1/genres/:id.  Movies keep the genre name they
// were saved with.
func (h *GenreHandler) Update(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	var req genreReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	g := &model.Genre{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := h.Genres.Update(c.Request().Context(), g); err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// Delete handles DELETE /v1/genres/:id.
func (h *GenreHandler) Delete(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	g, err := h.Genres.Delete(c.Request().Context(), id)
	if err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, g)
}
