package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

// MovieStore is the persistence the movie endpoints need.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context) ([]model.Movie, error)
	Update(ctx context.Context, m *model.Movie) error
	SetLiked(ctx context.Context, id uint64, liked bool) (*model.Movie, error)
	Delete(ctx context.Context, id uint64) (*model.Movie, error)
	Search(ctx context.Context, q repository.MovieSearchQuery) ([]model.Movie, int64, error)
}

// GenreLookup resolves the genre a movie is filed under.
type GenreLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Genre, error)
}

// MovieHandler serves /v1/movies.
type MovieHandler struct {
	Movies MovieStore
	Genres GenreLookup
	Log    *zap.Logger
}

func NewMovieHandler(m MovieStore, g GenreLookup, log *zap.Logger) *MovieHandler {
	return &MovieHandler{Movies: m, Genres: g, Log: log}
}

type movieReq struct {
	Title           string           `json:"title" validate:"required,min=5,max=50"`
	GenreID         uint64           `json:"genreId" validate:"required,gt=0"`
	DailyRentalRate *decimal.Decimal `json:"dailyRentalRate" validate:"required,gte=0,lte=10"`
	NumberInStock   *int             `json:"numberInStock" validate:"required,gte=0,lte=50"`
	Liked           bool             `json:"liked"`
}

type likeReq struct {
	Liked *bool `json:"liked" validate:"required"`
}

type movieSearchReq struct {
	Title    string `query:"title" validate:"max=50"`
	GenreID  uint64 `query:"genreId"`
	Sort     string `query:"sort" validate:"omitempty,oneof=title dailyRentalRate numberInStock"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page     int    `query:"page" validate:"gte=0"`
	PageSize int    `query:"page_size" validate:"gte=0,lte=100"`
}

type moviePage struct {
	Data     []model.Movie `json:"data"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func (h *MovieHandler) notFoundOr500(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrMovieNotFound) {
		return errorJSON(c, http.StatusNotFound, codeNotFound, "movie not found")
	}
	return internalError(c, h.Log, "movie query failed", err)
}

// fromRequest resolves the genre and builds the movie to store.  On
// failure it has already written the response.
func (h *MovieHandler) fromRequest(c echo.Context, id uint64) (*model.Movie, bool, error) {
	var req movieReq
	if ok, err := bindValid(c, &req); !ok {
		return nil, false, err
	}
	g, err := h.Genres.GetByID(c.Request().Context(), req.GenreID)
	if err != nil {
		if errors.Is(err, repository.ErrGenreNotFound) {
			return nil, false, errorJSON(c, http.StatusBadRequest, codeValidation, "invalid genre")
		}
		return nil, false, internalError(c, h.Log, "genre lookup failed", err)
	}
	return &model.Movie{
		ID:              id,
		Title:           strings.TrimSpace(req.Title),
		Genre:           g.Ref(),
		DailyRentalRate: *req.DailyRentalRate,
		NumberInStock:   *req.NumberInStock,
		Liked:           req.Liked,
	}, true, nil
}

// List handles GET /v1/movies.
func (h *MovieHandler) List(c echo.Context) error {
	ms, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, "list movies failed", err)
	}
	return c.JSON(http.StatusOK, ms)
}

// Search handles GET /v1/movies/search with title prefix, genre filter,
// sorting and pagination.
func (h *MovieHandler) Search(c echo.Context) error {
	var req movieSearchReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	ms, total, err := h.Movies.Search(c.Request().Context(), repository.MovieSearchQuery{
		Title:    strings.TrimSpace(req.Title),
		GenreID:  req.GenreID,
		Sort:     req.Sort,
		Order:    req.Order,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return internalError(c, h.Log, "search movies failed", err)
	}
	return c.JSON(http.StatusOK, moviePage{Data: ms, Total: total, Page: req.Page, PageSize: req.PageSize})
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Create handles POST /v1/movies.
func (h *MovieHandler) Create(c echo.Context) error {
	m, ok, err := h.fromRequest(c, 0)
	if !ok {
		return err
	}
	if err := h.Movies.Create(c.Request().Context(), m); err != nil {
		return internalError(c, h.Log, "create movie failed", err)
	}
	return c.JSON(http.StatusOK, m)
}

// Update handles PUT /v1/movies/:id.  This is the only path besides the
// rental ledger that writes number_in_stock.
func (h *MovieHandler) Update(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	m, ok, err := h.fromRequest(c, id)
	if !ok {
		return err
	}
	if err := h.Movies.Update(c.Request().Context(), m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return errorJSON(c, http.StatusConflict, codeConflict, "concurrent update, retry")
		}
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Like handles PATCH /v1/movies/:id.
func (h *MovieHandler) Like(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	var req likeReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	m, err := h.Movies.SetLiked(c.Request().Context(), id, *req.Liked)
	if err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /v1/movies/:id.  A movie with copies still out
// cannot be deleted.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	m, err := h.Movies.Delete(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrHasOpenRentals):
			return errorJSON(c, http.StatusConflict, codeConflict, "movie has open rentals")
		case errors.Is(err, repository.ErrConflict):
			return errorJSON(c, http.StatusConflict, codeConflict, "concurrent update, retry")
		}
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, m)
}
