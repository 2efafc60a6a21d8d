package handler

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/model"
	"github.com/iliyamo/video-rental/internal/repository"
)

func customerEcho(s *mockCustomers) *echo.Echo {
	e := newEcho()
	h := NewCustomerHandler(s, zap.NewNop())
	e.GET("/v1/customers", h.List)
	e.GET("/v1/customers/:id", h.Get)
	e.POST("/v1/customers", h.Create)
	e.PUT("/v1/customers/:id", h.Update)
	e.DELETE("/v1/customers/:id", h.Delete)
	return e
}

func genreEcho(s *mockGenres) *echo.Echo {
	e := newEcho()
	h := NewGenreHandler(s, zap.NewNop())
	e.GET("/v1/genres", h.List)
	e.GET("/v1/genres/:id", h.Get)
	e.POST("/v1/genres", h.Create)
	e.PUT("/v1/genres/:id", h.Update)
	e.DELETE("/v1/genres/:id", h.Delete)
	return e
}

func TestCustomerCreate(t *testing.T) {
	s := &mockCustomers{}
	s.On("Create", mock.Anything, mock.AnythingOfType("*model.Customer")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Customer).ID = 4 }).
		Return(nil)
	e := customerEcho(s)

	rec := do(e, http.MethodPost, "/v1/customers", `{"name":"Alice Smith","phone":"5551234","isGold":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeMap(t, rec)
	assert.EqualValues(t, 4, body["id"])
	assert.Equal(t, true, body["isGold"])

	rec = do(e, http.MethodPost, "/v1/customers", `{"name":"Al","phone":"5551234"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodPost, "/v1/customers", `{"name":"Alice Smith","phone":"55512345678"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.AssertNumberOfCalls(t, "Create", 1)
}

func TestCustomerNotFound(t *testing.T) {
	s := &mockCustomers{}
	s.On("GetByID", mock.Anything, uint64(9)).Return(nil, repository.ErrCustomerNotFound)
	s.On("Update", mock.Anything, mock.Anything).Return(repository.ErrCustomerNotFound)
	s.On("Delete", mock.Anything, uint64(9)).Return(nil, repository.ErrCustomerNotFound)
	e := customerEcho(s)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/customers/9", "").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/v1/customers/9", `{"name":"Alice Smith","phone":"5551234"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/v1/customers/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodGet, "/v1/customers/x", "").Code)
}

func TestCustomerList_Empty(t *testing.T) {
	s := &mockCustomers{}
	s.On("List", mock.Anything).Return([]model.Customer{}, nil)

	rec := do(customerEcho(s), http.MethodGet, "/v1/customers", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGenreCRUD(t *testing.T) {
	s := &mockGenres{}
	s.On("Create", mock.Anything, mock.AnythingOfType("*model.Genre")).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Genre).ID = 2 }).
		Return(nil)
	s.On("Update", mock.Anything, mock.AnythingOfType("*model.Genre")).Return(nil)
	s.On("Delete", mock.Anything, uint64(2)).Return(&model.Genre{ID: 2, Name: "Thriller"}, nil)
	e := genreEcho(s)

	rec := do(e, http.MethodPost, "/v1/genres", `{"name":"Noir"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decodeMap(t, rec)["id"])

	rec = do(e, http.MethodPut, "/v1/genres/2", `{"name":"Thriller"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Thriller", decodeMap(t, rec)["name"])

	rec = do(e, http.MethodDelete, "/v1/genres/2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	s.AssertExpectations(t)
}

func TestGenreValidation(t *testing.T) {
	s := &mockGenres{}
	e := genreEcho(s)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/genres", `{"name":"Sf"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/genres", `{}`).Code)
	s.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGenreGet_NotFound(t *testing.T) {
	s := &mockGenres{}
	s.On("GetByID", mock.Anything, uint64(5)).Return(nil, repository.ErrGenreNotFound)

	rec := do(genreEcho(s), http.MethodGet, "/v1/genres/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeMap(t, rec)["error"])
}
