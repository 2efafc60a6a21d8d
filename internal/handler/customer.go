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

// CustomerStore is the persistence the customer endpoints need.
type CustomerStore interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id uint64) (*model.Customer, error)
	List(ctx context.Context) ([]model.Customer, error)
	Update(ctx context.Context, c *model.Customer) error
	Delete(ctx context.Context, id uint64) (*model.Customer, error)
}

// CustomerHandler serves /v1/customers.
type CustomerHandler struct {
	Customers CustomerStore
	Log       *zap.Logger
}

func NewCustomerHandler(s CustomerStore, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{Customers: s, Log: log}
}

type customerReq struct {
	Name   string `json:"name" validate:"required,min=5,max=50"`
	Phone  string `json:"phone" validate:"required,min=7,max=10"`
	IsGold bool   `json:"isGold"`
}

func (r customerReq) model(id uint64) *model.Customer {
	return &model.Customer{ID: id, Name: strings.TrimSpace(r.Name), Phone: strings.TrimSpace(r.Phone), IsGold: r.IsGold}
}

func (h *CustomerHandler) notFoundOr500(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrCustomerNotFound) {
		return errorJSON(c, http.StatusNotFound, codeNotFound, "customer not found")
	}
	return internalError(c, h.Log, "customer query failed", err)
}

// List handles GET /v1/customers.
func (h *CustomerHandler) List(c echo.Context) error {
	cs, err := h.Customers.List(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, "list customers failed", err)
	}
	return c.JSON(http.StatusOK, cs)
}

// Get handles GET /v1/customers/:id.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	cust, err := h.Customers.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

// Create handles POST /v1/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	cust := req.model(0)
	if err := h.Customers.Create(c.Request().Context(), cust); err != nil {
		return internalError(c, h.Log, "create customer failed", err)
	}
	return c.JSON(http.StatusOK, cust)
}

// Update handles PUT /v1/customers/:id.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	var req customerReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	cust := req.model(id)
	if err := h.Customers.Update(c.Request().Context(), cust); err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

// Delete handles DELETE /v1/customers/:id.  Rentals keep their
// snapshot of the customer.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	cust, err := h.Customers.Delete(c.Request().Context(), id)
	if err != nil {
		return h.notFoundOr500(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}
