package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/model"
)

// RentalService is the rental ledger as seen by HTTP handlers.
// *ledger.Ledger satisfies it.
type RentalService interface {
	Open(ctx context.Context, customerID, movieID uint64) (*model.Rental, error)
	Close(ctx context.Context, rentalID uint64) (*model.Rental, error)
	Delete(ctx context.Context, rentalID uint64) (*model.Rental, error)
	AmendCustomer(ctx context.Context, rentalID uint64, c model.CustomerSnapshot) (*model.Rental, error)
	Get(ctx context.Context, rentalID uint64) (*model.Rental, error)
	List(ctx context.Context) ([]model.Rental, error)
}

// RentalHandler exposes the rental ledger over HTTP.
type RentalHandler struct {
	Ledger RentalService
	Log    *zap.Logger
}

func NewRentalHandler(l RentalService, log *zap.Logger) *RentalHandler {
	return &RentalHandler{Ledger: l, Log: log}
}

type openRentalReq struct {
	CustomerID uint64 `json:"customerId" validate:"required,gt=0"`
	MovieID    uint64 `json:"movieId" validate:"required,gt=0"`
}

// amendRentalReq fields are optional; an omitted one keeps its stored value.
type amendRentalReq struct {
	Name  string `json:"name" validate:"omitempty,min=5,max=50"`
	Phone string `json:"phone" validate:"omitempty,min=7,max=10"`
}

// Open handles POST /v1/rentals.
func (h *RentalHandler) Open(c echo.Context) error {
	var req openRentalReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	r, err := h.Ledger.Open(c.Request().Context(), req.CustomerID, req.MovieID)
	if err != nil {
		return ledgerError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}

// List handles GET /v1/rentals.  An empty ledger yields an empty array.
func (h *RentalHandler) List(c echo.Context) error {
	rs, err := h.Ledger.List(c.Request().Context())
	if err != nil {
		return ledgerError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rs)
}

// Get handles GET /v1/rentals/:id.
func (h *RentalHandler) Get(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	r, err := h.Ledger.Get(c.Request().Context(), id)
	if err != nil {
		return ledgerError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Close handles PATCH /v1/rentals/:id and POST /v1/rentals/:id/return.
func (h *RentalHandler) Close(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	r, err := h.Ledger.Close(c.Request().Context(), id)
	if err != nil {
		return ledgerError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Delete handles DELETE /v1/rentals/:id and returns the removed rental.
func (h *RentalHandler) Delete(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	r, err := h.Ledger.Delete(c.Request().Context(), id)
	if err != nil {
		return ledgerError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}

// AmendCustomer handles PUT /v1/rentals/:id, correcting the customer
// name and phone recorded on the rental.
func (h *RentalHandler) AmendCustomer(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	var req amendRentalReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	r, err := h.Ledger.AmendCustomer(c.Request().Context(), id, model.CustomerSnapshot{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return ledgerError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, r)
}
