package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/ledger"
	"github.com/iliyamo/video-rental/internal/validation"
)

// Error codes used in the "error" field of JSON error bodies.
const (
	codeValidation   = "validation_error"
	codeNotFound     = "not_found"
	codeOutOfStock   = "out_of_stock"
	codeInvalidState = "invalid_state"
	codeConflict     = "conflict"
	codeTimeout      = "timeout"
	codeInternal     = "internal_error"
	codeUnauthorized = "unauthorized"
)

// errorJSON writes {"error": code, "message": msg} with the given status.
func errorJSON(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": code, "message": msg})
}

// getUserID extracts the user_id stored by JWTAuth and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID reads a positive integer path parameter.  On failure it has
// already written a 400 response and returns ok=false.
func parseID(c echo.Context, name string) (id uint64, ok bool, err error) {
	id, perr := strconv.ParseUint(c.Param(name), 10, 64)
	if perr != nil || id == 0 {
		return 0, false, errorJSON(c, http.StatusBadRequest, codeValidation, "invalid "+name)
	}
	return id, true, nil
}

// bindValid binds the request body into dst and runs the registered
// validator.  On failure it writes a 400 response and returns ok=false.
func bindValid(c echo.Context, dst any) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, errorJSON(c, http.StatusBadRequest, codeValidation, "invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return false, errorJSON(c, http.StatusBadRequest, codeValidation, verr.Message)
		}
		return false, errorJSON(c, http.StatusBadRequest, codeValidation, err.Error())
	}
	return true, nil
}

// ledgerError maps a ledger failure onto the HTTP contract.  Unclassified
// errors are logged and reported as 500 without leaking details.
func ledgerError(c echo.Context, log *zap.Logger, err error) error {
	var le *ledger.Error
	if !errors.As(err, &le) {
		log.Error("rental operation failed", zap.Error(err), zap.String("path", c.Path()))
		return errorJSON(c, http.StatusInternalServerError, codeInternal, "internal server error")
	}
	switch le.Kind {
	case ledger.NotFound:
		return errorJSON(c, http.StatusNotFound, codeNotFound, le.Message)
	case ledger.OutOfStock:
		return errorJSON(c, http.StatusNotFound, codeOutOfStock, le.Message)
	case ledger.InvalidState:
		return errorJSON(c, http.StatusConflict, codeInvalidState, le.Message)
	case ledger.ValidationError:
		return errorJSON(c, http.StatusBadRequest, codeValidation, le.Message)
	case ledger.Conflict:
		return errorJSON(c, http.StatusConflict, codeConflict, le.Message)
	case ledger.Timeout:
		c.Response().Header().Set("Retry-After", "1")
		return errorJSON(c, http.StatusServiceUnavailable, codeTimeout, le.Message)
	}
	return errorJSON(c, http.StatusInternalServerError, codeInternal, le.Message)
}

// internalError logs err and writes a generic 500.
func internalError(c echo.Context, log *zap.Logger, msg string, err error) error {
	log.Error(msg, zap.Error(err), zap.String("path", c.Path()))
	return errorJSON(c, http.StatusInternalServerError, codeInternal, msg)
}
