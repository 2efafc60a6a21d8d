package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/repository"
)

// UserHandler serves the admin-only /v1/users endpoints.  Responses
// never include password hashes.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
	Log        *zap.Logger
}

func NewUserHandler(u UserStore, bcryptCost int, log *zap.Logger) *UserHandler {
	return &UserHandler{Users: u, BcryptCost: bcryptCost, Log: log}
}

// userReplaceReq is the full body for PUT.
type userReplaceReq struct {
	Name     string `json:"name" validate:"required,min=5,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"omitempty,min=5,max=72"`
	IsAdmin  bool   `json:"isAdmin"`
}

// userPatchReq carries optional fields for PATCH.
type userPatchReq struct {
	Name     *string `json:"name" validate:"omitempty,min=5,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=5,max=72"`
	IsAdmin  *bool   `json:"isAdmin"`
}

func (h *UserHandler) userError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return errorJSON(c, http.StatusNotFound, codeNotFound, "user not found")
	case errors.Is(err, repository.ErrEmailExists):
		return errorJSON(c, http.StatusConflict, codeConflict, "email already exists")
	}
	return internalError(c, h.Log, "user query failed", err)
}

// List handles GET /v1/users.
func (h *UserHandler) List(c echo.Context) error {
	us, err := h.Users.List(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, "list users failed", err)
	}
	return c.JSON(http.StatusOK, us)
}

// Get handles GET /v1/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Replace handles PUT /v1/users/:id.  An empty password keeps the
// current one.
func (h *UserHandler) Replace(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	var req userReplaceReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	upd := repository.UserUpdate{Name: &req.Name, Email: &req.Email, IsAdmin: &req.IsAdmin}
	if req.Password != "" {
		upd.Password = &req.Password
	}
	u, err := h.Users.Update(c.Request().Context(), id, upd, h.BcryptCost)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Patch handles PATCH /v1/users/:id.
func (h *UserHandler) Patch(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	var req userPatchReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	u, err := h.Users.Update(c.Request().Context(), id, repository.UserUpdate{
		Name: req.Name, Email: req.Email, Password: req.Password, IsAdmin: req.IsAdmin,
	}, h.BcryptCost)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /v1/users/:id.  Admins cannot delete themselves.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok, err := parseID(c, "id")
	if !ok {
		return err
	}
	if self, err := getUserID(c); err == nil && self == id {
		return errorJSON(c, http.StatusConflict, codeConflict, "cannot delete your own account")
	}
	u, err := h.Users.Delete(c.Request().Context(), id)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
