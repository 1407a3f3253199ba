package handlers

import (
	"net/http"

	"sentinel/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles user CRUD requests
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListUsers handles GET /api/users
func (h *UserHandlers) ListUsers(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	users, err := h.userService.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/users/:id
func (h *UserHandlers) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /api/users
func (h *UserHandlers) CreateUser(c echo.Context) error {
	var req services.CreateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	user, err := h.userService.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser handles PATCH /api/users/:id
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req services.UpdateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	user, err := h.userService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
