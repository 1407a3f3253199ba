package handlers

import (
	"net/http"

	"sentinel/internal/services"

	"github.com/labstack/echo/v4"
)

// OrganizationHandlers handles organization CRUD requests
type OrganizationHandlers struct {
	orgService services.OrganizationService
}

func NewOrganizationHandlers(orgService services.OrganizationService) *OrganizationHandlers {
	return &OrganizationHandlers{orgService: orgService}
}

// ListOrganizations handles GET /api/organizations
func (h *OrganizationHandlers) ListOrganizations(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	orgs, err := h.orgService.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orgs)
}

// GetOrganization handles GET /api/organizations/:id
func (h *OrganizationHandlers) GetOrganization(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	org, err := h.orgService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, org)
}

// CreateOrganization handles POST /api/organizations
func (h *OrganizationHandlers) CreateOrganization(c echo.Context) error {
	var req services.OrganizationRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	org, err := h.orgService.Create(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, org)
}

// UpdateOrganization handles PATCH /api/organizations/:id
func (h *OrganizationHandlers) UpdateOrganization(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req services.UpdateOrganizationRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	org, err := h.orgService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, org)
}

// DeleteOrganization handles DELETE /api/organizations/:id
func (h *OrganizationHandlers) DeleteOrganization(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.orgService.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
