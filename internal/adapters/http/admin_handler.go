package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ficus/storefront/internal/domain/entities"
	"github.com/ficus/storefront/internal/infrastructure/logger"
	"github.com/ficus/storefront/internal/ports"
)

// AdminHandler handles admin panel requests
type AdminHandler struct {
	adminService ports.AdminService
	logger       *logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService ports.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	dashboard, err := h.adminService.Dashboard(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dashboard)
}

// Activity filters the activity log by the prefix query parameter
func (h *AdminHandler) Activity(c echo.Context) error {
	entries, err := h.adminService.ActivityByPrefix(c.Request().Context(), c.QueryParam("prefix"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var fields entities.ProductFields
	if err := c.Bind(&fields); err != nil {
		return badRequest("Invalid request format")
	}

	product, err := h.adminService.CreateProduct(c.Request().Context(), usernameFromContext(c), fields)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := intParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.adminService.DeleteProduct(c.Request().Context(), usernameFromContext(c), id); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
