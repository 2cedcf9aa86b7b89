package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/fonciercd/cadastre-api/internal/errors"
	"github.com/fonciercd/cadastre-api/internal/services"
)

// BuildingHandler handles building-related HTTP requests.
type BuildingHandler struct {
	service services.BuildingService
}

// NewBuildingHandler creates a new BuildingHandler instance.
func NewBuildingHandler(service services.BuildingService) *BuildingHandler {
	return &BuildingHandler{
		service: service,
	}
}

// List handles GET /api/v1/batiments.
// It returns one page of the buildings matching the filter.
func (h *BuildingHandler) List(c *gin.Context) {
	var req BuildingListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	page, err := h.service.List(c.Request.Context(), req.BuildingFilter(), req.Page, req.PageSize)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPage) || errors.Is(err, services.ErrInvalidPageSize) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to query buildings", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/batiments/:id.
func (h *BuildingHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Building id must be an integer", nil)
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrBuildingNotFound) {
			apierrors.NotFound(c, "Building not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to query building", err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
