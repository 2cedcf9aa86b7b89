package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/fonciercd/cadastre-api/internal/errors"
	"github.com/fonciercd/cadastre-api/internal/export"
	"github.com/fonciercd/cadastre-api/internal/middleware"
	"github.com/fonciercd/cadastre-api/internal/services"
)

// PopulationHandler handles population-related HTTP requests.
type PopulationHandler struct {
	service services.PopulationService
}

// NewPopulationHandler creates a new PopulationHandler instance.
func NewPopulationHandler(service services.PopulationService) *PopulationHandler {
	return &PopulationHandler{
		service: service,
	}
}

// List handles GET /api/v1/populations.
// It returns one page of the population connected to the filtered parcel set.
func (h *PopulationHandler) List(c *gin.Context) {
	var req ListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	page, err := h.service.List(c.Request.Context(), req.Filter(), req.Page, req.PageSize)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPage) || errors.Is(err, services.ErrInvalidPageSize) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to query population", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Export handles GET /api/v1/populations/export.
// It streams the whole filtered population as an XLSX workbook.
func (h *PopulationHandler) Export(c *gin.Context) {
	var req ListQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	records, err := h.service.ListAll(c.Request.Context(), req.Filter())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to export population", err)
		return
	}

	workbook, err := export.PopulationWorkbook(records)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to build export workbook", err)
		return
	}

	filename := fmt.Sprintf("population_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := workbook.Write(c.Writer); err != nil {
		// Headers are already out; log and give up on this response.
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Failed to stream export workbook", err, nil)
		}
	}
}
