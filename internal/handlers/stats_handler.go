package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/fonciercd/cadastre-api/internal/errors"
	"github.com/fonciercd/cadastre-api/internal/repository"
	"github.com/fonciercd/cadastre-api/internal/services"
)

// StatsHandler handles statistics-related HTTP requests.
type StatsHandler struct {
	service services.StatsService
}

// NewStatsHandler creates a new StatsHandler instance.
func NewStatsHandler(service services.StatsService) *StatsHandler {
	return &StatsHandler{
		service: service,
	}
}

// geographyQuery extends the common filter with the grouping level.
type geographyQuery struct {
	ListQuery
	Niveau string `form:"niveau,default=quartier" binding:"oneof=quartier commune avenue"`
}

// Dashboard handles GET /api/v1/stats/dashboard.
func (h *StatsHandler) Dashboard(c *gin.Context) {
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

	stats, err := h.service.Dashboard(c.Request.Context(), req.Filter())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute dashboard statistics", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// AgePyramid handles GET /api/v1/stats/pyramide-ages.
func (h *StatsHandler) AgePyramid(c *gin.Context) {
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

	pyramid, err := h.service.AgePyramid(c.Request.Context(), req.Filter())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute age pyramid", err)
		return
	}

	c.JSON(http.StatusOK, pyramid)
}

// PopulationByGeography handles GET /api/v1/stats/population-par-quartier.
// The niveau parameter picks the grouping level; quartier is the default.
func (h *StatsHandler) PopulationByGeography(c *gin.Context) {
	var req geographyQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return
	}

	counts, err := h.service.PopulationByGeography(c.Request.Context(), req.Filter(), repository.GeoLevel(req.Niveau))
	if err != nil {
		if errors.Is(err, repository.ErrUnknownGeoLevel) {
			apierrors.BadRequest(c, "niveau must be one of quartier, commune, avenue", nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to compute population by geography", err)
		return
	}

	c.JSON(http.StatusOK, counts)
}
