package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/twpayne/go-geom/encoding/geojson"

	apierrors "github.com/fonciercd/cadastre-api/internal/errors"
	"github.com/fonciercd/cadastre-api/internal/services"
)

// ParcelHandler handles parcel-related HTTP requests.
type ParcelHandler struct {
	service services.ParcelService
}

// NewParcelHandler creates a new ParcelHandler instance.
func NewParcelHandler(service services.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		service: service,
	}
}

// List handles GET /api/v1/parcelles.
// It returns one page of the parcels matching the filter.
func (h *ParcelHandler) List(c *gin.Context) {
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
		apierrors.InternalServerError(c, "Failed to query parcels", err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/v1/parcelles/:id.
func (h *ParcelHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Parcel id must be an integer", nil)
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrParcelNotFound) {
			apierrors.NotFound(c, "Parcel not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to query parcel", err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GeoJSON handles GET /api/v1/parcelles/geojson.
// It returns the filtered parcels as a GeoJSON FeatureCollection.
func (h *ParcelHandler) GeoJSON(c *gin.Context) {
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

	features, err := h.service.Features(c.Request.Context(), req.Filter())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to export parcel geometries", err)
		return
	}

	collection := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(features)),
	}
	for _, f := range features {
		collection.Features = append(collection.Features, &geojson.Feature{
			ID:         strconv.FormatInt(f.ID, 10),
			Geometry:   f.Geometry,
			Properties: f.Properties,
		})
	}

	c.JSON(http.StatusOK, collection)
}
