package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/fonciercd/cadastre-api/internal/errors"
	"github.com/fonciercd/cadastre-api/internal/services"
)

// ReferenceHandler serves the reference listings backing the filter dropdowns.
type ReferenceHandler struct {
	service services.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler instance.
func NewReferenceHandler(service services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{
		service: service,
	}
}

// List handles GET /api/v1/references.
func (h *ReferenceHandler) List(c *gin.Context) {
	set, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list references", err)
		return
	}

	c.JSON(http.StatusOK, set)
}
