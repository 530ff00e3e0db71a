package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/services"
)

// ServiceHandler serves the service catalog
type ServiceHandler struct {
	catalog *services.CatalogService
}

// NewServiceHandler creates a new catalog handler
func NewServiceHandler(catalog *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// List handles GET /api/v1/services
func (h *ServiceHandler) List(c *gin.Context) {
	list, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "services_retrieval_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list, "count": len(list)})
}

// Create handles POST /api/v1/admin/services
func (h *ServiceHandler) Create(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	svc, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "service_create_failed")
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// Update handles PUT /api/v1/admin/services/:id
func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	svc, err := h.catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "service_update_failed")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// Delete handles DELETE /api/v1/admin/services/:id
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "service_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted"})
}
