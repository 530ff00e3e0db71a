package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles admin console requests that are not tied to a single resource
type AdminHandler struct {
	auth      *services.AuthService
	export    *services.ExportService
	scheduler *services.AutoAssignService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	auth *services.AuthService,
	export *services.ExportService,
	scheduler *services.AutoAssignService,
) *AdminHandler {
	return &AdminHandler{
		auth:      auth,
		export:    export,
		scheduler: scheduler,
	}
}

// ListUsers handles GET /api/v1/admin/users?limit=&offset=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	users, total, err := h.auth.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "users_retrieval_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

// ExportBookings handles GET /api/v1/admin/bookings/export?status=
func (h *AdminHandler) ExportBookings(c *gin.Context) {
	var filter models.BookingFilter
	if raw := c.Query("status"); raw != "" {
		status := models.BookingStatus(raw)
		if !status.IsValid() {
			respondError(c, services.ErrInvalidStatus, "export_failed")
			return
		}
		filter.Status = &status
	}

	filename := fmt.Sprintf("bookings-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	rows, err := h.export.WriteCSV(c.Request.Context(), c.Writer, filter)
	if err != nil {
		// headers are gone once the first row is written
		logrus.WithError(err).Error("Booking export failed")
		c.Error(err)
		return
	}
	logrus.WithField("rows", rows).Info("Bookings exported")
}

// RunAutoAssign handles POST /api/v1/admin/auto-assign/run
func (h *AdminHandler) RunAutoAssign(c *gin.Context) {
	report := h.scheduler.RunNow(c.Request.Context())
	c.JSON(http.StatusOK, report)
}

// AutoAssignStatus handles GET /api/v1/admin/auto-assign/status
func (h *AdminHandler) AutoAssignStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Status())
}
