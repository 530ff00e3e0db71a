package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/middleware"
	"github.com/localbookr/marketplace-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// errorMappings is checked in order with errors.Is. An empty message falls
// back to the error text.
var errorMappings = []errorMapping{
	{services.ErrBookingNotFound, http.StatusNotFound, "booking_not_found", "Booking not found"},
	{services.ErrServiceNotFound, http.StatusNotFound, "service_not_found", "Service not found"},
	{services.ErrProviderNotFound, http.StatusNotFound, "provider_not_found", "Provider not found"},
	{services.ErrUserNotFound, http.StatusNotFound, "user_not_found", "User not found"},
	{services.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found", "Notification not found"},
	{services.ErrPhotoNotFound, http.StatusNotFound, "photo_not_found", "Photo not found"},

	{services.ErrAlreadyRated, http.StatusConflict, "already_rated", "You have already rated this service."},
	{services.ErrInvalidTransition, http.StatusConflict, "invalid_transition", ""},
	{services.ErrConflict, http.StatusConflict, "conflict", "The booking was changed by someone else. Reload and try again."},
	{services.ErrEmailTaken, http.StatusConflict, "email_taken", "Email is already registered"},
	{services.ErrServiceExists, http.StatusConflict, "service_exists", "A service with this name already exists"},
	{services.ErrServiceInUse, http.StatusConflict, "service_in_use", "Service still has bookings and cannot be deleted"},

	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},

	{services.ErrProviderRequired, http.StatusUnprocessableEntity, "provider_required", "A provider is required for this status"},
	{services.ErrProviderIneligible, http.StatusUnprocessableEntity, "provider_ineligible", "Provider is not active and approved"},
	{services.ErrInvalidRating, http.StatusUnprocessableEntity, "invalid_rating", ""},
	{services.ErrInvalidStatus, http.StatusUnprocessableEntity, "invalid_status", "Unknown booking status"},
	{services.ErrNoProviderAssigned, http.StatusUnprocessableEntity, "no_provider", "No provider assigned to this booking"},
	{services.ErrUnknownSkill, http.StatusUnprocessableEntity, "unknown_skill", "Skill does not match any service"},
	{services.ErrInvalidApproval, http.StatusUnprocessableEntity, "invalid_approval", "Unknown approval status"},
	{services.ErrInvalidPhone, http.StatusUnprocessableEntity, "invalid_phone", ""},

	{services.ErrUploadsDisabled, http.StatusServiceUnavailable, "uploads_disabled", "Photo uploads are not configured"},
}

// respondError writes the mapped status for a service error. Unknown errors
// are logged and answered with 500 and the given fallback code.
func respondError(c *gin.Context, err error, fallback string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			message := m.message
			if message == "" {
				message = err.Error()
			}
			c.JSON(m.status, ErrorResponse{Error: m.code, Message: message})
			return
		}
	}

	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}).Error(fallback)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   fallback,
		Message: "Something went wrong. Please try again.",
	})
}

// invalidRequest answers a binding failure
func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
	})
}

// paramID parses a UUID path parameter, answering 400 when it is malformed
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated caller, answering 401 when missing
func currentUser(c *gin.Context) (middleware.UserContext, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User context not found",
		})
	}
	return userCtx, ok
}
