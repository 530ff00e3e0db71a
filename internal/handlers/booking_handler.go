package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/middleware"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/services"
	"github.com/localbookr/marketplace-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// BookingHandler exposes the booking lifecycle. Effects returned by the
// booking service are handed to the dispatcher after each successful write.
type BookingHandler struct {
	bookings   *services.BookingService
	providers  *services.ProviderService
	dispatcher *services.Dispatcher
	async      bool
}

// NewBookingHandler creates a new booking handler. async dispatches effects
// in the background instead of before the response.
func NewBookingHandler(
	bookings *services.BookingService,
	providers *services.ProviderService,
	dispatcher *services.Dispatcher,
	async bool,
) *BookingHandler {
	return &BookingHandler{
		bookings:   bookings,
		providers:  providers,
		dispatcher: dispatcher,
		async:      async,
	}
}

// BookingView is the single-booking response
type BookingView struct {
	Booking      *models.BookingDetail `json:"booking"`
	PIN          string                `json:"pin,omitempty"`
	WhatsAppLink string                `json:"whatsapp_link,omitempty"`
}

// List handles GET /api/v1/bookings. Customers see their bookings, providers
// their jobs and admins everything.
func (h *BookingHandler) List(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var filter models.BookingFilter
	if raw := c.Query("status"); raw != "" {
		status := models.BookingStatus(raw)
		if !status.IsValid() {
			respondError(c, services.ErrInvalidStatus, "bookings_retrieval_failed")
			return
		}
		filter.Status = &status
	}

	switch userCtx.Role {
	case models.RoleAdmin:
	case models.RoleProvider:
		provider, err := h.providers.Me(c.Request.Context(), userCtx.UserID)
		if err != nil {
			respondError(c, err, "bookings_retrieval_failed")
			return
		}
		filter.ProviderID = &provider.ID
	default:
		filter.CustomerID = &userCtx.UserID
	}

	list, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "bookings_retrieval_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": list, "count": len(list)})
}

// Get handles GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	userCtx, booking, ok := h.load(c)
	if !ok {
		return
	}

	view := BookingView{Booking: booking}
	switch {
	case userCtx.UserID == booking.CustomerID:
		view.PIN = h.bookings.PIN(booking.ID)
		if booking.ProviderPhone != nil {
			view.WhatsAppLink = utils.WhatsAppLink(*booking.ProviderPhone,
				fmt.Sprintf("Hi, this is about my %s booking on %s.", booking.ServiceName, booking.Date))
		}
	case isAssignedProvider(userCtx, booking):
		view.WhatsAppLink = utils.WhatsAppLink(booking.CustomerPhone,
			fmt.Sprintf("Hi %s, I'm your %s provider for %s.", booking.CustomerName, booking.ServiceName, booking.Date))
	}

	c.JSON(http.StatusOK, view)
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	outcome, err := h.bookings.Create(c.Request.Context(), userCtx.UserID, req)
	if err != nil {
		respondError(c, err, "booking_create_failed")
		return
	}
	h.dispatch(c, outcome)

	c.JSON(http.StatusCreated, BookingView{
		Booking: outcome.Booking,
		PIN:     h.bookings.PIN(outcome.Booking.ID),
	})
}

// UpdateStatus handles PATCH /api/v1/bookings/:id/status. Only admins may
// choose the provider; the assigned provider may move their own job along.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	userCtx, booking, ok := h.load(c)
	if !ok {
		return
	}
	if !userCtx.IsAdmin() && !isAssignedProvider(userCtx, booking) {
		respondError(c, services.ErrForbidden, "booking_update_failed")
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if !userCtx.IsAdmin() {
		req.ProviderID = nil
	}

	h.transition(c, booking.ID, req.Status, req.ProviderID)
}

// Start handles POST /api/v1/bookings/:id/start
func (h *BookingHandler) Start(c *gin.Context) {
	userCtx, booking, ok := h.load(c)
	if !ok {
		return
	}
	if !userCtx.IsAdmin() && !isAssignedProvider(userCtx, booking) {
		respondError(c, services.ErrForbidden, "booking_start_failed")
		return
	}

	h.transition(c, booking.ID, models.BookingInProgress, nil)
}

// Cancel handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	_, booking, ok := h.load(c)
	if !ok {
		return
	}

	h.transition(c, booking.ID, models.BookingCancelled, nil)
}

// Complete handles POST /api/v1/bookings/:id/complete. A wrong PIN is not an
// error: the response carries success=false so the provider can retry.
func (h *BookingHandler) Complete(c *gin.Context) {
	userCtx, booking, ok := h.load(c)
	if !ok {
		return
	}
	if !userCtx.IsAdmin() && !isAssignedProvider(userCtx, booking) {
		respondError(c, services.ErrForbidden, "booking_complete_failed")
		return
	}

	var req models.CompleteBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	completed, outcome := h.bookings.VerifyAndComplete(c.Request.Context(), booking.ID, req.PIN)
	if !completed {
		logrus.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"user_id":    userCtx.UserID,
		}).Info("Booking completion rejected")
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Invalid PIN. Ask the customer for the code shown on their booking.",
		})
		return
	}
	h.dispatch(c, outcome)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Job completed",
		"booking": outcome.Booking,
	})
}

// Rate handles POST /api/v1/bookings/:id/rating
func (h *BookingHandler) Rate(c *gin.Context) {
	userCtx, booking, ok := h.load(c)
	if !ok {
		return
	}
	if !userCtx.IsAdmin() && userCtx.UserID != booking.CustomerID {
		respondError(c, services.ErrForbidden, "booking_rating_failed")
		return
	}

	var req models.RateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	if err := h.bookings.Rate(c.Request.Context(), booking.ID, req.Rating, req.Review, req.ProviderID); err != nil {
		respondError(c, err, "booking_rating_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Thanks for your feedback!"})
}

// ===================================================================
// ADMIN
// ===================================================================

type assignRequest struct {
	ProviderID uuid.UUID `json:"provider_id" binding:"required"`
}

// Assign handles POST /api/v1/admin/bookings/:id/assign
func (h *BookingHandler) Assign(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	h.transition(c, id, models.BookingAssigned, &req.ProviderID)
}

// Delete handles DELETE /api/v1/admin/bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.bookings.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "booking_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted"})
}

// NotifyProvider handles POST /api/v1/admin/bookings/:id/notify-provider. It
// runs synchronously so the admin learns whether delivery failed.
func (h *BookingHandler) NotifyProvider(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	outcome, err := h.bookings.ResendAssignment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "notify_provider_failed")
		return
	}

	failed := h.dispatcher.Dispatch(c.Request.Context(), outcome.Effects)
	if failed > 0 {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "delivery_failed",
			Message: fmt.Sprintf("%d of %d notifications could not be delivered", failed, len(outcome.Effects)),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Provider notified",
		"sent":    len(outcome.Effects),
	})
}

// ===================================================================
// HELPERS
// ===================================================================

// load resolves the caller and the booking in the path, answering 404 for
// bookings the caller may not see
func (h *BookingHandler) load(c *gin.Context) (middleware.UserContext, *models.BookingDetail, bool) {
	userCtx, ok := currentUser(c)
	if !ok {
		return userCtx, nil, false
	}
	id, ok := paramID(c, "id")
	if !ok {
		return userCtx, nil, false
	}

	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "booking_retrieval_failed")
		return userCtx, nil, false
	}

	if !userCtx.IsAdmin() && userCtx.UserID != booking.CustomerID && !isAssignedProvider(userCtx, booking) {
		respondError(c, services.ErrBookingNotFound, "booking_retrieval_failed")
		return userCtx, nil, false
	}
	return userCtx, booking, true
}

func (h *BookingHandler) transition(c *gin.Context, id uuid.UUID, to models.BookingStatus, providerID *uuid.UUID) {
	outcome, err := h.bookings.UpdateStatus(c.Request.Context(), id, to, providerID)
	if err != nil {
		var te *models.TransitionError
		if errors.As(err, &te) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "invalid_transition",
				Message: te.Error(),
				Code:    string(te.From) + "_TO_" + string(te.To),
			})
			return
		}
		respondError(c, err, "booking_update_failed")
		return
	}
	h.dispatch(c, outcome)

	c.JSON(http.StatusOK, BookingView{Booking: outcome.Booking})
}

func (h *BookingHandler) dispatch(c *gin.Context, outcome *services.Outcome) {
	if outcome == nil || len(outcome.Effects) == 0 {
		return
	}
	if h.async {
		h.dispatcher.DispatchAsync(outcome.Effects)
		return
	}
	h.dispatcher.Dispatch(c.Request.Context(), outcome.Effects)
}

func isAssignedProvider(userCtx middleware.UserContext, b *models.BookingDetail) bool {
	return userCtx.Role == models.RoleProvider && b.ProviderUserID.Valid && b.ProviderUserID.UUID == userCtx.UserID
}
