package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/localbookr/marketplace-backend/internal/services"
)

// ProviderHandler serves provider search, onboarding and self-service
type ProviderHandler struct {
	providers      *services.ProviderService
	matcher        *services.MatchingService
	maxUploadBytes int64
}

// NewProviderHandler creates a new provider handler. maxUploadMB caps photo uploads.
func NewProviderHandler(providers *services.ProviderService, matcher *services.MatchingService, maxUploadMB int) *ProviderHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 5
	}
	return &ProviderHandler{
		providers:      providers,
		matcher:        matcher,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// Search handles GET /api/v1/providers/search?service=&area=
func (h *ProviderHandler) Search(c *gin.Context) {
	service := strings.TrimSpace(c.Query("service"))
	if service == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "service is required",
		})
		return
	}

	found, err := h.matcher.Search(c.Request.Context(), service, c.Query("area"))
	if err != nil {
		respondError(c, err, "provider_search_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": found, "count": len(found)})
}

// Register handles POST /api/v1/providers/register
func (h *ProviderHandler) Register(c *gin.Context) {
	var req models.ProviderRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	provider, err := h.providers.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "provider_registration_failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Registration received. An admin will review your profile.",
		"provider": provider,
	})
}

// ===================================================================
// SELF-SERVICE
// ===================================================================

// Me handles GET /api/v1/providers/me
func (h *ProviderHandler) Me(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	provider, err := h.providers.Me(c.Request.Context(), userCtx.UserID)
	if err != nil {
		respondError(c, err, "provider_retrieval_failed")
		return
	}
	c.JSON(http.StatusOK, provider)
}

type pushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// SetPushToken handles PUT /api/v1/providers/me/push-token
func (h *ProviderHandler) SetPushToken(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req pushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	if err := h.providers.SetPushToken(c.Request.Context(), userCtx.UserID, req.Token); err != nil {
		respondError(c, err, "push_token_update_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Push subscription saved"})
}

// AddPhoto handles POST /api/v1/providers/me/photos
func (h *ProviderHandler) AddPhoto(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.AddPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	photo, err := h.providers.AddPhoto(c.Request.Context(), userCtx.UserID, req)
	if err != nil {
		respondError(c, err, "photo_add_failed")
		return
	}
	c.JSON(http.StatusCreated, photo)
}

// UploadPhoto handles POST /api/v1/providers/me/photos/upload (multipart field "photo")
func (h *ProviderHandler) UploadPhoto(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_upload",
			Message: "A photo file under the size limit is required",
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err, "photo_upload_failed")
		return
	}
	defer file.Close()

	var caption *string
	if text := strings.TrimSpace(c.PostForm("caption")); text != "" {
		caption = &text
	}

	photo, err := h.providers.UploadPhoto(c.Request.Context(), userCtx.UserID, file, header.Filename, caption)
	if err != nil {
		respondError(c, err, "photo_upload_failed")
		return
	}
	c.JSON(http.StatusCreated, photo)
}

// DeletePhoto handles DELETE /api/v1/providers/me/photos/:photo_id
func (h *ProviderHandler) DeletePhoto(c *gin.Context) {
	userCtx, ok := currentUser(c)
	if !ok {
		return
	}
	photoID, ok := paramID(c, "photo_id")
	if !ok {
		return
	}

	if err := h.providers.DeletePhoto(c.Request.Context(), userCtx.UserID, photoID); err != nil {
		respondError(c, err, "photo_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
}

// ===================================================================
// ADMIN
// ===================================================================

// List handles GET /api/v1/admin/providers
func (h *ProviderHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListPending handles GET /api/v1/admin/providers/pending
func (h *ProviderHandler) ListPending(c *gin.Context) {
	h.list(c, true)
}

func (h *ProviderHandler) list(c *gin.Context, pendingOnly bool) {
	providers, err := h.providers.List(c.Request.Context(), pendingOnly)
	if err != nil {
		respondError(c, err, "providers_retrieval_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers, "count": len(providers)})
}

// Create handles POST /api/v1/admin/providers
func (h *ProviderHandler) Create(c *gin.Context) {
	var req models.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	provider, err := h.providers.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "provider_create_failed")
		return
	}
	c.JSON(http.StatusCreated, provider)
}

// Update handles PATCH /api/v1/admin/providers/:id
func (h *ProviderHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.ProviderUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	if req.IsEmpty() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "No fields to update",
		})
		return
	}

	provider, err := h.providers.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "provider_update_failed")
		return
	}
	c.JSON(http.StatusOK, provider)
}

// Approve handles POST /api/v1/admin/providers/:id/approve
func (h *ProviderHandler) Approve(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	provider, err := h.providers.Approve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "provider_approve_failed")
		return
	}
	c.JSON(http.StatusOK, provider)
}

// Reject handles POST /api/v1/admin/providers/:id/reject
func (h *ProviderHandler) Reject(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	provider, err := h.providers.Reject(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "provider_reject_failed")
		return
	}
	c.JSON(http.StatusOK, provider)
}

// Delete handles DELETE /api/v1/admin/providers/:id (soft delete)
func (h *ProviderHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.providers.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "provider_delete_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Provider removed"})
}
