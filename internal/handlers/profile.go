package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// ProfileHandler serves the signed-in user's own account pages.
type ProfileHandler struct {
	profile *services.ProfileService
}

// NewProfileHandler builds the handler.
func NewProfileHandler(profile *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profile: profile}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	response.OK(c, gin.H{"user": userPayload(user)})
}

type profileUpdateRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=60"`
	AvatarURL   string `json:"avatarUrl" validate:"omitempty,url"`
}

// Update handles POST /api/profile/update.
func (h *ProfileHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req profileUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.profile.Update(c.Request.Context(), user.ID, req.DisplayName, req.AvatarURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "user": userPayload(updated)})
}

// Stats handles GET /api/profile/stats.
func (h *ProfileHandler) Stats(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	stats, err := h.profile.Stats(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"stats": stats})
}
