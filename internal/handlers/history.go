package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// HistoryHandler serves playback progress endpoints.
type HistoryHandler struct {
	history *services.HistoryService
}

// NewHistoryHandler builds the handler.
func NewHistoryHandler(history *services.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles GET /api/history.
func (h *HistoryHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	entries, err := h.history.List(c.Request.Context(), user.ID, parseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"history": entries})
}

// Continue handles GET /api/history/continue.
func (h *HistoryHandler) Continue(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	entries, err := h.history.ContinueWatching(c.Request.Context(), user.ID, parseIntQuery(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"continueWatching": entries})
}

type historyUpdateRequest struct {
	MovieID         string `json:"movieId" validate:"required"`
	ProgressSeconds int    `json:"progressSeconds" validate:"gte=0"`
	Completed       bool   `json:"completed"`
}

// Update handles POST /api/history/update.
func (h *HistoryHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req historyUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	row, err := h.history.Update(c.Request.Context(), user.ID, req.MovieID, req.ProgressSeconds, req.Completed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "history": row})
}

// Progress handles GET /api/history/progress/:movieId.
func (h *HistoryHandler) Progress(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	row, err := h.history.Progress(c.Request.Context(), user.ID, c.Param("movieId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if row == nil {
		response.OK(c, gin.H{"progressSeconds": 0, "completed": false})
		return
	}
	response.OK(c, gin.H{
		"progressSeconds": row.ProgressSeconds,
		"completed":       row.Completed,
		"lastWatched":     row.LastWatched,
	})
}
