package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// WatchlistHandler serves the signed-in user's saved list.
type WatchlistHandler struct {
	watchlist *services.WatchlistService
}

// NewWatchlistHandler builds the handler.
func NewWatchlistHandler(watchlist *services.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{watchlist: watchlist}
}

// List handles GET /api/watchlist.
func (h *WatchlistHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	movies, err := h.watchlist.List(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"watchlist": movies})
}

type watchlistRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

// Add handles POST /api/watchlist/add.
func (h *WatchlistHandler) Add(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req watchlistRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.watchlist.Add(c.Request.Context(), user.ID, req.MovieID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// Remove handles POST /api/watchlist/remove.
func (h *WatchlistHandler) Remove(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req watchlistRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.watchlist.Remove(c.Request.Context(), user.ID, req.MovieID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// Check handles GET /api/watchlist/check/:movieId.
func (h *WatchlistHandler) Check(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	inList, err := h.watchlist.Contains(c.Request.Context(), user.ID, c.Param("movieId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"inWatchlist": inList})
}
