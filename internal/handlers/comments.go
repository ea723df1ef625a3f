package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// CommentHandler serves the discussion threads under movies.
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler builds the handler.
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// ListForMovie handles GET /api/comments/:movieId.
func (h *CommentHandler) ListForMovie(c *gin.Context) {
	comments, err := h.comments.ListForMovie(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"comments": comments})
}

type addCommentRequest struct {
	MovieID  string  `json:"movieId" validate:"required"`
	Content  string  `json:"content" validate:"required"`
	ParentID *string `json:"parentId"`
}

// Add handles POST /api/comments.
func (h *CommentHandler) Add(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req addCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.comments.Add(c.Request.Context(), user, req.MovieID, req.Content, req.ParentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"success": true, "comment": comment})
}

// Delete handles DELETE /api/comments/:commentId.
func (h *CommentHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.comments.Delete(c.Request.Context(), user, c.Param("commentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// Like handles POST /api/comments/:commentId/like.
func (h *CommentHandler) Like(c *gin.Context) {
	if err := h.comments.Like(c.Request.Context(), c.Param("commentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}
