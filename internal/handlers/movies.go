package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// MovieHandler serves the public catalogue plus ratings.
type MovieHandler struct {
	movies *services.MovieService
}

// NewMovieHandler builds the handler.
func NewMovieHandler(movies *services.MovieService) *MovieHandler {
	return &MovieHandler{movies: movies}
}

// List handles GET /api/movies.
func (h *MovieHandler) List(c *gin.Context) {
	filter := services.MovieFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Search:   c.Query("search"),
		Trending: c.Query("trending") == "true",
		Featured: c.Query("featured") == "true",
		Limit:    parseIntQuery(c, "limit", 0),
		Offset:   parseIntQuery(c, "offset", 0),
	}

	movies, total, err := h.movies.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"movies": movies, "total": total})
}

// Get handles GET /api/movies/:movieId.
func (h *MovieHandler) Get(c *gin.Context) {
	movie, err := h.movies.Get(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	ratings, err := h.movies.Ratings(c.Request.Context(), movie.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"movie": movie, "rating": ratings})
}

type rateRequest struct {
	MovieID string `json:"movieId" validate:"required"`
	Score   int    `json:"score" validate:"required,min=1,max=5"`
}

// Rate handles POST /api/movies (legacy rating submission endpoint).
func (h *MovieHandler) Rate(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req rateRequest
	if !bindAndValidate(c, &req) {
		return
	}

	summary, err := h.movies.Rate(c.Request.Context(), user.ID, req.MovieID, req.Score)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"success": true, "rating": summary})
}
