package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/syriashof/shof/internal/services"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/logger"
	"github.com/syriashof/shof/pkg/response"
)

// Response headers copied through from the upstream video host.
var streamPassthroughHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Range",
	"Accept-Ranges",
	"Last-Modified",
	"ETag",
}

// StreamHandler proxies video playback so the upstream host URLs never
// reach the client. Range requests pass through untouched, which is
// what makes seeking work.
type StreamHandler struct {
	movies *services.MovieService
	client *http.Client
	log    *zap.Logger
}

// NewStreamHandler builds the proxy around a shared HTTP client.
func NewStreamHandler(movies *services.MovieService) *StreamHandler {
	return &StreamHandler{
		movies: movies,
		client: &http.Client{
			// No overall timeout: a movie-length body outlives any sane
			// value. Dial and header timeouts still apply.
			Transport: &http.Transport{
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		log: logger.WithModule("stream"),
	}
}

// Stream handles GET /api/stream/:movieId.
func (h *StreamHandler) Stream(c *gin.Context) {
	movie, err := h.movies.Get(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, movie.VideoURL, nil)
	if err != nil {
		response.Error(c, apperrors.Wrap(err, "Stream unavailable"))
		return
	}

	rangeHeader := c.GetHeader("Range")
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.log.Warn("upstream fetch failed",
			zap.String("movie_id", movie.ID),
			zap.Error(err),
		)
		response.Error(c, apperrors.New("UPSTREAM_ERROR", "Stream unavailable", http.StatusBadGateway))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		response.Error(c, apperrors.New("UPSTREAM_ERROR", "Stream unavailable", http.StatusBadGateway))
		return
	}

	// A fresh playback, not a seek, counts as a view.
	if rangeHeader == "" || strings.HasPrefix(rangeHeader, "bytes=0-") {
		_ = h.movies.IncrementViews(c.Request.Context(), movie.ID)
	}

	for _, header := range streamPassthroughHeaders {
		if value := resp.Header.Get(header); value != "" {
			c.Header(header, value)
		}
	}

	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		// Client hung up or upstream died mid-copy; nothing to send.
		h.log.Debug("stream copy ended", zap.String("movie_id", movie.ID), zap.Error(err))
	}
}

// Info handles GET /api/stream/:movieId/info.
func (h *StreamHandler) Info(c *gin.Context) {
	movie, err := h.movies.Get(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{
		"id":       movie.ID,
		"titleAr":  movie.TitleAr,
		"titleEn":  movie.TitleEn,
		"duration": movie.Duration,
		"views":    movie.Views,
	})
}
