package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/syriashof/shof/internal/auth"
	"github.com/syriashof/shof/internal/cache"
	"github.com/syriashof/shof/internal/handlers"
	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
)

// Deps bundles everything the router needs.
type Deps struct {
	DB        *gorm.DB
	Cache     cache.Store
	Auth      *iauth.Service
	Movies    *services.MovieService
	Comments  *services.CommentService
	Watchlist *services.WatchlistService
	History   *services.HistoryService
	Profile   *services.ProfileService
	Reports   *services.ReportService
	Users     *services.UserService
	Dashboard *services.DashboardService
	Audit     *services.AuditService

	RateLimitPerMinute int
	StaticDir          string
}

// NewRouter builds the Gin engine, wires middleware, and registers the
// legacy route table the frontend depends on.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.Auth == nil {
		return nil, fmt.Errorf("auth service must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if deps.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(deps.Cache, deps.RateLimitPerMinute, time.Minute))
	}

	r.GET("/api/health", handlers.Health(deps.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireSession := middleware.RequireSession(deps.Auth)
	optionalSession := middleware.OptionalSession(deps.Auth)

	// The frontend drives the whole account lifecycle through one
	// endpoint with an action discriminator.
	authHandler := handlers.NewAuthHandler(deps.Auth)
	r.POST("/api/auth", authHandler.Handle)

	movieHandler := handlers.NewMovieHandler(deps.Movies)
	r.GET("/api/movies", movieHandler.List)
	r.GET("/api/movies/:movieId", movieHandler.Get)
	r.POST("/api/movies", requireSession, movieHandler.Rate)

	commentHandler := handlers.NewCommentHandler(deps.Comments)
	r.GET("/api/comments/:movieId", commentHandler.ListForMovie)
	r.POST("/api/comments", requireSession, commentHandler.Add)
	r.POST("/api/comments/:commentId/like", requireSession, commentHandler.Like)
	r.DELETE("/api/comments/:commentId", requireSession, commentHandler.Delete)

	watchlistHandler := handlers.NewWatchlistHandler(deps.Watchlist)
	watchlist := r.Group("/api/watchlist", requireSession)
	{
		watchlist.GET("", watchlistHandler.List)
		watchlist.POST("/add", watchlistHandler.Add)
		watchlist.POST("/remove", watchlistHandler.Remove)
		watchlist.GET("/check/:movieId", watchlistHandler.Check)
	}

	historyHandler := handlers.NewHistoryHandler(deps.History)
	history := r.Group("/api/history", requireSession)
	{
		history.GET("", historyHandler.List)
		history.GET("/continue", historyHandler.Continue)
		history.POST("/update", historyHandler.Update)
		history.GET("/progress/:movieId", historyHandler.Progress)
	}

	profileHandler := handlers.NewProfileHandler(deps.Profile)
	profile := r.Group("/api/profile", requireSession)
	{
		profile.GET("", profileHandler.Get)
		profile.POST("/update", profileHandler.Update)
		profile.GET("/stats", profileHandler.Stats)
	}

	reportHandler := handlers.NewReportHandler(deps.Reports)
	r.POST("/api/report", optionalSession, reportHandler.Create)

	streamHandler := handlers.NewStreamHandler(deps.Movies)
	r.GET("/api/stream/:movieId", streamHandler.Stream)
	r.GET("/api/stream/:movieId/info", streamHandler.Info)

	adminHandler := handlers.NewAdminHandler(deps.Movies, deps.Users, deps.Reports, deps.Dashboard, deps.Audit)
	admin := r.Group("/api/admin", requireSession, middleware.RequireAdmin())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.POST("/dashboard", adminHandler.Dashboard)

		admin.POST("/movies/list", adminHandler.ListMovies)
		admin.POST("/movies/add", adminHandler.AddMovie)
		admin.POST("/movies/edit", adminHandler.EditMovie)
		admin.POST("/movies/delete", adminHandler.DeleteMovie)

		admin.POST("/users/list", adminHandler.ListUsers)
		admin.POST("/users/ban", adminHandler.BanUser)
		admin.POST("/users/unban", adminHandler.UnbanUser)
		admin.POST("/users/delete", adminHandler.DeleteUser)

		admin.POST("/reports/list", adminHandler.ListReports)
		admin.POST("/reports/update", adminHandler.UpdateReport)

		admin.POST("/logs", adminHandler.ListLogs)
	}

	registerStatic(r, deps.StaticDir)

	return r, nil
}

// registerStatic serves the built frontend. Unknown non-API paths fall
// back to index.html so client-side routing works on refresh.
func registerStatic(r *gin.Engine, dir string) {
	dir = strings.TrimSpace(dir)
	index := ""
	if dir != "" {
		if candidate := filepath.Join(dir, "index.html"); fileExists(candidate) {
			index = candidate
		}
		r.Static("/assets", filepath.Join(dir, "assets"))
		if index != "" {
			r.GET("/", func(c *gin.Context) { c.File(index) })
		}
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
			middleware.NotFoundHandler(c)
			return
		}
		if index != "" {
			c.File(index)
			return
		}
		middleware.NotFoundHandler(c)
	})
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
