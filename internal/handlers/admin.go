package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/syriashof/shof/internal/middleware"
	"github.com/syriashof/shof/internal/services"
	apperrors "github.com/syriashof/shof/pkg/errors"
	"github.com/syriashof/shof/pkg/response"
)

// AdminHandler serves the moderation surface. Every route behind it
// already passed RequireSession and RequireAdmin; mutations land in the
// audit log asynchronously.
type AdminHandler struct {
	movies    *services.MovieService
	users     *services.UserService
	reports   *services.ReportService
	dashboard *services.DashboardService
	audit     *services.AuditService
}

// NewAdminHandler builds the handler.
func NewAdminHandler(
	movies *services.MovieService,
	users *services.UserService,
	reports *services.ReportService,
	dashboard *services.DashboardService,
	audit *services.AuditService,
) *AdminHandler {
	return &AdminHandler{
		movies:    movies,
		users:     users,
		reports:   reports,
		dashboard: dashboard,
		audit:     audit,
	}
}

func (h *AdminHandler) logAction(c *gin.Context, action, targetType, targetID string, details map[string]any) {
	admin, ok := middleware.CurrentUser(c)
	if !ok || h.audit == nil {
		return
	}
	h.audit.LogAsync(services.AuditEntry{
		AdminID:    admin.ID,
		AdminEmail: admin.Email,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IPAddress:  c.ClientIP(),
	})
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"stats": stats})
}

// --- movies ---

// ListMovies handles POST /api/admin/movies/list.
func (h *AdminHandler) ListMovies(c *gin.Context) {
	filter := services.MovieFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
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

// AddMovie handles POST /api/admin/movies/add.
func (h *AdminHandler) AddMovie(c *gin.Context) {
	admin, _ := middleware.CurrentUser(c)

	var input services.MovieInput
	if !bindAndValidate(c, &input) {
		return
	}

	movie, err := h.movies.Create(c.Request.Context(), admin.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logAction(c, "movie.add", "movie", movie.ID, map[string]any{"titleAr": movie.TitleAr})
	response.OK(c, gin.H{"success": true, "movie": movie})
}

type editMovieRequest struct {
	MovieID string `json:"movieId" validate:"required"`
	services.MovieInput
}

// EditMovie handles POST /api/admin/movies/edit.
func (h *AdminHandler) EditMovie(c *gin.Context) {
	var req editMovieRequest
	if !bindAndValidate(c, &req) {
		return
	}

	movie, err := h.movies.Update(c.Request.Context(), req.MovieID, req.MovieInput)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logAction(c, "movie.edit", "movie", movie.ID, map[string]any{"titleAr": movie.TitleAr})
	response.OK(c, gin.H{"success": true, "movie": movie})
}

type deleteMovieRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

// DeleteMovie handles POST /api/admin/movies/delete.
func (h *AdminHandler) DeleteMovie(c *gin.Context) {
	var req deleteMovieRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.movies.Delete(c.Request.Context(), req.MovieID); err != nil {
		response.Error(c, err)
		return
	}

	h.logAction(c, "movie.delete", "movie", req.MovieID, nil)
	response.OK(c, gin.H{"success": true})
}

// --- users ---

// ListUsers handles POST /api/admin/users/list.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	filter := services.UserFilter{
		Search: c.Query("search"),
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if banned := c.Query("banned"); banned != "" {
		value := banned == "true"
		filter.Banned = &value
	}

	users, total, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		user := users[i]
		entry := userPayload(&user)
		entry["banned"] = user.Banned
		entry["banReason"] = user.BanReason
		entry["createdAt"] = user.CreatedAt
		payload = append(payload, entry)
	}
	response.OK(c, gin.H{"users": payload, "total": total})
}

type banUserRequest struct {
	UserID string `json:"userId" validate:"required"`
	Reason string `json:"reason"`
}

// BanUser handles POST /api/admin/users/ban.
func (h *AdminHandler) BanUser(c *gin.Context) {
	var req banUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Ban(c.Request.Context(), req.UserID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logAction(c, "user.ban", "user", user.ID, map[string]any{"reason": req.Reason})
	response.OK(c, gin.H{"success": true})
}

type userActionRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// UnbanUser handles POST /api/admin/users/unban.
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	var req userActionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Unban(c.Request.Context(), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logAction(c, "user.unban", "user", user.ID, nil)
	response.OK(c, gin.H{"success": true})
}

// DeleteUser handles POST /api/admin/users/delete.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var req userActionRequest
	if !bindAndValidate(c, &req) {
		return
	}

	admin, _ := middleware.CurrentUser(c)
	if admin != nil && admin.ID == req.UserID {
		response.Error(c, apperrors.ErrForbidden.WithMessage("Cannot delete your own account"))
		return
	}

	if err := h.users.Delete(c.Request.Context(), req.UserID); err != nil {
		response.Error(c, err)
		return
	}

	h.logAction(c, "user.delete", "user", req.UserID, nil)
	response.OK(c, gin.H{"success": true})
}

// --- reports ---

// ListReports handles POST /api/admin/reports/list.
func (h *AdminHandler) ListReports(c *gin.Context) {
	filter := services.ReportFilter{
		Status: c.Query("status"),
		Limit:  parseIntQuery(c, "limit", 0),
		Offset: parseIntQuery(c, "offset", 0),
	}

	reports, total, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"reports": reports, "total": total})
}

type updateReportRequest struct {
	ReportID   string `json:"reportId" validate:"required"`
	Status     string `json:"status" validate:"required"`
	AdminNotes string `json:"adminNotes"`
}

// UpdateReport handles POST /api/admin/reports/update.
func (h *AdminHandler) UpdateReport(c *gin.Context) {
	var req updateReportRequest
	if !bindAndValidate(c, &req) {
		return
	}

	admin, _ := middleware.CurrentUser(c)
	report, err := h.reports.UpdateStatus(c.Request.Context(), req.ReportID, req.Status, req.AdminNotes, admin.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logAction(c, "report.update", "report", report.ID, map[string]any{"status": req.Status})
	response.OK(c, gin.H{"success": true, "report": report})
}

// --- audit log ---

// ListLogs handles POST /api/admin/logs.
func (h *AdminHandler) ListLogs(c *gin.Context) {
	filter := services.AuditFilter{
		AdminID: c.Query("adminId"),
		Action:  c.Query("action"),
		Limit:   parseIntQuery(c, "limit", 0),
		Offset:  parseIntQuery(c, "offset", 0),
	}

	logs, total, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"logs": logs, "total": total})
}
